package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"equiptrack/app"
	"equiptrack/clock"
	"equiptrack/loans"
	"equiptrack/models"
	"equiptrack/store"
)

type EquipmentController struct {
	*Srv
	Clock clock.Clock
}

func NewEquipmentController(s *Srv, clk clock.Clock) *EquipmentController {
	return &EquipmentController{Srv: s, Clock: clk}
}

func (ec *EquipmentController) CreateEquipment(c *gin.Context) {
	var in struct {
		ItemCode string `json:"itemCode" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Category string `json:"category" binding:"required"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it := &models.EquipmentItem{
		ID:       uuid.NewString(),
		ItemCode: in.ItemCode,
		Name:     in.Name,
		Category: in.Category,
		Location: in.Location,
		Status:   models.StatusAvailable,
	}
	if err := ec.Store.CreateEquipment(c.Request.Context(), it); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (ec *EquipmentController) ListEquipment(c *gin.Context) {
	items, err := ec.Store.ListEquipment(c.Request.Context(), c.Query("category"), c.Query("status"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// ListWithLoans is the checkout-desk view: every item plus who has it
// out and whether that loan is already overdue.
func (ec *EquipmentController) ListWithLoans(c *gin.Context) {
	rows, err := ec.Store.ListEquipmentWithLoan(c.Request.Context(), c.Query("category"), c.Query("status"))
	if err != nil {
		respondErr(c, err)
		return
	}
	now := ec.Clock.Now()
	type row struct {
		store.EquipmentWithLoan
		Overdue bool `json:"overdue"`
	}
	out := make([]row, len(rows))
	for i, r := range rows {
		out[i] = row{EquipmentWithLoan: r}
		if r.OpenLoan != nil {
			out[i].Overdue = loans.Overdue(now, r.OpenLoan)
		}
	}
	c.JSON(http.StatusOK, app.H{"items": out})
}

// SetStatus moves an item between available/reserved/repair. Borrowed
// is owned by the loan lifecycle and cannot be set by hand; the guarded
// update also refuses to touch an item that is currently out.
func (ec *EquipmentController) SetStatus(c *gin.Context) {
	var in struct {
		From string `json:"from" binding:"required"`
		To   string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !adminSettable(in.From) || !adminSettable(in.To) {
		c.JSON(http.StatusBadRequest, app.H{"error": "status not settable by hand"})
		return
	}
	if err := ec.Store.SetEquipmentStatus(c.Request.Context(), c.Param("id"), in.From, in.To); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func adminSettable(status string) bool {
	switch status {
	case models.StatusAvailable, models.StatusReserved, models.StatusRepair:
		return true
	}
	return false
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"equiptrack/app"
	"equiptrack/clock"
	"equiptrack/loans"
	"equiptrack/models"
	"equiptrack/store"
)

type LoanController struct {
	*Srv
	Clock clock.Clock
}

func NewLoanController(s *Srv, clk clock.Clock) *LoanController {
	return &LoanController{Srv: s, Clock: clk}
}

// Borrow checks out one or more items to a student in a single
// all-or-nothing call. Duration comes from the request, falling back to
// the configured default.
func (lc *LoanController) Borrow(c *gin.Context) {
	var in struct {
		StudentID       string   `json:"studentId" binding:"required"`
		EquipmentIDs    []string `json:"equipmentIds" binding:"required"`
		DurationMinutes int      `json:"durationMinutes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	dur := lc.Cfg.BorrowDuration
	if in.DurationMinutes > 0 {
		dur = time.Duration(in.DurationMinutes) * time.Minute
	}

	created, err := lc.Loans.Borrow(c.Request.Context(), in.StudentID, in.EquipmentIDs, dur, callerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"loans": created})
}

// Return closes the loan and tells the caller whether it was late, so
// the UI can confirm and offer undo.
func (lc *LoanController) Return(c *gin.Context) {
	receipt, err := lc.Loans.Return(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (lc *LoanController) UndoReturn(c *gin.Context) {
	if err := lc.Loans.UndoReturn(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ListLoans filters by ?studentId=&equipmentId=&status=open|returned|overdue.
// Overdue is derived at read time, never stored, so the overdue filter
// narrows the open set against the current clock.
func (lc *LoanController) ListLoans(c *gin.Context) {
	status := c.Query("status")
	overdueOnly := status == "overdue"
	if overdueOnly {
		status = "open"
	}

	out, err := lc.Store.ListLoans(c.Request.Context(), store.LoanFilter{
		StudentID:   c.Query("studentId"),
		EquipmentID: c.Query("equipmentId"),
		Status:      status,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	if overdueOnly {
		now := lc.Clock.Now()
		filtered := make([]models.Loan, 0, len(out))
		for _, l := range out {
			if loans.Overdue(now, &l) {
				filtered = append(filtered, l)
			}
		}
		out = filtered
	}
	c.JSON(http.StatusOK, app.H{"loans": out})
}

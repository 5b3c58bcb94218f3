package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equiptrack/app"
)

type RiskController struct{ *Srv }

func NewRiskController(s *Srv) *RiskController { return &RiskController{Srv: s} }

// AtRisk runs a full scan on demand. Lapsed suspensions are expired
// first, so the list always reflects current state.
func (rc *RiskController) AtRisk(c *gin.Context) {
	out, err := rc.Scanner.ScanAtRisk(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"atRisk": out})
}

// Dismiss acknowledges the alert at its current tally; the next late
// return brings it back.
func (rc *RiskController) Dismiss(c *gin.Context) {
	var in struct {
		StudentID        string `json:"studentId" binding:"required"`
		LateReturnsCount int    `json:"lateReturnsCount" binding:"required"`
		WarningThreshold int    `json:"warningThreshold" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := rc.Susp.DismissAlert(c.Request.Context(), in.StudentID, in.LateReturnsCount, in.WarningThreshold); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (rc *RiskController) Suspend(c *gin.Context) {
	var in struct {
		DurationDays int    `json:"durationDays" binding:"required"`
		Reason       string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := rc.Susp.Suspend(c.Request.Context(), c.Param("id"), in.DurationDays, in.Reason); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

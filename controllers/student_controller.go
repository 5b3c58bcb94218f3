package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"equiptrack/app"
	"equiptrack/clock"
	"equiptrack/models"
	"equiptrack/risk"
)

type StudentController struct {
	*Srv
	Clock clock.Clock
}

func NewStudentController(s *Srv, clk clock.Clock) *StudentController {
	return &StudentController{Srv: s, Clock: clk}
}

func (sc *StudentController) CreateStudent(c *gin.Context) {
	var in struct {
		StudentNo string `json:"studentNo" binding:"required"`
		FullName  string `json:"fullName" binding:"required"`
		YearGroup string `json:"yearGroup" binding:"required"`
		ClassName string `json:"className"`
		House     string `json:"house"`
		Email     string `json:"email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	s := &models.Student{
		ID:         uuid.NewString(),
		StudentNo:  in.StudentNo,
		FullName:   in.FullName,
		YearGroup:  in.YearGroup,
		ClassName:  in.ClassName,
		House:      in.House,
		Email:      in.Email,
		TrustScore: 100,
	}
	if err := sc.Store.CreateStudent(c.Request.Context(), s); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// ListStudents supports ?q= keyword search on name/class/house.
func (sc *StudentController) ListStudents(c *gin.Context) {
	out, err := sc.Store.ListStudents(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"students": out})
}

// GetStudent returns the profile with derived statistics. Open overdue
// loans are a display statistic only; they never feed the suspension
// trigger counter.
func (sc *StudentController) GetStudent(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	s, err := sc.Store.GetStudent(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}

	now := sc.Clock.Now()
	open, total, err := sc.Store.CountLoans(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	lifetimeLate, err := sc.Store.CountLateReturns(ctx, id, nil)
	if err != nil {
		respondErr(c, err)
		return
	}
	openOverdue, err := sc.Store.CountOpenOverdue(ctx, id, now)
	if err != nil {
		respondErr(c, err)
		return
	}
	suspensions, err := sc.Store.CountSuspensions(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	lateSince, err := sc.Scanner.LateReturnsSinceLastSuspension(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, app.H{
		"student": s,
		"stats": app.H{
			"totalLoans":                 total,
			"openLoans":                  open,
			"lifetimeLateReturns":        lifetimeLate,
			"openOverdueLoans":           openOverdue,
			"totalSuspensions":           suspensions,
			"lateReturnsSinceSuspension": lateSince,
			"warningThreshold":           risk.WarningThreshold(suspensions),
		},
	})
}

package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"equiptrack/app"
	"equiptrack/clock"
	"equiptrack/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App, s *controllers.Srv, clk clock.Clock) {
	authC := controllers.NewAuthController(s)
	studentC := controllers.NewStudentController(s, clk)
	equipC := controllers.NewEquipmentController(s, clk)
	loanC := controllers.NewLoanController(s, clk)
	riskC := controllers.NewRiskController(s)

	authMW := app.AuthRequired(a.AppSessions(), s.Store)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Store, a.RDB, 5*time.Minute)

	// ------------------------------
	// Sessions (identity provider glue)
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/login", authC.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.GET("/whoami", authC.WhoAmI)
		authed.POST("/logout", authC.Logout)
		authed.POST("/logout-all", authC.LogoutAll)
	}

	// ------------------------------
	// Students
	// ------------------------------
	students := r.Group("/api/students", authMW, seenMW)
	{
		students.GET("", studentC.ListStudents) // ?q=
		students.GET("/:id", studentC.GetStudent)
	}
	studentsAdmin := r.Group("/api/students", authMW, adminMW)
	{
		studentsAdmin.POST("", studentC.CreateStudent)
		studentsAdmin.POST("/:id/suspend", riskC.Suspend)
	}

	// ------------------------------
	// Equipment
	// ------------------------------
	items := r.Group("/api/equipment", authMW, seenMW)
	{
		items.GET("", equipC.ListEquipment)            // ?category=&status=
		items.GET("/with-loans", equipC.ListWithLoans) // checkout-desk view
	}
	itemsAdmin := r.Group("/api/equipment", authMW, adminMW)
	{
		itemsAdmin.POST("", equipC.CreateEquipment)
		itemsAdmin.PATCH("/:id/status", equipC.SetStatus)
	}

	// ------------------------------
	// Loans (borrow / return / undo)
	// ------------------------------
	loansGrp := r.Group("/api/loans", authMW, seenMW)
	{
		loansGrp.POST("", loanC.Borrow)
		loansGrp.POST("/:id/return", loanC.Return)
		loansGrp.POST("/:id/undo-return", loanC.UndoReturn)
		loansGrp.GET("", loanC.ListLoans) // ?studentId=&equipmentId=&status=
	}

	// ------------------------------
	// Risk alerts (admins only)
	// ------------------------------
	riskGrp := r.Group("/api/risk", authMW, adminMW)
	{
		riskGrp.GET("/at-risk", riskC.AtRisk)
		riskGrp.POST("/dismiss", riskC.Dismiss)
	}
}

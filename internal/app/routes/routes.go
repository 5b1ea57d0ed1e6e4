package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/controllers"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/metrics"
)

// Controllers bundles everything the router mounts
type Controllers struct {
	Auth          *controllers.AuthController
	Students      *controllers.StudentController
	Transactions  *controllers.TransactionController
	AcademicYears *controllers.AcademicYearController
	System        *controllers.SystemController
	Export        *controllers.ExportController
	Realtime      *controllers.RealtimeController
}

// Register mounts all API routes on the engine
func Register(router *gin.Engine, ctrl Controllers, authService services.AuthService, cookieName string) {
	router.GET("/health", ctrl.System.Health)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")

	// Public authentication endpoints
	auth := v1.Group("/auth")
	{
		auth.POST("/student/login", ctrl.Auth.StudentLogin)
		auth.POST("/admin/login", ctrl.Auth.AdminLogin)
		auth.POST("/otp/send", ctrl.Auth.SendOTP)
		auth.POST("/otp/login", ctrl.Auth.OTPLogin)
		auth.GET("/verify", ctrl.Auth.Verify)
	}

	// Everything below requires a live session
	authed := v1.Group("")
	authed.Use(middleware.Authenticate(authService, cookieName))
	{
		authed.POST("/auth/logout", ctrl.Auth.Logout)
		authed.GET("/ws", ctrl.Realtime.Connect)

		// Students may read their own record and ledger; staff may read any
		selfOrStaff := authed.Group("/students/:id")
		selfOrStaff.Use(middleware.RequireSelfOrStaff(controllers.StudentIDParam))
		{
			selfOrStaff.GET("", ctrl.Students.Get)
			selfOrStaff.GET("/transactions", ctrl.Transactions.History)
			selfOrStaff.GET("/statement.pdf", ctrl.Export.Statement)
			selfOrStaff.GET("/qr.png", ctrl.Export.QRCode)
		}

		// Management endpoints are staff only
		staff := authed.Group("")
		staff.Use(middleware.RequireStaff())
		{
			staff.GET("/students", ctrl.Students.List)
			staff.POST("/students", ctrl.Students.Create)
			staff.PUT("/students/:id", ctrl.Students.Update)
			staff.DELETE("/students/:id", ctrl.Students.Delete)
			staff.POST("/students/:id/photo", ctrl.Students.UploadPhoto)
			staff.DELETE("/students/:id/photo", ctrl.Students.DeletePhoto)

			staff.POST("/students/:id/transactions", ctrl.Transactions.Apply)
			staff.POST("/transactions/bulk", ctrl.Transactions.BulkApply)
			staff.GET("/transactions/:txID", ctrl.Transactions.Get)
			staff.PUT("/transactions/:txID", ctrl.Transactions.Update)
			staff.DELETE("/transactions/:txID", ctrl.Transactions.Delete)

			staff.GET("/audit/deposits", ctrl.Transactions.DepositAudit)
			staff.GET("/audit/withdrawals", ctrl.Transactions.WithdrawalAudit)

			staff.GET("/academic-years", ctrl.AcademicYears.List)
			staff.POST("/academic-years", ctrl.AcademicYears.Create)
			staff.POST("/academic-years/:id/current", ctrl.AcademicYears.SetCurrent)

			staff.GET("/system/status", ctrl.System.Status)
		}
	}
}

package routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/config"
	adminControllers "github.com/sssihms/dashboard-backend/internal/admin/controllers"
	adminServices "github.com/sssihms/dashboard-backend/internal/admin/services"
	"github.com/sssihms/dashboard-backend/internal/common/middlewares"
	metricControllers "github.com/sssihms/dashboard-backend/internal/metrics/controllers"
	metricServices "github.com/sssihms/dashboard-backend/internal/metrics/services"
	"github.com/sssihms/dashboard-backend/internal/metrics/store"
	reportControllers "github.com/sssihms/dashboard-backend/internal/reporting/controllers"
	reportServices "github.com/sssihms/dashboard-backend/internal/reporting/services"
	"github.com/sssihms/dashboard-backend/ws"
)

// Init wires services, controllers and middleware onto the echo instance.
func Init(e *echo.Echo, db *sql.DB, cfg *config.Config, metricStore *store.Store) {
	timeout := cfg.QueryTimeout

	reportService := reportServices.NewReportService(db, timeout)
	occupancyService := reportServices.NewOccupancyService(db, timeout)
	surgeryService := reportServices.NewSurgeryService(db, timeout)
	notesService := reportServices.NewNotesService(db, timeout)
	drillDownService := reportServices.NewDrillDownService(db, timeout)
	metricService := metricServices.NewMetricService(db, metricStore, timeout)
	staffService := adminServices.NewStaffService(db, timeout)

	dashboardController := reportControllers.NewDashboardController(reportService, occupancyService, surgeryService)
	drillDownController := reportControllers.NewDrillDownController(drillDownService)
	notesController := reportControllers.NewNotesController(notesService)
	metricController := metricControllers.NewMetricController(metricService, ws.HubInstance)
	authController := adminControllers.NewAuthController(staffService)
	staffController := adminControllers.NewStaffController(staffService, ws.HubInstance)

	jwt := middlewares.JWTMiddleware()
	admin := middlewares.RequireAdmin(staffService.FetchRole)

	api := e.Group("/api")

	// auth
	auth := api.Group("/auth")
	auth.POST("/login", authController.Login)
	auth.POST("/change-password", authController.ChangePassword, jwt)

	// selectors
	selectors := api.Group("/selectors", jwt)
	selectors.GET("/departments", dashboardController.GetDepartments)
	selectors.GET("/hospitals", dashboardController.GetHospitals)
	selectors.GET("/categories", dashboardController.GetCategories)

	// dashboard sections
	dashboard := api.Group("/dashboard", jwt)
	dashboard.GET("/general", dashboardController.GetGeneral)
	dashboard.GET("/admission-types", dashboardController.GetAdmissionTypes)
	dashboard.GET("/age-distribution", dashboardController.GetAgeDistribution)
	dashboard.GET("/state-stats", dashboardController.GetStateStats)
	dashboard.GET("/occupancy", dashboardController.GetOccupancy)
	dashboard.GET("/occupancy/departments", dashboardController.GetOccupancyByDepartment)
	dashboard.GET("/occupancy/locations", dashboardController.GetOccupancyByLocation)
	dashboard.GET("/surgery", dashboardController.GetSurgeryMetrics)
	dashboard.GET("/surgery/surgeons", dashboardController.GetSurgeons)
	dashboard.GET("/surgery/wait-times", dashboardController.GetSurgeryWaitTimes)
	dashboard.GET("/staff-ratio", dashboardController.GetStaffPatientRatio)
	dashboard.GET("/financial-summary", dashboardController.GetFinancialSummary)
	dashboard.GET("/quality-metrics", dashboardController.GetQualityMetrics)

	// operational efficiency drill-down
	drill := api.Group("/drilldown", jwt)
	drill.GET("", drillDownController.GetRows)
	drill.POST("/enter", drillDownController.Enter)
	drill.POST("/back", drillDownController.Back)
	drill.POST("/home", drillDownController.Home)

	// clinical reports
	reports := api.Group("/reports", jwt)
	reports.GET("/mrns", notesController.SearchMRNs)
	reports.GET("/:mrn", notesController.GetReports)

	// custom metrics: everyone reads, admins manage
	metrics := api.Group("/metrics", jwt)
	metrics.GET("", metricController.List)
	metrics.GET("/:id/execute", metricController.Execute)
	metrics.POST("", metricController.Create, admin)
	metrics.DELETE("/:id", metricController.Delete, admin)

	// staff administration
	staff := api.Group("/admin/staff", jwt, admin)
	staff.GET("", staffController.List)
	staff.POST("", staffController.Add)
	staff.PUT("/:id/login", staffController.SetLogin)
	staff.PUT("/:id/role", staffController.SetRole)
	staff.PUT("/:id/password", staffController.ResetPassword)
	staff.DELETE("/:id", staffController.Delete)

	// live refresh notifications
	e.GET("/ws", ws.ServeWS(ws.HubInstance))
}

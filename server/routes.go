package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/web"
)

// SetupRoutes registers every page and API route on e.
func SetupRoutes(e *echo.Echo, s *Server) {
	// HTML forms can only POST; "_method" selects DELETE and PATCH routes.
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(s.logger))

	e.GET("/health", s.HealthCheck)
	e.GET("/static/*", echo.WrapHandler(web.StaticHandler()))
	e.GET("/login", s.LoginView)
	e.POST("/login", s.LoginForm)

	// View routes
	pages := e.Group("", s.requireSession(false))
	pages.GET("/", s.DashboardView)
	for _, k := range screens.Kinds {
		pages.GET(k.Path, s.ScreenView(k))
	}
	pages.GET("/delivery", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/deliveries")
	})
	pages.GET("/bulk-delivery", s.BulkView)
	pages.GET("/tables", s.TablesView)

	// API routes
	e.POST("/api/login", s.Login)

	api := e.Group("/api", s.requireSession(true))
	api.POST("/logout", s.Logout)
	api.GET("/session", s.GetSession)

	api.GET("/tables", s.ListTables)
	api.GET("/tables/:table", s.DescribeTable)

	viewer := api.Group("/viewer")
	viewer.GET("", s.GetViewer)
	viewer.POST("/select", s.SelectTable)
	viewer.POST("/refresh", s.RefreshViewer)
	viewer.GET("/render", s.RenderViewer)

	scr := api.Group("/screens")
	scr.GET("/:kind", s.GetScreen)
	scr.POST("/:kind/:id/status", s.UpdateStatus)

	bulk := api.Group("/bulk")
	bulk.GET("", s.GetBulk)
	bulk.POST("/drafts", s.AppendDraft)
	bulk.PATCH("/drafts/:index", s.UpdateDraft)
	bulk.DELETE("/drafts/:index", s.RemoveDraft)
	bulk.POST("/submit", s.SubmitBulk)

	api.GET("/vendors/active", s.ActiveVendors)
	api.GET("/summary", s.Summary)

	e.GET("/ws/changes", s.ChangeFeed, s.requireSession(true))
}

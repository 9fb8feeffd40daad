package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepreport/internal/auth"
	"github.com/yourname/sleepreport/internal/service"
)

// NewRouter wires every route. /login is only mounted when app.Login is set.
func NewRouter(app App, provider auth.Provider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()))
	if m := app.Metrics(); m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if app.Login() != nil {
		r.POST("/login", PostLogin(app))
	}

	protected := r.Group("/", auth.AuthMiddleware(provider))
	protected.POST("/sleep", PostSleep(app))
	protected.GET("/sleep", GetSleep(app))
	protected.GET("/sleep/today", GetSleepToday(app))

	reports := protected.Group("/reports")
	reports.GET("/weekly", GetUserReport(app, (*service.ReportService).Weekly))
	reports.GET("/history", GetUserReport(app, (*service.ReportService).History))
	reports.GET("/today", GetUserReport(app, (*service.ReportService).Today))
	reports.GET("/advice", GetUserReport(app, (*service.ReportService).Advice))

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.GET("/reports", GetAdminReport(app))

	return r
}

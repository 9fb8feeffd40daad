package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepreport/internal/auth"
	"github.com/yourname/sleepreport/internal/service"
	"github.com/yourname/sleepreport/internal/stats"
)

type userReportFunc func(s *service.ReportService, ctx context.Context, user string) (stats.Report, error)

// GetUserReport serves one of the caller's personal reports. no_data and
// insufficient_data are ordinary 200 responses; the status field tells them apart.
func GetUserReport(app App, build userReportFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		rep, err := build(app.Reports(), c.Request.Context(), user.Login)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to build report")
			return
		}
		HandleSuccess(c, app.Logger(), rep, nil)
	}
}

// GetAdminReport is the all-users overview. window defaults to the last 7 days.
func GetAdminReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := stats.ParseWindow(c.DefaultQuery("window", "7d"))
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid window")
			return
		}
		rep, err := app.Reports().AllUsers(c.Request.Context(), w)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to build report")
			return
		}
		HandleSuccess(c, app.Logger(), rep, map[string]any{"users": len(rep.Results)})
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yourname/sleepreport/internal/auth"
	"github.com/yourname/sleepreport/internal/service"
	"github.com/yourname/sleepreport/internal/storage"
)

func PostSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.SleepRecordRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			app.Metrics().RecordSubmitted("invalid")
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		rec, err := service.CreateSleepRecord(c.Request.Context(), app.Records(), app.Publisher(), app.Logger(),
			user, &body, app.Reports().Now())
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			app.Metrics().RecordSubmitted("invalid")
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		case errors.Is(err, storage.ErrDuplicateEntry):
			app.Metrics().RecordSubmitted("duplicate")
			HandleError(c, app.Logger(), err, http.StatusConflict, "You have already logged sleep today")
			return
		case err != nil:
			app.Metrics().RecordSubmitted("error")
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to save record")
			return
		}

		app.Metrics().RecordSubmitted("saved")
		HandleCreated(c, app.Logger(), rec, nil)
	}
}

func GetSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		records, err := app.Reports().Records(c.Request.Context(), user.Login)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch records")
			return
		}
		HandleSuccess(c, app.Logger(), records, map[string]any{"count": len(records)})
	}
}

// GetSleepToday tells the client whether today's entry is still open.
func GetSleepToday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		has, err := app.Reports().HasToday(c.Request.Context(), user.Login)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to check today's entry")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"has_entry": has}, nil)
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	if status >= http.StatusInternalServerError {
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(msg + ": " + err.Error())
	case http.StatusNotFound:
		resp = response.NotFound(msg + ": " + err.Error())
	case http.StatusConflict:
		resp = response.Conflict(msg)
	case http.StatusInternalServerError:
		// store errors stay in the log
		resp = response.InternalError(msg)
	default:
		resp = response.NewAppError(status, msg)
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	respond(c, logger, http.StatusOK, data, meta)
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	respond(c, logger, http.StatusCreated, data, meta)
}

func respond(c *gin.Context, logger internal.Logger, status int, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] %s %s -> %d", requestID, c.Request.Method, c.FullPath(), status)
	c.JSON(status, response.Success(data, meta))
}

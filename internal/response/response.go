package response

import (
	"net/http"

	"github.com/yourname/sleepreport/internal"
)

type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta, Error: nil}
}

func BadRequest(msg string) APIResponse {
	return NewAppError(http.StatusBadRequest, msg)
}

func InternalError(msg string) APIResponse {
	return NewAppError(http.StatusInternalServerError, msg)
}

func NotFound(msg string) APIResponse {
	return NewAppError(http.StatusNotFound, msg)
}

func Conflict(msg string) APIResponse {
	return NewAppError(http.StatusConflict, msg)
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}

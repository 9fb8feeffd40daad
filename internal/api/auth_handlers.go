package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepreport/internal/auth"
)

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

func PostLogin(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LoginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "login and password required")
			return
		}
		u, err := app.Login().Login(c.Request.Context(), body.Login, body.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			HandleError(c, app.Logger(), err, http.StatusUnauthorized, "Invalid login or password")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Login failed")
			return
		}
		HandleSuccess(c, app.Logger(), loginResponse{Token: u.Token, Login: u.Login, Name: u.Name, Role: u.Role}, nil)
	}
}

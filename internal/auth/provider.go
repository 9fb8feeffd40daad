package auth

import (
	"context"
	"errors"

	"github.com/yourname/sleepreport/internal"
)

var (
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrInvalidCredentials = errors.New("auth: invalid login or password")
)

// Provider resolves a bearer token to the user it belongs to.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*internal.User, error)
}

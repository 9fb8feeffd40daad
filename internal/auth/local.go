package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/storage"
)

// LocalAuthProvider checks tokens and passwords against the configured store's users.
type LocalAuthProvider struct {
	users  storage.UserRepository
	logger internal.Logger
}

func NewLocalAuthProvider(users storage.UserRepository, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{users: users, logger: logger}
}

func (a *LocalAuthProvider) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	u, err := a.users.GetUserByToken(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Warnf("unknown token presented")
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return withoutPassword(u), nil
}

// Login returns the user, including its token, when login and password match.
func (a *LocalAuthProvider) Login(ctx context.Context, login, password string) (*internal.User, error) {
	u, err := a.users.GetUserByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Password == "" || subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		a.logger.Warnf("failed login for %s", u.Login)
		return nil, ErrInvalidCredentials
	}
	return withoutPassword(u), nil
}

func withoutPassword(u *internal.User) *internal.User {
	cp := *u
	cp.Password = ""
	return &cp
}

var _ Provider = (*LocalAuthProvider)(nil)

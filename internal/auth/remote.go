package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourname/sleepreport/internal"
)

// RemoteAuthProvider asks an external auth service to resolve tokens. The
// service answers 200 with a user document, anything else means rejected.
type RemoteAuthProvider struct {
	AuthServiceURL string
	HTTPClient     *http.Client
	logger         internal.Logger
}

func NewRemoteAuthProvider(url string, logger internal.Logger) *RemoteAuthProvider {
	return &RemoteAuthProvider{
		AuthServiceURL: url,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		logger:         logger,
	}
}

func (a *RemoteAuthProvider) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthServiceURL, bytes.NewReader(body))
	if err != nil {
		a.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		a.logger.Errorf("auth service returned %d", resp.StatusCode)
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var user internal.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		a.logger.Errorf("failed to decode auth response: %v", err)
		return nil, err
	}
	if user.Login == "" {
		return nil, ErrInvalidToken
	}
	user.Password = ""
	return &user, nil
}

var _ Provider = (*RemoteAuthProvider)(nil)

package api

import (
	"context"

	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/events"
	"github.com/yourname/sleepreport/internal/metrics"
	"github.com/yourname/sleepreport/internal/service"
	"github.com/yourname/sleepreport/internal/storage"
)

// LoginProvider exchanges a login and password for the user's token.
type LoginProvider interface {
	Login(ctx context.Context, login, password string) (*internal.User, error)
}

type App interface {
	Logger() internal.Logger
	Records() storage.RecordStore
	Reports() *service.ReportService
	Publisher() events.Publisher
	// Metrics may be nil when metrics are disabled.
	Metrics() *metrics.Metrics
	// Login is nil when tokens are issued by a remote auth service.
	Login() LoginProvider
}

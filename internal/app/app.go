// Package app assembles the store, publisher, metrics and report service
// from a config. Both binaries start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/api"
	"github.com/yourname/sleepreport/internal/auth"
	"github.com/yourname/sleepreport/internal/config"
	"github.com/yourname/sleepreport/internal/events"
	"github.com/yourname/sleepreport/internal/metrics"
	"github.com/yourname/sleepreport/internal/service"
	"github.com/yourname/sleepreport/internal/storage"
)

type Application struct {
	cfg       *config.Config
	logger    internal.Logger
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	reports   *service.ReportService
	provider  auth.Provider
	login     api.LoginProvider
}

// Options turn off parts the caller does not need. The CLI never publishes
// events and has no use for metrics.
type Options struct {
	DisableEvents  bool
	DisableMetrics bool
}

func New(ctx context.Context, cfg *config.Config, logger internal.Logger, opts Options) (*Application, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("report timezone: %w", err)
	}

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.DBType, err)
	}

	a := &Application{cfg: cfg, logger: logger, store: store, publisher: events.NoopPublisher{}}

	if !opts.DisableEvents {
		pub, err := events.NewPublisher(events.Config{
			Enabled: cfg.KafkaEnabled,
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.publisher = pub
	}
	if cfg.MetricsEnabled && !opts.DisableMetrics {
		a.metrics = metrics.New()
	}

	a.reports = service.NewReportService(store, loc, logger)
	if a.metrics != nil {
		a.reports.WithRecorder(a.metrics)
	}

	switch cfg.AuthMode {
	case "remote":
		a.provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	default:
		local := auth.NewLocalAuthProvider(store, logger)
		a.provider = local
		a.login = local
	}
	return a, nil
}

func (a *Application) Logger() internal.Logger         { return a.logger }
func (a *Application) Records() storage.RecordStore    { return a.store }
func (a *Application) Reports() *service.ReportService { return a.reports }
func (a *Application) Publisher() events.Publisher     { return a.publisher }
func (a *Application) Metrics() *metrics.Metrics       { return a.metrics }
func (a *Application) AuthProvider() auth.Provider     { return a.provider }
func (a *Application) Config() *config.Config          { return a.cfg }
func (a *Application) Login() api.LoginProvider        { return a.login }


// Close flushes the publisher and the store.
func (a *Application) Close() error {
	return errors.Join(a.publisher.Close(), a.store.Close())
}

var _ api.App = (*Application)(nil)

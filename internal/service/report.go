package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/stats"
	"github.com/yourname/sleepreport/internal/storage"
)

// ReportRecorder is told about every report built. *metrics.Metrics implements it.
type ReportRecorder interface {
	ReportBuilt(kind, status string)
}

// ReportService fetches records and hands them to the stats package. The
// anchor date is "now" in the configured location.
type ReportService struct {
	store    storage.RecordStore
	loc      *time.Location
	now      func() time.Time
	recorder ReportRecorder
	logger   internal.Logger
}

func NewReportService(store storage.RecordStore, loc *time.Location, logger internal.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{store: store, loc: loc, now: time.Now, logger: logger}
}

// WithClock replaces time.Now. Tests pin the anchor date with it.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) WithRecorder(r ReportRecorder) *ReportService {
	s.recorder = r
	return s
}

// Now is the current time in the report location.
func (s *ReportService) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *ReportService) Weekly(ctx context.Context, user string) (stats.Report, error) {
	return s.userReport(ctx, "weekly", user, stats.LastNDays(stats.WeekDays))
}

func (s *ReportService) History(ctx context.Context, user string) (stats.Report, error) {
	return s.userReport(ctx, "history", user, stats.LastNDays(stats.HistoryDays))
}

func (s *ReportService) Today(ctx context.Context, user string) (stats.Report, error) {
	return s.userReport(ctx, "today", user, stats.Today())
}

// AllUsers is the admin overview: one block per user over w.
func (s *ReportService) AllUsers(ctx context.Context, w stats.Window) (stats.Report, error) {
	records, err := s.fetch(ctx, storage.RecordFilter{})
	if err != nil {
		return stats.Report{}, err
	}
	rep := stats.BuildAllUsersReport(records, s.Now(), w)
	s.observe("all_users", rep)
	return rep, nil
}

func (s *ReportService) Advice(ctx context.Context, user string) (stats.Report, error) {
	records, err := s.fetch(ctx, storage.RecordFilter{User: user})
	if err != nil {
		return stats.Report{}, err
	}
	rep := stats.BuildAdvisory(records, user, s.Now())
	s.observe("advice", rep)
	return rep, nil
}

// Records lists the user's records, newest first.
func (s *ReportService) Records(ctx context.Context, user string) ([]internal.SleepRecord, error) {
	records, err := s.fetch(ctx, storage.RecordFilter{User: user})
	if err != nil {
		return nil, err
	}
	SortNewestFirst(records)
	return records, nil
}

// HasToday reports whether the user already logged a record for today's date.
func (s *ReportService) HasToday(ctx context.Context, user string) (bool, error) {
	ok, err := s.store.HasEntry(ctx, user, stats.DateOf(s.Now()).Format(stats.DateLayout))
	if err != nil {
		return false, fmt.Errorf("checking today's entry: %w", err)
	}
	return ok, nil
}

func (s *ReportService) userReport(ctx context.Context, kind, user string, w stats.Window) (stats.Report, error) {
	records, err := s.fetch(ctx, storage.RecordFilter{User: user})
	if err != nil {
		return stats.Report{}, err
	}
	rep := stats.BuildUserReport(records, user, s.Now(), w)
	s.observe(kind, rep)
	return rep, nil
}

func (s *ReportService) fetch(ctx context.Context, f storage.RecordFilter) ([]internal.SleepRecord, error) {
	records, err := s.store.FetchRecords(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	if s.logger != nil {
		if _, skipped := stats.NormalizeWithStats(records); skipped > 0 {
			s.logger.Debugf("reports: skipping %d malformed record(s)", skipped)
		}
	}
	return records, nil
}

func (s *ReportService) observe(kind string, rep stats.Report) {
	if s.recorder != nil {
		s.recorder.ReportBuilt(kind, string(rep.Status))
	}
}

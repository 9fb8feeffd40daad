package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/service"
	"github.com/yourname/sleepreport/internal/stats"
	"github.com/yourname/sleepreport/internal/storage"
)

var anchor = time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC)

// testApp wires an App backed by an in-memory sqlite store.
func testApp(t *testing.T) (*App, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:", internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	svc := service.NewReportService(store, time.UTC, nil).WithClock(func() time.Time { return anchor })
	return &App{Reports: svc}, store
}

func seed(t *testing.T, s storage.RecordStore, user string, days int, sleep, wake string, wellbeing int) {
	t.Helper()
	for d := 0; d < days; d++ {
		date := anchor.AddDate(0, 0, -d).Format(stats.DateLayout)
		require.NoError(t, s.SaveRecord(context.Background(), &internal.SleepRecord{
			ID: user + date, User: user, Date: date, SleepTime: sleep, WakeTime: wake,
			Wellbeing: internal.ScoreOf(wellbeing), CreatedAt: anchor,
		}))
	}
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestWeeklyCmd(t *testing.T) {
	app, store := testApp(t)
	seed(t, store, "alice", 2, "23:00:00", "07:00:00", 8)

	out, err := execute(t, app, "weekly", "--user", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Statistics for the last 7 days:\nAverage sleep time: 23:00\nAverage wake time: 07:00\nAverage wellbeing: 8.0\n", out)

	out, err = execute(t, app, "today", "-u", "bob")
	require.NoError(t, err)
	assert.Equal(t, stats.NoDataText+"\n", out)
}

func TestUserFlagRequired(t *testing.T) {
	app, _ := testApp(t)
	_, err := execute(t, app, "history")
	assert.Error(t, err)
}

func TestAdviceCmd(t *testing.T) {
	app, store := testApp(t)
	seed(t, store, "alice", 3, "23:00:00", "07:00:00", 8)
	out, err := execute(t, app, "advice", "--user", "alice")
	require.NoError(t, err)
	assert.Equal(t, stats.InsufficientDataText+"\n", out)

	seed(t, store, "bob", 7, "22:00:00", "08:00:00", 9)
	out, err = execute(t, app, "advice", "--user", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, stats.SleepAdvice(10))
	assert.Contains(t, out, stats.WellbeingAdvice(9))
}

func TestAllCmd(t *testing.T) {
	app, store := testApp(t)
	seed(t, store, "alice", 10, "23:00:00", "07:00:00", 8)
	seed(t, store, "bob", 1, "01:00:00", "09:00:00", 4)

	out, err := execute(t, app, "all", "--json")
	require.NoError(t, err)
	var rep stats.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "7d", rep.Window)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, 7, samplesFor(rep, "alice"))
	assert.Equal(t, 1, samplesFor(rep, "bob"))

	out, err = execute(t, app, "all", "--window", "all", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 10, samplesFor(rep, "alice"))

	_, err = execute(t, app, "all", "--window", "soon")
	assert.Error(t, err)
}

func samplesFor(rep stats.Report, user string) int {
	for _, r := range rep.Results {
		if r.User == user {
			return r.SampleCount
		}
	}
	return 0
}

func TestDecoratedHeaderOnlyOnTerminal(t *testing.T) {
	app, store := testApp(t)
	seed(t, store, "alice", 1, "23:00:00", "07:00:00", 8)

	app.IsTerminal = func() bool { return true }
	out, err := execute(t, app, "weekly", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "weekly report for alice")
	assert.Contains(t, out, "─")
}

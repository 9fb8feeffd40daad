// Package stats turns raw sleep records into the averages and advice shown to
// users. Every function here is pure: it reads its arguments, allocates fresh
// results and never touches the store, the clock or a logger.
//
// The pipeline is Normalize -> Filter -> AggregateByUser / AnalyzeWeek -> Format*.
// report.go composes it into the entry points the API and CLI call.
package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/sleepreport/internal"
)

const (
	DefaultWellbeing = 5
	MinutesPerDay    = 24 * 60
	DateLayout       = "2006-01-02"
)

// Entry is a SleepRecord whose fields have all been parsed.
type Entry struct {
	User         string
	Date         time.Time // midnight UTC of the record's calendar date
	SleepMinutes int       // minutes since midnight, 0..1439
	WakeMinutes  int
	Wellbeing    int
}

// Normalize parses records into entries. Records with an unparsable date,
// sleep time or wake time are skipped: a malformed record contributes to no
// aggregate and is not an error. Output order follows input order.
func Normalize(records []internal.SleepRecord) []Entry {
	entries, _ := NormalizeWithStats(records)
	return entries
}

// NormalizeWithStats is Normalize that also reports how many records were
// skipped, for callers that want to log it.
func NormalizeWithStats(records []internal.SleepRecord) ([]Entry, int) {
	entries := make([]Entry, 0, len(records))
	skipped := 0
	for _, r := range records {
		e, err := normalizeRecord(r)
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped
}

func normalizeRecord(r internal.SleepRecord) (Entry, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return Entry{}, err
	}
	sleep, err := ParseClock(r.SleepTime)
	if err != nil {
		return Entry{}, fmt.Errorf("sleep_time: %w", err)
	}
	wake, err := ParseClock(r.WakeTime)
	if err != nil {
		return Entry{}, fmt.Errorf("wake_time: %w", err)
	}
	wellbeing, ok := r.Wellbeing.Int()
	if !ok {
		wellbeing = DefaultWellbeing
	}
	return Entry{
		User:         r.User,
		Date:         date,
		SleepMinutes: sleep,
		WakeMinutes:  wake,
		Wellbeing:    wellbeing,
	}, nil
}

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds must be numeric but are otherwise ignored.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("clock %q: want HH:MM or HH:MM:SS", s)
	}
	limits := []int{23, 59, 59}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("clock %q: %w", s, err)
		}
		if v < 0 || v > limits[i] {
			return 0, fmt.Errorf("clock %q: field %d out of range", s, i+1)
		}
		values[i] = v
	}
	return values[0]*60 + values[1], nil
}

// ParseDate parses an ISO calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return d, nil
}

// DateOf reduces t to its calendar date in t's own location, expressed as
// midnight UTC so it compares directly with Entry.Date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	WeekDays    = 7
	HistoryDays = 10
)

type WindowKind int

const (
	WindowAll WindowKind = iota
	WindowLastNDays
	WindowToday
)

// Window selects which calendar dates a report covers, relative to an anchor date.
type Window struct {
	Kind WindowKind
	Days int // only for WindowLastNDays
}

func All() Window            { return Window{Kind: WindowAll} }
func Today() Window          { return Window{Kind: WindowToday} }
func LastNDays(n int) Window { return Window{Kind: WindowLastNDays, Days: n} }

// String is the form accepted by ParseWindow.
func (w Window) String() string {
	switch w.Kind {
	case WindowToday:
		return "today"
	case WindowLastNDays:
		return strconv.Itoa(w.Days) + "d"
	default:
		return "all"
	}
}

func (w Window) Label() string {
	switch w.Kind {
	case WindowToday:
		return "today"
	case WindowLastNDays:
		if w.Days == 1 {
			return "the last day"
		}
		return fmt.Sprintf("the last %d days", w.Days)
	default:
		return "all time"
	}
}

// ParseWindow accepts "all", "today", "<n>d" and "<n>". Empty means all.
func ParseWindow(s string) (Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all":
		return All(), nil
	case "today":
		return Today(), nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil || n < 1 {
		return Window{}, fmt.Errorf("invalid window %q: want all, today or a positive day count like 7d", s)
	}
	return LastNDays(n), nil
}

// Contains reports whether date falls inside the window ending at anchor.
// Both are compared as calendar dates.
func (w Window) Contains(date, anchor time.Time) bool {
	d := DateOf(date)
	end := DateOf(anchor)
	switch w.Kind {
	case WindowToday:
		return d.Equal(end)
	case WindowLastNDays:
		if w.Days < 1 {
			return false
		}
		start := end.AddDate(0, 0, -(w.Days - 1))
		return !d.Before(start) && !d.After(end)
	default:
		return true
	}
}

// Filter keeps the entries whose date lies in the window. An empty result is
// the ordinary "no data" case.
func Filter(entries []Entry, anchor time.Time, w Window) []Entry {
	if w.Kind == WindowAll {
		out := make([]Entry, len(entries))
		copy(out, entries)
		return out
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if w.Contains(e.Date, anchor) {
			out = append(out, e)
		}
	}
	return out
}

// ForUser keeps the entries of one user.
func ForUser(entries []Entry, user string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.User == user {
			out = append(out, e)
		}
	}
	return out
}

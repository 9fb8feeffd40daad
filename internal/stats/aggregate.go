package stats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// AggregateResult holds one user's averages. The sleep and wake averages are
// clock positions (mean minutes since midnight), not elapsed durations; use
// AnalyzeWeek for hours slept.
type AggregateResult struct {
	User                string  `json:"user"`
	AverageSleepMinutes int     `json:"average_sleep_minutes"`
	AverageWakeMinutes  int     `json:"average_wake_minutes"`
	AverageSleepClock   string  `json:"average_sleep_clock"`
	AverageWakeClock    string  `json:"average_wake_clock"`
	AverageWellbeing    float64 `json:"average_wellbeing"`
	SampleCount         int     `json:"sample_count"`
}

// AggregateByUser groups entries by user and averages each group. Groups come
// out in order of each user's first entry.
func AggregateByUser(entries []Entry) []AggregateResult {
	groups := make(map[string][]Entry)
	var order []string
	for _, e := range entries {
		if _, seen := groups[e.User]; !seen {
			order = append(order, e.User)
		}
		groups[e.User] = append(groups[e.User], e)
	}

	results := make([]AggregateResult, 0, len(order))
	for _, user := range order {
		if r, ok := average(user, groups[user]); ok {
			results = append(results, r)
		}
	}
	return results
}

// AggregateUser averages all entries as a single group, labelled with the
// first entry's user. ok is false when there are no entries.
func AggregateUser(entries []Entry) (AggregateResult, bool) {
	if len(entries) == 0 {
		return AggregateResult{}, false
	}
	return average(entries[0].User, entries)
}

func average(user string, entries []Entry) (AggregateResult, bool) {
	n := len(entries)
	if n == 0 {
		return AggregateResult{}, false
	}
	var sleep, wake, wellbeing int
	for _, e := range entries {
		sleep += e.SleepMinutes
		wake += e.WakeMinutes
		wellbeing += e.Wellbeing
	}
	avgSleep := sleep / n
	avgWake := wake / n
	return AggregateResult{
		User:                user,
		AverageSleepMinutes: avgSleep,
		AverageWakeMinutes:  avgWake,
		AverageSleepClock:   ClockString(avgSleep),
		AverageWakeClock:    ClockString(avgWake),
		AverageWellbeing:    roundTenth(float64(wellbeing) / float64(n)),
		SampleCount:         n,
	}, true
}

// ClockString renders minutes since midnight as HH:MM.
func ClockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// roundTenth rounds the way "%.1f" prints, so stored and rendered values agree.
func roundTenth(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

var ErrInsufficientData = errors.New("stats: fewer than 7 entries in the last week")

// WeekAnalysis is the duration-based weekly summary that drives advice.
type WeekAnalysis struct {
	User          string  `json:"user"`
	AvgSleepHours float64 `json:"avg_sleep_hours"`
	AvgWellbeing  float64 `json:"avg_wellbeing"`
}

// SleepDuration is the elapsed minutes from falling asleep to waking,
// wrapping past midnight: 23:30 -> 07:00 is 450.
func SleepDuration(e Entry) int {
	d := (e.WakeMinutes - e.SleepMinutes) % MinutesPerDay
	if d < 0 {
		d += MinutesPerDay
	}
	return d
}

// AnalyzeWeek expects one user's entries already restricted to the last
// WeekDays days. It needs a full week: with fewer entries it returns
// ErrInsufficientData. If the store somehow returned more than one entry per
// day, the WeekDays most recent entries are used.
func AnalyzeWeek(entries []Entry) (WeekAnalysis, error) {
	if len(entries) < WeekDays {
		return WeekAnalysis{}, ErrInsufficientData
	}
	week := make([]Entry, len(entries))
	copy(week, entries)
	sort.SliceStable(week, func(i, j int) bool {
		return week[i].Date.After(week[j].Date)
	})
	week = week[:WeekDays]

	var minutes, wellbeing int
	for _, e := range week {
		minutes += SleepDuration(e)
		wellbeing += e.Wellbeing
	}
	return WeekAnalysis{
		User:          week[0].User,
		AvgSleepHours: float64(minutes) / WeekDays / 60,
		AvgWellbeing:  float64(wellbeing) / WeekDays,
	}, nil
}

package stats

import (
	"time"

	"github.com/yourname/sleepreport/internal"
)

type Status string

const (
	StatusOK               Status = "ok"
	StatusNoData           Status = "no_data"
	StatusInsufficientData Status = "insufficient_data"
)

// Report is what the API and CLI display. Text is always set, including the
// no-data and insufficient-data messages, so callers can show it as is.
type Report struct {
	Status  Status            `json:"status"`
	Window  string            `json:"window,omitempty"`
	Text    string            `json:"text"`
	Results []AggregateResult `json:"results,omitempty"`
	Advice  *WeekAnalysis     `json:"advice,omitempty"`
}

func noData(w string) Report {
	return Report{Status: StatusNoData, Window: w, Text: NoDataText}
}

// BuildUserReport averages one user's records over the window. Records of
// other users are ignored; an empty user treats every record as the same user's.
func BuildUserReport(records []internal.SleepRecord, user string, anchor time.Time, w Window) Report {
	entries := Normalize(records)
	if user != "" {
		entries = ForUser(entries, user)
	}
	result, ok := AggregateUser(Filter(entries, anchor, w))
	if !ok {
		return noData(w.String())
	}
	return Report{
		Status:  StatusOK,
		Window:  w.String(),
		Text:    FormatPersonal(result, w),
		Results: []AggregateResult{result},
	}
}

// BuildAllUsersReport averages every user's records over the window, one block per user.
func BuildAllUsersReport(records []internal.SleepRecord, anchor time.Time, w Window) Report {
	results := AggregateByUser(Filter(Normalize(records), anchor, w))
	if len(results) == 0 {
		return noData(w.String())
	}
	return Report{
		Status:  StatusOK,
		Window:  w.String(),
		Text:    FormatAllUsers(results),
		Results: results,
	}
}

// BuildAdvisory analyzes the user's last week. A user with no usable records
// at all gets no_data; one with records but fewer than a full week in the
// window gets insufficient_data.
func BuildAdvisory(records []internal.SleepRecord, user string, anchor time.Time) Report {
	w := LastNDays(WeekDays)
	entries := Normalize(records)
	if user != "" {
		entries = ForUser(entries, user)
	}
	if len(entries) == 0 {
		return noData(w.String())
	}
	analysis, err := AnalyzeWeek(Filter(entries, anchor, w))
	if err != nil {
		return Report{Status: StatusInsufficientData, Window: w.String(), Text: InsufficientDataText}
	}
	return Report{
		Status: StatusOK,
		Window: w.String(),
		Text:   FormatAdvice(analysis),
		Advice: &analysis,
	}
}

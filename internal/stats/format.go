package stats

import (
	"fmt"
	"strings"
)

const (
	NoDataText           = "No data for this report."
	InsufficientDataText = "Not enough data! Come back later."
)

const (
	adviceSleepShort  = "You are sleeping less than the recommended amount. Lack of sleep can reduce concentration and cause irritability and fatigue. Try going to bed 30-60 minutes earlier, avoid screens before sleep and keep a steady rest routine."
	adviceSleepNormal = "Your sleep is within the normal range, which is great for recovery, mood and productivity. Keep to a regular sleep schedule, even on weekends."
	adviceSleepLong   = "You may be sleeping more than you need. The body sometimes needs extra recovery time, but regularly oversleeping can be a sign of fatigue or too little daytime activity. Try to go to bed and get up at the same time every day."

	adviceWellbeingLow  = "Your wellbeing is below average. Pay attention to your sleep routine, stress level, diet and physical activity. Even short walks or a quick warm-up during the day can help improve how you feel."
	adviceWellbeingOK   = "Your wellbeing is fine, but there is always room to improve. Keep an eye on sleep, diet and activity. New habits such as breathing exercises or keeping a journal can also help."
	adviceWellbeingHigh = "Your wellbeing is excellent! You are taking good care of yourself. Keep up the healthy lifestyle and the balance between activity and rest."
)

// FormatUserBlock renders one user's averages for the multi-user report.
func FormatUserBlock(r AggregateResult) string {
	return fmt.Sprintf("User: %s\nAverage sleep time: %s\nAverage wake time: %s\nAverage wellbeing: %.1f",
		r.User, r.AverageSleepClock, r.AverageWakeClock, r.AverageWellbeing)
}

// FormatAllUsers joins user blocks with a blank line, keeping the given order.
func FormatAllUsers(results []AggregateResult) string {
	if len(results) == 0 {
		return NoDataText
	}
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = FormatUserBlock(r)
	}
	return strings.Join(blocks, "\n\n")
}

// FormatPersonal renders a single user's own report with a header naming the window.
func FormatPersonal(r AggregateResult, w Window) string {
	return fmt.Sprintf("Statistics for %s:\nAverage sleep time: %s\nAverage wake time: %s\nAverage wellbeing: %.1f",
		w.Label(), r.AverageSleepClock, r.AverageWakeClock, r.AverageWellbeing)
}

// FormatAdvice picks one paragraph for hours slept and one for wellbeing.
func FormatAdvice(a WeekAnalysis) string {
	return SleepAdvice(a.AvgSleepHours) + "\n" + WellbeingAdvice(a.AvgWellbeing)
}

// SleepAdvice tiers: under 7 hours, 7 to 9 inclusive, over 9.
func SleepAdvice(hours float64) string {
	switch {
	case hours < 7:
		return adviceSleepShort
	case hours <= 9:
		return adviceSleepNormal
	default:
		return adviceSleepLong
	}
}

// WellbeingAdvice tiers: under 6, 6 to 8 inclusive, over 8.
func WellbeingAdvice(score float64) string {
	switch {
	case score < 6:
		return adviceWellbeingLow
	case score <= 8:
		return adviceWellbeingOK
	default:
		return adviceWellbeingHigh
	}
}

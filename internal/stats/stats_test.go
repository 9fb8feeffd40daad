package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepreport/internal"
)

var anchor = time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC)

func rec(user, date, sleep, wake string, wellbeing internal.WellbeingScore) internal.SleepRecord {
	return internal.SleepRecord{User: user, Date: date, SleepTime: sleep, WakeTime: wake, Wellbeing: wellbeing}
}

func daysAgo(n int) string {
	return anchor.AddDate(0, 0, -n).Format(DateLayout)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"07:05:30", 425, false},
		{" 7:5", 425, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:30:61", 0, true},
		{"12:30:xx", 0, true},
		{"12", 0, true},
		{"1:2:3:4", 0, true},
		{"bad", 0, true},
		{"", 0, true},
		{"-1:30", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_SkipsMalformedAndDefaultsWellbeing(t *testing.T) {
	records := []internal.SleepRecord{
		rec("alice", "2026-10-18", "23:00:00", "07:00:00", "8"),
		rec("alice", "2026-10-17", "bad", "07:00", "8"),
		rec("alice", "2026-10-16", "23:00", "7", "8"),
		rec("alice", "not-a-date", "23:00", "07:00", "8"),
		rec("bob", "2026-10-18", "01:15", "09:45", ""),
		rec("bob", "2026-10-17", "01:15", "09:45", "great"),
	}
	entries, skipped := NormalizeWithStats(records)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, skipped)

	assert.Equal(t, Entry{
		User:         "alice",
		Date:         time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
		SleepMinutes: 1380,
		WakeMinutes:  420,
		Wellbeing:    8,
	}, entries[0])
	assert.Equal(t, DefaultWellbeing, entries[1].Wellbeing)
	assert.Equal(t, DefaultWellbeing, entries[2].Wellbeing)
	assert.Equal(t, 75, entries[1].SleepMinutes)
}

func TestFilter_Windows(t *testing.T) {
	entries := Normalize([]internal.SleepRecord{
		rec("a", daysAgo(-1), "23:00", "07:00", "5"), // tomorrow
		rec("a", daysAgo(0), "23:00", "07:00", "5"),
		rec("a", daysAgo(6), "23:00", "07:00", "5"),
		rec("a", daysAgo(7), "23:00", "07:00", "5"),
		rec("a", daysAgo(9), "23:00", "07:00", "5"),
		rec("a", daysAgo(10), "23:00", "07:00", "5"),
	})
	require.Len(t, entries, 6)

	dates := func(es []Entry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Date.Format(DateLayout))
		}
		return out
	}

	assert.Equal(t, []string{daysAgo(0), daysAgo(6)}, dates(Filter(entries, anchor, LastNDays(7))))
	assert.Equal(t, []string{daysAgo(0), daysAgo(6), daysAgo(7), daysAgo(9)}, dates(Filter(entries, anchor, LastNDays(10))))
	assert.Equal(t, []string{daysAgo(0)}, dates(Filter(entries, anchor, Today())))
	assert.Len(t, Filter(entries, anchor, All()), 6)
	assert.Empty(t, Filter(entries, anchor, LastNDays(0)))
}

func TestFilter_AnchorUsesItsOwnCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	lateEvening := time.Date(2026, 10, 19, 23, 30, 0, 0, loc) // 18:30 UTC, still the 19th locally
	entries := Normalize([]internal.SleepRecord{rec("a", "2026-10-19", "23:00", "07:00", "5")})
	assert.Len(t, Filter(entries, lateEvening, Today()), 1)
	assert.Empty(t, Filter(entries, lateEvening.Add(time.Hour), Today()))
}

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]Window{
		"":      All(),
		"all":   All(),
		"TODAY": Today(),
		"7d":    LastNDays(7),
		"10":    LastNDays(10),
	} {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"0d", "-3", "week", "d"} {
		_, err := ParseWindow(in)
		assert.Error(t, err, in)
	}
	assert.Equal(t, "7d", LastNDays(7).String())
}

func TestAggregateByUser_SingleUserScenario(t *testing.T) {
	entries := Normalize([]internal.SleepRecord{
		rec("alice", daysAgo(1), "23:00", "07:00", "8"),
		rec("alice", daysAgo(0), "23:30", "06:30", "6"),
	})
	results := AggregateByUser(entries)
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "alice", r.User)
	assert.Equal(t, "23:15", r.AverageSleepClock)
	assert.Equal(t, "06:45", r.AverageWakeClock)
	assert.Equal(t, 7.0, r.AverageWellbeing)
	assert.Equal(t, 2, r.SampleCount)
}

func TestAggregateByUser_MixedUsers(t *testing.T) {
	entries := Normalize([]internal.SleepRecord{
		rec("bob", daysAgo(0), "01:00", "09:00", "4"),
		rec("alice", daysAgo(0), "22:00", "06:00", "9"),
		rec("bob", daysAgo(1), "02:00", "10:00", "5"),
	})
	results := AggregateByUser(entries)
	require.Len(t, results, 2)

	assert.Equal(t, "bob", results[0].User)
	assert.Equal(t, "01:30", results[0].AverageSleepClock)
	assert.Equal(t, "09:30", results[0].AverageWakeClock)
	assert.Equal(t, 4.5, results[0].AverageWellbeing)
	assert.Equal(t, 2, results[0].SampleCount)

	assert.Equal(t, "alice", results[1].User)
	assert.Equal(t, "22:00", results[1].AverageSleepClock)
	assert.Equal(t, 9.0, results[1].AverageWellbeing)
	assert.Equal(t, 1, results[1].SampleCount)
}

func TestAggregateByUser_MalformedRecordDoesNotChangeResult(t *testing.T) {
	good := rec("alice", daysAgo(0), "23:10", "07:20", "7")
	bad := rec("alice", daysAgo(1), "xx:10", "07:20", "7")

	withBad := AggregateByUser(Normalize([]internal.SleepRecord{good, bad}))
	onlyGood := AggregateByUser(Normalize([]internal.SleepRecord{good}))
	assert.Equal(t, onlyGood, withBad)
	assert.Equal(t, 1, withBad[0].SampleCount)
}

func TestAggregateByUser_FloorMeanAndRounding(t *testing.T) {
	entries := Normalize([]internal.SleepRecord{
		rec("a", daysAgo(0), "00:00", "00:00", "7"),
		rec("a", daysAgo(1), "00:01", "00:01", "8"),
		rec("a", daysAgo(2), "00:01", "00:02", "8"),
	})
	r := AggregateByUser(entries)[0]
	assert.Equal(t, 0, r.AverageSleepMinutes)
	assert.Equal(t, 1, r.AverageWakeMinutes)
	assert.Equal(t, "00:00", r.AverageSleepClock)
	assert.Equal(t, "00:01", r.AverageWakeClock)
	assert.Equal(t, 7.7, r.AverageWellbeing)
}

func TestAggregateByUser_AveragesStayInClockRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		n := 1 + rng.Intn(10)
		entries := make([]Entry, n)
		sumSleep, sumWake := 0, 0
		for j := range entries {
			entries[j] = Entry{User: "u", SleepMinutes: rng.Intn(MinutesPerDay), WakeMinutes: rng.Intn(MinutesPerDay), Wellbeing: 1 + rng.Intn(10)}
			sumSleep += entries[j].SleepMinutes
			sumWake += entries[j].WakeMinutes
		}
		r := AggregateByUser(entries)[0]
		assert.Equal(t, sumSleep/n, r.AverageSleepMinutes)
		assert.Equal(t, sumWake/n, r.AverageWakeMinutes)
		assert.GreaterOrEqual(t, r.AverageSleepMinutes, 0)
		assert.LessOrEqual(t, r.AverageSleepMinutes, MinutesPerDay-1)
		assert.LessOrEqual(t, r.AverageWakeMinutes, MinutesPerDay-1)
	}
}

func TestAggregateByUser_Idempotent(t *testing.T) {
	entries := Normalize([]internal.SleepRecord{
		rec("a", daysAgo(0), "23:00", "07:00", "7"),
		rec("b", daysAgo(0), "22:00", "06:00", "3"),
		rec("a", daysAgo(1), "00:30", "08:00", "9"),
	})
	assert.ElementsMatch(t, AggregateByUser(entries), AggregateByUser(entries))
	assert.Empty(t, AggregateByUser(nil))
}

func TestSleepDuration_WrapsPastMidnight(t *testing.T) {
	e := Normalize([]internal.SleepRecord{rec("a", daysAgo(0), "23:30", "07:00", "5")})[0]
	assert.Equal(t, 450, SleepDuration(e))
	assert.Equal(t, 480, SleepDuration(Entry{SleepMinutes: 60, WakeMinutes: 540}))
	assert.Equal(t, 0, SleepDuration(Entry{SleepMinutes: 600, WakeMinutes: 600}))
}

func weekOf(user string, days int, sleep, wake string, wellbeing internal.WellbeingScore) []internal.SleepRecord {
	var out []internal.SleepRecord
	for i := 0; i < days; i++ {
		out = append(out, rec(user, daysAgo(i), sleep, wake, wellbeing))
	}
	return out
}

func TestAnalyzeWeek(t *testing.T) {
	six := Filter(Normalize(weekOf("a", 6, "23:30", "07:00", "7")), anchor, LastNDays(WeekDays))
	_, err := AnalyzeWeek(six)
	assert.ErrorIs(t, err, ErrInsufficientData)

	seven := Filter(Normalize(weekOf("a", 7, "23:30", "07:00", "7")), anchor, LastNDays(WeekDays))
	a, err := AnalyzeWeek(seven)
	require.NoError(t, err)
	assert.Equal(t, "a", a.User)
	assert.InDelta(t, 7.5, a.AvgSleepHours, 1e-9)
	assert.InDelta(t, 7.0, a.AvgWellbeing, 1e-9)
}

func TestAnalyzeWeek_UsesMostRecentSevenEntries(t *testing.T) {
	entries := Normalize(weekOf("a", 7, "22:00", "06:00", "9"))
	// a stray duplicate for an older date must not shift the average
	entries = append(entries, Normalize([]internal.SleepRecord{rec("a", daysAgo(6), "04:00", "06:00", "1")})...)
	a, err := AnalyzeWeek(entries)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, a.AvgSleepHours, 1e-9)
	assert.InDelta(t, 9.0, a.AvgWellbeing, 1e-9)
}

func TestFormatUserBlockAndAllUsers(t *testing.T) {
	results := []AggregateResult{
		{User: "bob", AverageSleepClock: "01:30", AverageWakeClock: "09:30", AverageWellbeing: 4.5},
		{User: "alice", AverageSleepClock: "22:00", AverageWakeClock: "06:00", AverageWellbeing: 9},
	}
	assert.Equal(t, "User: bob\nAverage sleep time: 01:30\nAverage wake time: 09:30\nAverage wellbeing: 4.5", FormatUserBlock(results[0]))
	assert.Equal(t,
		"User: bob\nAverage sleep time: 01:30\nAverage wake time: 09:30\nAverage wellbeing: 4.5\n\n"+
			"User: alice\nAverage sleep time: 22:00\nAverage wake time: 06:00\nAverage wellbeing: 9.0",
		FormatAllUsers(results))
	assert.Equal(t, NoDataText, FormatAllUsers(nil))
}

func TestFormatAdvice_Tiers(t *testing.T) {
	tests := []struct {
		hours, wellbeing float64
		sleep, mood      string
	}{
		{6.9, 5.9, adviceSleepShort, adviceWellbeingLow},
		{7, 6, adviceSleepNormal, adviceWellbeingOK},
		{9, 8, adviceSleepNormal, adviceWellbeingOK},
		{9.1, 8.1, adviceSleepLong, adviceWellbeingHigh},
	}
	for _, tt := range tests {
		got := FormatAdvice(WeekAnalysis{AvgSleepHours: tt.hours, AvgWellbeing: tt.wellbeing})
		assert.Equal(t, tt.sleep+"\n"+tt.mood, got)
	}
}

func TestBuildUserReport(t *testing.T) {
	records := []internal.SleepRecord{
		rec("alice", daysAgo(0), "23:00", "07:00", "8"),
		rec("alice", daysAgo(1), "23:30", "06:30", "6"),
		rec("alice", daysAgo(20), "20:00", "04:00", "1"),
		rec("bob", daysAgo(0), "03:00", "11:00", "2"),
	}
	r := BuildUserReport(records, "alice", anchor, LastNDays(7))
	require.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "7d", r.Window)
	assert.Equal(t, "Statistics for the last 7 days:\nAverage sleep time: 23:15\nAverage wake time: 06:45\nAverage wellbeing: 7.0", r.Text)
	require.Len(t, r.Results, 1)
	assert.Equal(t, 2, r.Results[0].SampleCount)

	empty := BuildUserReport(records, "carol", anchor, LastNDays(7))
	assert.Equal(t, StatusNoData, empty.Status)
	assert.Equal(t, NoDataText, empty.Text)
}

func TestBuildUserReport_OnlyMalformedIsNoData(t *testing.T) {
	r := BuildUserReport([]internal.SleepRecord{rec("alice", daysAgo(0), "bad", "07:00", "5")}, "alice", anchor, All())
	assert.Equal(t, StatusNoData, r.Status)
	assert.Empty(t, r.Results)
}

func TestBuildAllUsersReport(t *testing.T) {
	records := []internal.SleepRecord{
		rec("alice", daysAgo(0), "23:00", "07:00", "8"),
		rec("bob", daysAgo(2), "01:00", "09:00", "4"),
		rec("carol", daysAgo(8), "22:00", "06:00", "9"),
	}
	r := BuildAllUsersReport(records, anchor, LastNDays(7))
	require.Equal(t, StatusOK, r.Status)
	require.Len(t, r.Results, 2)
	assert.Equal(t, FormatAllUsers(r.Results), r.Text)

	all := BuildAllUsersReport(records, anchor, All())
	assert.Len(t, all.Results, 3)

	none := BuildAllUsersReport(nil, anchor, All())
	assert.Equal(t, StatusNoData, none.Status)
}

func TestBuildAdvisory(t *testing.T) {
	r := BuildAdvisory(weekOf("alice", 6, "23:30", "07:00", "7"), "alice", anchor)
	assert.Equal(t, StatusInsufficientData, r.Status)
	assert.Equal(t, InsufficientDataText, r.Text)

	r = BuildAdvisory(weekOf("alice", 7, "23:30", "07:00", "7"), "alice", anchor)
	require.Equal(t, StatusOK, r.Status)
	require.NotNil(t, r.Advice)
	assert.InDelta(t, 7.5, r.Advice.AvgSleepHours, 1e-9)
	assert.Equal(t, adviceSleepNormal+"\n"+adviceWellbeingOK, r.Text)

	r = BuildAdvisory(nil, "alice", anchor)
	assert.Equal(t, StatusNoData, r.Status)
}

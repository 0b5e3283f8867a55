package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamping(t *testing.T) {
	require.Equal(t, date(2024, time.February, 29), AddMonths(date(2024, time.January, 31), 1))
	require.Equal(t, date(2023, time.February, 28), AddMonths(date(2023, time.January, 31), 1))
	require.Equal(t, date(2024, time.April, 30), AddMonths(date(2024, time.January, 31), 3))
	require.Equal(t, date(2024, time.March, 15), AddMonths(date(2024, time.February, 15), 1))
}

func TestMilestoneDatesTwelveMonthWindow(t *testing.T) {
	dates := MilestoneDates(date(2024, time.January, 1), date(2025, time.January, 1), Interval{Months: 3})
	require.Equal(t, []time.Time{
		date(2024, time.April, 1),
		date(2024, time.July, 1),
		date(2024, time.October, 1),
		date(2025, time.January, 1),
	}, dates)
}

func TestMilestoneDatesAppendsEndWhenOffGrid(t *testing.T) {
	// 10-month window with 3-month interval: months 3, 6, 9 plus the
	// window end as a forced final milestone.
	dates := MilestoneDates(date(2024, time.January, 1), date(2024, time.November, 1), Interval{Months: 3})
	require.Equal(t, []time.Time{
		date(2024, time.April, 1),
		date(2024, time.July, 1),
		date(2024, time.October, 1),
		date(2024, time.November, 1),
	}, dates)
}

func TestMilestoneDatesNoDuplicateEnd(t *testing.T) {
	dates := MilestoneDates(date(2024, time.January, 1), date(2024, time.July, 1), Interval{Months: 3})
	require.Equal(t, []time.Time{
		date(2024, time.April, 1),
		date(2024, time.July, 1),
	}, dates)
}

func TestMilestoneDatesDegenerateWindow(t *testing.T) {
	require.Nil(t, MilestoneDates(date(2024, time.June, 1), date(2024, time.January, 1), Interval{Months: 3}))
	require.Nil(t, MilestoneDates(date(2024, time.January, 1), date(2024, time.June, 1), Interval{}))
}

func TestEvaluateMilestonesNoHistory(t *testing.T) {
	dates := MilestoneDates(date(2024, time.January, 1), date(2025, time.January, 1), Interval{Months: 3})
	results := EvaluateMilestones(dates, nil, 30)
	require.Len(t, results, 4)
	for _, m := range results {
		require.False(t, m.Done)
		require.Nil(t, m.MatchedDate)
	}
}

func TestEvaluateMilestonesExactMatch(t *testing.T) {
	dates := MilestoneDates(date(2024, time.January, 1), date(2025, time.January, 1), Interval{Months: 3})
	history := []FreeServiceRecord{
		{Date: date(2024, time.April, 1), HandlerID: "w1", HandlerName: "Arun"},
	}
	results := EvaluateMilestones(dates, history, 30)
	require.True(t, results[0].Done)
	require.Equal(t, date(2024, time.April, 1), *results[0].MatchedDate)
	require.Equal(t, "w1", results[0].HandlerID)
	require.Equal(t, "Arun", results[0].HandlerName)
	require.False(t, results[1].Done)
}

func TestEvaluateMilestonesToleranceBoundary(t *testing.T) {
	dates := []time.Time{date(2024, time.April, 1)}

	// 30 days off: done.
	within := EvaluateMilestones(dates, []FreeServiceRecord{{Date: date(2024, time.May, 1)}}, 30)
	require.True(t, within[0].Done)

	// 31 days off: not done.
	outside := EvaluateMilestones(dates, []FreeServiceRecord{{Date: date(2024, time.May, 2)}}, 30)
	require.False(t, outside[0].Done)
}

func TestFilterPeriod(t *testing.T) {
	dates := MilestoneDates(date(2024, time.January, 1), date(2025, time.January, 1), Interval{Months: 3})
	all := EvaluateMilestones(dates, nil, 30)
	q3 := FilterPeriod(all, date(2024, time.July, 1), date(2024, time.September, 30))
	require.Len(t, q3, 1)
	require.Equal(t, date(2024, time.July, 1), q3[0].Due)
}

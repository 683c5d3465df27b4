package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedGenerator pins the moving deadline so output is reproducible.
func fixedGenerator(now time.Time) *Generator {
	return &Generator{Now: func() time.Time { return now }}
}

func TestParseGranularity(t *testing.T) {
	for _, valid := range []string{"hourly", "daily", "weekly", "monthly", "yearly"} {
		g, err := ParseGranularity(valid)
		require.NoError(t, err)
		assert.Equal(t, Granularity(valid), g)
	}

	_, err := ParseGranularity("quarterly")
	assert.Error(t, err)
}

func TestWindowWireFormat(t *testing.T) {
	w := Window{
		Start: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2022, time.January, 8, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "2022-01-01T00:00:00Z", w.StartString())
	assert.Equal(t, "2022-01-08T00:00:00Z", w.EndString())
	assert.Equal(t, "2022-01-01T000000Z_2022-01-08T000000Z.response.json", w.Filename())
}

func TestGenerateRejectsInvalidRange(t *testing.T) {
	g := fixedGenerator(time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC))

	_, err := g.Generate(Hourly, 2005, 2006)
	assert.Error(t, err, "years before the platform's earliest data must be rejected")

	_, err = g.Generate(Hourly, 2010, 2009)
	assert.Error(t, err, "stop year before start year must be rejected")
}

// assertOrdered checks the cross-granularity invariants: start < end,
// strictly increasing, non-overlapping, nothing past now.
func assertOrdered(t *testing.T, windows []Window, now time.Time) {
	t.Helper()
	for i, w := range windows {
		assert.True(t, w.Start.Before(w.End), "window %d: start %v not before end %v", i, w.Start, w.End)
		assert.False(t, w.End.After(now), "window %d: end %v exceeds now %v", i, w.End, now)
		assert.True(t, now.Sub(w.Start) >= MinAge, "window %d: start %v within minimum age of now", i, w.Start)
		if i > 0 {
			assert.False(t, windows[i-1].End.After(w.Start), "window %d overlaps its predecessor", i)
			assert.True(t, windows[i-1].Start.Before(w.Start), "windows not strictly increasing at %d", i)
		}
	}
}

func TestHourlyFullPastYear(t *testing.T) {
	now := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Hourly, 2019, 2019)
	require.NoError(t, err)

	// 2019 is not a leap year: 365 days of 24 one-hour windows.
	assert.Len(t, windows, 365*24)
	assertOrdered(t, windows, now)

	first := windows[0]
	assert.Equal(t, "2019-01-01T00:00:00Z", first.StartString())
	assert.Equal(t, "2019-01-01T01:00:00Z", first.EndString())

	last := windows[len(windows)-1]
	assert.Equal(t, "2019-12-31T23:00:00Z", last.StartString())
	assert.Equal(t, "2020-01-01T00:00:00Z", last.EndString())
}

func TestHourlyLeapYear(t *testing.T) {
	now := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Hourly, 2020, 2020)
	require.NoError(t, err)
	assert.Len(t, windows, 366*24)

	// February 29 exists, February 30 does not.
	var feb29, feb30 bool
	for _, w := range windows {
		if w.Start.Month() == time.February {
			switch w.Start.Day() {
			case 29:
				feb29 = true
			case 30:
				feb30 = true
			}
		}
	}
	assert.True(t, feb29)
	assert.False(t, feb30)
}

func TestHourlySkipsInvalidCalendarDates(t *testing.T) {
	now := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Hourly, 2019, 2019)
	require.NoError(t, err)

	for _, w := range windows {
		if w.Start.Month() == time.April {
			assert.LessOrEqual(t, w.Start.Day(), 30, "April 31 must never be emitted")
		}
	}
}

func TestHourlyMinimumAgeHorizon(t *testing.T) {
	now := time.Date(2022, time.June, 15, 12, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Hourly, 2022, 2022)
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	// now - 90m = 10:30, so 10:00 is the last eligible hour start;
	// 11:00 is only an hour old and must be skipped entirely.
	last := windows[len(windows)-1]
	assert.Equal(t, "2022-06-15T10:00:00Z", last.StartString())
	assertOrdered(t, windows, now)
}

func TestDailyClipsToPresentAndStops(t *testing.T) {
	now := time.Date(2022, time.June, 15, 12, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Daily, 2022, 2022)
	require.NoError(t, err)
	require.NotEmpty(t, windows)
	assertOrdered(t, windows, now)

	// Full days through June 14, then June 15 clipped to now - 1h.
	last := windows[len(windows)-1]
	assert.Equal(t, "2022-06-15T00:00:00Z", last.StartString())
	assert.Equal(t, "2022-06-15T11:00:00Z", last.EndString())

	// January through May plus 15 June days.
	assert.Len(t, windows, 31+28+31+30+31+15)
}

func TestWeeklyFirstWindow(t *testing.T) {
	now := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Weekly, 2022, 2022)
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	assert.Equal(t, "2022-01-01T00:00:00Z", windows[0].StartString())
	assert.Equal(t, "2022-01-08T00:00:00Z", windows[0].EndString())
	assertOrdered(t, windows, now)

	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start, "weekly windows must be contiguous")
	}
}

func TestWeeklyClipsFinalWindow(t *testing.T) {
	now := time.Date(2022, time.January, 20, 12, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Weekly, 2022, 2022)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	// Jan 1-8, Jan 8-15, then Jan 15-22 clipped to now.
	assert.Equal(t, "2022-01-15T00:00:00Z", windows[2].StartString())
	assert.Equal(t, "2022-01-20T12:00:00Z", windows[2].EndString())
}

func TestMonthlySpansAndClip(t *testing.T) {
	now := time.Date(2020, time.May, 10, 12, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Monthly, 2020, 2020)
	require.NoError(t, err)
	require.Len(t, windows, 5)

	// Leap-year February runs to the last second of Feb 29.
	assert.Equal(t, "2020-02-01T00:00:00Z", windows[1].StartString())
	assert.Equal(t, "2020-02-29T23:59:59Z", windows[1].EndString())

	// May is clipped to now and generation stops.
	assert.Equal(t, "2020-05-01T00:00:00Z", windows[4].StartString())
	assert.Equal(t, "2020-05-10T12:00:00Z", windows[4].EndString())
}

func TestYearlySpansAndClip(t *testing.T) {
	now := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	windows, err := g.Generate(Yearly, 2019, 2021)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	assert.Equal(t, "2019-01-01T00:00:00Z", windows[0].StartString())
	assert.Equal(t, "2019-12-31T23:59:59Z", windows[0].EndString())

	assert.Equal(t, "2021-01-01T00:00:00Z", windows[2].StartString())
	assert.Equal(t, "2021-07-01T00:00:00Z", windows[2].EndString())
}

func TestEntirelyFutureRangeIsEmpty(t *testing.T) {
	now := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	for _, gran := range []Granularity{Hourly, Daily, Weekly, Monthly, Yearly} {
		windows, err := g.Generate(gran, 2021, 2021)
		require.NoError(t, err)
		assert.Empty(t, windows, "granularity %s", gran)
	}
}

func TestGenerateIsDeterministicForFixedNow(t *testing.T) {
	now := time.Date(2022, time.June, 15, 12, 0, 0, 0, time.UTC)
	g := fixedGenerator(now)

	for _, gran := range []Granularity{Hourly, Daily, Weekly, Monthly, Yearly} {
		first, err := g.Generate(gran, 2021, 2022)
		require.NoError(t, err)
		second, err := g.Generate(gran, 2021, 2022)
		require.NoError(t, err)
		assert.Equal(t, first, second, "granularity %s", gran)
	}
}

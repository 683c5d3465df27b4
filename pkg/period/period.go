package period

import (
	"fmt"
	"strings"
	"time"
)

const (
	// WireFormat is the timestamp layout the search API expects.
	WireFormat = "2006-01-02T15:04:05Z"

	// EarliestYear is the first year for which the platform has data.
	EarliestYear = 2006

	// MinAge is the minimum distance from the current moment a window
	// start must keep. The provider has not reliably indexed anything
	// more recent than this; it is an indexing-lag policy of the data
	// source, not a generator invariant.
	MinAge = 90 * time.Minute

	// DailyClipLag is how far behind the current moment a clipped daily
	// window ends. Same provider-specific policy as MinAge.
	DailyClipLag = time.Hour
)

// Granularity selects how the year range is partitioned into windows.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// ParseGranularity converts a string to a Granularity
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Hourly, Daily, Weekly, Monthly, Yearly:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("%s: is an invalid time range, provide either hourly, daily, weekly, monthly or yearly", s)
	}
}

// Window is a [Start, End) time span in UTC at second precision.
// Monthly and yearly windows carry an inclusive end (the last second of
// the period); the wire format is identical either way.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartString formats the window start for the wire.
func (w Window) StartString() string {
	return w.Start.UTC().Format(WireFormat)
}

// EndString formats the window end for the wire.
func (w Window) EndString() string {
	return w.End.UTC().Format(WireFormat)
}

// Filename derives the deterministic response filename for this window:
// both timestamps with colons stripped, joined by an underscore.
func (w Window) Filename() string {
	start := strings.ReplaceAll(w.StartString(), ":", "")
	end := strings.ReplaceAll(w.EndString(), ":", "")
	return start + "_" + end + ".response.json"
}

// Generator produces the ordered window sequence for a run. Now is
// injectable so tests can pin the moving deadline; output is identical
// for identical inputs and an identical Now, but changes run to run as
// the present advances.
type Generator struct {
	Now func() time.Time
}

// NewGenerator returns a Generator using the wall clock
func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

// Generate partitions [startYear, stopYear] into non-overlapping windows
// of the given granularity, clipped against the current moment. Windows
// whose start falls within MinAge of now are skipped entirely.
func (g *Generator) Generate(gran Granularity, startYear, stopYear int) ([]Window, error) {
	if startYear < EarliestYear {
		return nil, fmt.Errorf("start year %d precedes earliest available year %d", startYear, EarliestYear)
	}
	if stopYear < startYear {
		return nil, fmt.Errorf("stop year %d precedes start year %d", stopYear, startYear)
	}

	now := g.Now().UTC()

	switch gran {
	case Hourly:
		return g.hourly(startYear, stopYear, now), nil
	case Daily:
		return g.daily(startYear, stopYear, now), nil
	case Weekly:
		return g.weekly(startYear, stopYear, now), nil
	case Monthly:
		return g.monthly(startYear, stopYear, now), nil
	case Yearly:
		return g.yearly(startYear, stopYear, now), nil
	default:
		return nil, fmt.Errorf("unknown granularity %q", gran)
	}
}

// validDate reports whether (year, month, day) names a real calendar
// date. time.Date normalizes out-of-range components (April 31 becomes
// May 1), so a round-trip comparison detects them.
func validDate(year, month, day int) bool {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == time.Month(month) && t.Day() == day
}

// tooRecent rejects window starts inside the MinAge horizon, which also
// covers starts in the future.
func tooRecent(t, now time.Time) bool {
	return now.Sub(t) < MinAge
}

func (g *Generator) hourly(startYear, stopYear int, now time.Time) []Window {
	var windows []Window
	for year := startYear; year <= stopYear; year++ {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= 31; day++ {
				if !validDate(year, month, day) {
					continue
				}
				for hour := 0; hour < 24; hour++ {
					start := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
					if tooRecent(start, now) {
						continue
					}
					windows = append(windows, Window{Start: start, End: start.Add(time.Hour)})
				}
			}
		}
	}
	return windows
}

func (g *Generator) daily(startYear, stopYear int, now time.Time) []Window {
	var windows []Window
	for year := startYear; year <= stopYear; year++ {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= 31; day++ {
				if !validDate(year, month, day) {
					continue
				}
				start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
				if tooRecent(start, now) {
					continue
				}
				end := start.AddDate(0, 0, 1)
				if end.After(now) {
					windows = append(windows, Window{Start: start, End: now.Add(-DailyClipLag)})
					return windows
				}
				windows = append(windows, Window{Start: start, End: end})
			}
		}
	}
	return windows
}

func (g *Generator) weekly(startYear, stopYear int, now time.Time) []Window {
	var windows []Window
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	limit := time.Date(stopYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	for start.Before(limit) {
		if tooRecent(start, now) {
			break
		}
		end := start.AddDate(0, 0, 7)
		if end.After(now) {
			windows = append(windows, Window{Start: start, End: now})
			break
		}
		windows = append(windows, Window{Start: start, End: end})
		start = end
	}
	return windows
}

func (g *Generator) monthly(startYear, stopYear int, now time.Time) []Window {
	var windows []Window
	for year := startYear; year <= stopYear; year++ {
		for month := 1; month <= 12; month++ {
			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			if tooRecent(start, now) {
				continue
			}
			// Last instant of the month, inclusive.
			end := start.AddDate(0, 1, 0).Add(-time.Second)
			if end.After(now) {
				windows = append(windows, Window{Start: start, End: now})
				return windows
			}
			windows = append(windows, Window{Start: start, End: end})
		}
	}
	return windows
}

func (g *Generator) yearly(startYear, stopYear int, now time.Time) []Window {
	var windows []Window
	for year := startYear; year <= stopYear; year++ {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		if tooRecent(start, now) {
			continue
		}
		end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
		if end.After(now) {
			windows = append(windows, Window{Start: start, End: now})
			return windows
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows
}

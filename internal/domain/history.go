package domain

import (
	"sort"
	"time"
)

// FilterKind selects which sessions survive a history transform.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterPinned
	FilterMinRating
	// FilterWeather is reserved for a future weather-based filter and is
	// currently a no-op.
	FilterWeather
)

// Filter describes a history filter. MinRating is only read when Kind is
// FilterMinRating.
type Filter struct {
	Kind      FilterKind
	MinRating int
}

// SortOrder selects how a filtered session list is ordered.
type SortOrder int

const (
	SortLatest SortOrder = iota
	SortOldest
	SortHighRating
	SortLowRating
)

// TransformSessions filters then sorts a session list for presentation.
// The input is never mutated; sorting is stable so repeated application is
// a no-op.
func TransformSessions(sessions []Session, filter Filter, order SortOrder) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if matchesFilter(s, filter) {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case SortOldest:
			return out[i].Date.Before(out[j].Date)
		case SortHighRating:
			return out[i].Rating > out[j].Rating
		case SortLowRating:
			return out[i].Rating < out[j].Rating
		default: // SortLatest
			return out[i].Date.After(out[j].Date)
		}
	})

	return out
}

func matchesFilter(s Session, filter Filter) bool {
	switch filter.Kind {
	case FilterPinned:
		return s.Pinned
	case FilterMinRating:
		return s.Rating >= filter.MinRating
	default: // FilterAll, FilterWeather
		return true
	}
}

// DayBucket groups charts sharing one calendar day.
type DayBucket struct {
	Day    time.Time
	Charts []Chart
}

// GroupChartsByDay buckets charts by calendar-day truncation of their time,
// in each chart's own location. Buckets come back ascending by day and each
// bucket's charts ascending by time.
func GroupChartsByDay(charts []Chart) []DayBucket {
	buckets := make(map[time.Time][]Chart)
	for _, c := range charts {
		day := truncateToDay(c.Time)
		buckets[day] = append(buckets[day], c)
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DayBucket, 0, len(days))
	for _, day := range days {
		dayCharts := buckets[day]
		sort.SliceStable(dayCharts, func(i, j int) bool {
			return dayCharts[i].Time.Before(dayCharts[j].Time)
		})
		out = append(out, DayBucket{Day: day, Charts: dayCharts})
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RecentSessions returns the sessions whose date falls within window of now.
// Order is preserved from the input.
func RecentSessions(sessions []Session, window time.Duration) []Session {
	cutoff := clock.Now().Add(-window)
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.Date.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// PinnedCharts returns the latest embedded chart of each pinned session,
// reconstructed with the owning session's beach id. Sessions without charts
// contribute nothing.
func PinnedCharts(sessions []Session) []Chart {
	out := make([]Chart, 0, len(sessions))
	for _, s := range sessions {
		if !s.Pinned || len(s.Charts) == 0 {
			continue
		}
		latest := s.Charts[0]
		for _, cs := range s.Charts[1:] {
			if cs.Time.After(latest.Time) {
				latest = cs
			}
		}
		out = append(out, latest.Chart(s.BeachID))
	}
	return out
}

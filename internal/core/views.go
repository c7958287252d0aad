package core

// Derived read-side views. These are computed on demand from the ledger
// and never stored.

// DateMoodTotal is one raw (date, mood) aggregation bucket as the store
// reports it.
type DateMoodTotal struct {
	Date  Date
	Mood  Mood
	Total Money
}

// MoodPoint is one step of the mood time series: a date with a total for
// every mood, absent moods filled with zero for charting.
type MoodPoint struct {
	Date   Date
	Totals map[Mood]Money
}

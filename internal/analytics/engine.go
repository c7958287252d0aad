// Package analytics computes read-only derived views over the ledger:
// impulse flags, mood aggregates and the running balance. Every operation
// is a total function over whatever the ledger currently contains; an
// empty ledger yields empty or zero results, never an error.
package analytics

import (
	"context"
	"fmt"

	"moodledger/internal/core"
)

// ImpulseThreshold is the number of same-day expenses that trips the
// impulse flag. A plain count, no decay, no rolling window.
const ImpulseThreshold = 3

// Reader is the read-side slice of the ledger store.
type Reader interface {
	CountExpensesOn(ctx context.Context, date core.Date) (int, error)
	SumExpenses(ctx context.Context) (core.Money, error)
	SumIncomes(ctx context.Context) (core.Money, error)
	SumExpensesByMood(ctx context.Context) (map[core.Mood]core.Money, error)
	SumExpensesByDateMood(ctx context.Context) ([]core.DateMoodTotal, error)
}

type Engine struct {
	reader Reader
}

func NewEngine(reader Reader) *Engine {
	return &Engine{reader: reader}
}

// ImpulseCheck reports whether the given date has reached the impulse
// threshold. Re-evaluated on every new expense for that date.
func (e *Engine) ImpulseCheck(ctx context.Context, date core.Date) (bool, error) {
	n, err := e.reader.CountExpensesOn(ctx, date)
	if err != nil {
		return false, fmt.Errorf("impulse check for %s: %w", date, err)
	}
	return n >= ImpulseThreshold, nil
}

// MoodAggregate sums expense amounts per mood. An empty ledger yields an
// empty map.
func (e *Engine) MoodAggregate(ctx context.Context) (map[core.Mood]core.Money, error) {
	sums, err := e.reader.SumExpensesByMood(ctx)
	if err != nil {
		return nil, fmt.Errorf("mood aggregate: %w", err)
	}
	return sums, nil
}

// DominantMood returns the mood with the highest aggregate spend. The
// second return is false when the ledger holds no expenses. Ties resolve
// to the first mood in canonical order (positive, neutral, negative).
func (e *Engine) DominantMood(ctx context.Context) (core.Mood, bool, error) {
	sums, err := e.reader.SumExpensesByMood(ctx)
	if err != nil {
		return "", false, fmt.Errorf("dominant mood: %w", err)
	}
	var (
		best  core.Mood
		found bool
		max   int64
	)
	for _, m := range core.Moods {
		total, ok := sums[m]
		if !ok {
			continue
		}
		if !found || total.Cents > max {
			best, max, found = m, total.Cents, true
		}
	}
	return best, found, nil
}

// MoodTimeSeries returns per-date mood totals in date-ascending order,
// with absent (date, mood) combinations filled with zero for charting.
func (e *Engine) MoodTimeSeries(ctx context.Context) ([]core.MoodPoint, error) {
	buckets, err := e.reader.SumExpensesByDateMood(ctx)
	if err != nil {
		return nil, fmt.Errorf("mood time series: %w", err)
	}

	var series []core.MoodPoint
	byDate := make(map[string]int)
	for _, b := range buckets {
		key := b.Date.String()
		idx, ok := byDate[key]
		if !ok {
			point := core.MoodPoint{Date: b.Date, Totals: make(map[core.Mood]core.Money, len(core.Moods))}
			for _, m := range core.Moods {
				point.Totals[m] = core.Money{}
			}
			series = append(series, point)
			idx = len(series) - 1
			byDate[key] = idx
		}
		series[idx].Totals[b.Mood] = b.Total
	}
	return series, nil
}

// Balance is sum(incomes) minus sum(expenses), recomputed on demand and
// never cached.
func (e *Engine) Balance(ctx context.Context) (core.Money, error) {
	income, err := e.reader.SumIncomes(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("balance: %w", err)
	}
	expense, err := e.reader.SumExpenses(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("balance: %w", err)
	}
	return core.Money{Cents: income.Cents - expense.Cents}, nil
}

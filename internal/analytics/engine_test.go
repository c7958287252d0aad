package analytics

import (
	"context"
	"errors"
	"testing"

	"moodledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	counts    map[string]int
	expenses  int64
	incomes   int64
	moodSums  map[core.Mood]core.Money
	dateMoods []core.DateMoodTotal
	err       error
}

func (r *fakeReader) CountExpensesOn(_ context.Context, date core.Date) (int, error) {
	return r.counts[date.String()], r.err
}

func (r *fakeReader) SumExpenses(context.Context) (core.Money, error) {
	return core.Money{Cents: r.expenses}, r.err
}

func (r *fakeReader) SumIncomes(context.Context) (core.Money, error) {
	return core.Money{Cents: r.incomes}, r.err
}

func (r *fakeReader) SumExpensesByMood(context.Context) (map[core.Mood]core.Money, error) {
	if r.moodSums == nil {
		return map[core.Mood]core.Money{}, r.err
	}
	return r.moodSums, r.err
}

func (r *fakeReader) SumExpensesByDateMood(context.Context) ([]core.DateMoodTotal, error) {
	return r.dateMoods, r.err
}

func TestImpulseCheck(t *testing.T) {
	day := core.NewDate(2024, 1, 1)
	tests := []struct {
		count int
		want  bool
	}{
		{0, false},
		{2, false},
		{3, true},
		{5, true},
	}
	for _, tt := range tests {
		e := NewEngine(&fakeReader{counts: map[string]int{day.String(): tt.count}})
		got, err := e.ImpulseCheck(context.Background(), day)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "count %d", tt.count)
	}
}

func TestBalance(t *testing.T) {
	e := NewEngine(&fakeReader{incomes: 100000, expenses: 40000})
	got, err := e.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(60000), got.Cents)

	empty := NewEngine(&fakeReader{})
	got, err = empty.Balance(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.Cents, "no records at all balances to zero")
}

func TestMoodAggregate(t *testing.T) {
	e := NewEngine(&fakeReader{moodSums: map[core.Mood]core.Money{
		core.MoodPositive: {Cents: 13000},
		core.MoodNeutral:  {Cents: 5000},
	}})
	got, err := e.MoodAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(13000), got[core.MoodPositive].Cents)
	assert.Equal(t, int64(5000), got[core.MoodNeutral].Cents)

	empty := NewEngine(&fakeReader{})
	got, err = empty.MoodAggregate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "empty ledger yields an empty mapping, not an error")
}

func TestDominantMood(t *testing.T) {
	e := NewEngine(&fakeReader{moodSums: map[core.Mood]core.Money{
		core.MoodPositive: {Cents: 13000},
		core.MoodNeutral:  {Cents: 5000},
	}})
	mood, ok, err := e.DominantMood(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, core.MoodPositive, mood)
}

func TestDominantMoodEmptyLedger(t *testing.T) {
	e := NewEngine(&fakeReader{})
	_, ok, err := e.DominantMood(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDominantMoodTieBreak(t *testing.T) {
	e := NewEngine(&fakeReader{moodSums: map[core.Mood]core.Money{
		core.MoodNegative: {Cents: 5000},
		core.MoodNeutral:  {Cents: 5000},
	}})
	mood, ok, err := e.DominantMood(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.MoodNeutral, mood, "ties resolve in canonical mood order")
}

func TestMoodTimeSeries(t *testing.T) {
	d1 := core.NewDate(2024, 1, 1)
	d2 := core.NewDate(2024, 1, 3)
	e := NewEngine(&fakeReader{dateMoods: []core.DateMoodTotal{
		{Date: d1, Mood: core.MoodPositive, Total: core.Money{Cents: 1000}},
		{Date: d1, Mood: core.MoodNegative, Total: core.Money{Cents: 300}},
		{Date: d2, Mood: core.MoodNeutral, Total: core.Money{Cents: 700}},
	}})

	series, err := e.MoodTimeSeries(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, d1.String(), series[0].Date.String())
	assert.Equal(t, int64(1000), series[0].Totals[core.MoodPositive].Cents)
	assert.Equal(t, int64(0), series[0].Totals[core.MoodNeutral].Cents, "absent moods fill with zero")
	assert.Equal(t, int64(300), series[0].Totals[core.MoodNegative].Cents)

	assert.Equal(t, d2.String(), series[1].Date.String())
	assert.Equal(t, int64(700), series[1].Totals[core.MoodNeutral].Cents)

	empty := NewEngine(&fakeReader{})
	series, err = empty.MoodTimeSeries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestReaderErrorsPropagate(t *testing.T) {
	e := NewEngine(&fakeReader{err: errors.New("db closed")})

	_, err := e.Balance(context.Background())
	assert.Error(t, err)
	_, err = e.MoodAggregate(context.Background())
	assert.Error(t, err)
	_, _, err = e.DominantMood(context.Background())
	assert.Error(t, err)
	_, err = e.MoodTimeSeries(context.Background())
	assert.Error(t, err)
	_, err = e.ImpulseCheck(context.Background(), core.NewDate(2024, 1, 1))
	assert.Error(t, err)
}

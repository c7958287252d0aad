package core

import (
	"strings"
	"time"
)

const (
	MoodPositive Mood = "positive"
	MoodNeutral  Mood = "neutral"
	MoodNegative Mood = "negative"
)

// Moods lists the closed mood set in its canonical order. The order is
// load-bearing: dominant-mood ties resolve to the first entry encountered.
var Moods = []Mood{MoodPositive, MoodNeutral, MoodNegative}

type (
	// Mood is the payer's emotional state at the time of spending.
	Mood string

	// Date is a calendar date at UTC midnight. Time-of-day is never stored.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a committed, categorized expense. Immutable once
	// written; the only mutation the ledger supports is deletion by ID.
	Transaction struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Category    string
		Mood        Mood
	}

	IncomeRecord struct {
		ID     int64
		Date   Date
		Source string
		Amount Money
	}

	// SharedGoal is keyed by name. The store is duplicate-tolerant: two
	// goals saved under the same name are two rows.
	SharedGoal struct {
		Name   string
		Target Money
		Saved  Money
	}
)

// ParseMood maps user input onto the closed mood set. The emoji aliases come
// from the original entry form and are accepted interchangeably.
func ParseMood(s string) (Mood, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "positive", "🙂", "😀", "😊":
		return MoodPositive, nil
	case "neutral", "😐":
		return MoodNeutral, nil
	case "negative", "😞", "☹️":
		return MoodNegative, nil
	}
	return "", ErrInvalidMood
}

func (m Mood) Validate() error {
	switch m {
	case MoodPositive, MoodNeutral, MoodNegative:
		return nil
	}
	return ErrInvalidMood
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string, the ledger's storage format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Mood.Validate()
}

func (r IncomeRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Source)) == 0 {
		return ErrEmptySource
	}
	return r.Amount.Validate()
}

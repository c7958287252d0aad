// Package worker consumes ledger events off the queue and surfaces
// impulse warnings outside the request path.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"moodledger/internal/amqp"
	"moodledger/internal/core"
)

// ImpulseChecker re-evaluates the impulse heuristic against the store.
type ImpulseChecker interface {
	ImpulseCheck(ctx context.Context, date core.Date) (bool, error)
}

// AlertWorker keeps a running per-date expense tally from the event
// stream and logs impulse warnings. The tally is informational; the
// store remains the source of truth and RecheckToday covers lost
// messages.
type AlertWorker struct {
	checker ImpulseChecker

	mu     sync.Mutex
	counts map[string]int
}

func NewAlertWorker(checker ImpulseChecker) *AlertWorker {
	return &AlertWorker{
		checker: checker,
		counts:  make(map[string]int),
	}
}

// HandleExpenseRecorded tallies a committed expense by date.
func (w *AlertWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if _, err := core.ParseDate(msg.Date); err != nil {
		return fmt.Errorf("expense event %d has invalid date %q: %w", msg.ID, msg.Date, err)
	}

	w.mu.Lock()
	w.counts[msg.Date]++
	count := w.counts[msg.Date]
	w.mu.Unlock()

	slog.InfoContext(ctx, "Expense recorded",
		"id", msg.ID,
		"date", msg.Date,
		"category", msg.Category,
		"amount_cents", msg.AmountCents,
		"count_today", count)
	return nil
}

// HandleImpulseAlert surfaces an impulse warning for the date.
func (w *AlertWorker) HandleImpulseAlert(ctx context.Context, msg *amqp.ImpulseAlertMessage) error {
	if _, err := core.ParseDate(msg.Date); err != nil {
		return fmt.Errorf("impulse alert has invalid date %q: %w", msg.Date, err)
	}
	slog.WarnContext(ctx, "Impulse spending alert",
		"date", msg.Date,
		"seen_events", w.CountFor(msg.Date))
	return nil
}

// RecheckToday asks the store whether today crossed the impulse
// threshold. A backup for lost alert messages.
func (w *AlertWorker) RecheckToday(ctx context.Context) error {
	today := core.Today()
	flagged, err := w.checker.ImpulseCheck(ctx, today)
	if err != nil {
		return fmt.Errorf("recheck impulse for %s: %w", today, err)
	}
	if flagged {
		slog.WarnContext(ctx, "Impulse spending alert (periodic recheck)", "date", today.String())
	}
	return nil
}

// CountFor returns the number of expense events seen for a date.
func (w *AlertWorker) CountFor(date string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[date]
}

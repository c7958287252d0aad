// Package intake is the transaction intake pipeline: it turns one raw
// input event (typed fields or a scanned bill image) into exactly one
// committed ledger record, classifying at commit time so the ledger stays
// the durable source of truth for category assignment.
package intake

import (
	"context"
	"fmt"
	"log/slog"

	"moodledger/internal/core"
	"moodledger/internal/ocr"
)

// Classifier is the frozen text-to-label function. Its output is trusted
// without validation; the classifier owns the label set.
type Classifier interface {
	Predict(ctx context.Context, text string) (string, error)
}

// Store is the slice of the ledger store the pipeline writes through.
type Store interface {
	InsertExpense(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteExpense(ctx context.Context, id int64) error
	InsertIncome(ctx context.Context, rec core.IncomeRecord) (core.IncomeRecord, error)
	DeleteIncome(ctx context.Context, id int64) error
}

// ImpulseChecker re-evaluates the impulse heuristic after each commit.
type ImpulseChecker interface {
	ImpulseCheck(ctx context.Context, date core.Date) (bool, error)
}

// Publisher pushes ledger events to the message broker. Optional; a nil
// publisher disables events without touching the pipeline.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, id int64, date, category string, amountCents int64) error
	PublishImpulseAlert(ctx context.Context, date string) error
}

// Result is a committed expense plus the post-commit impulse verdict. The
// warning rides alongside success; it is never an error.
type Result struct {
	Transaction    core.Transaction
	ImpulseWarning bool
}

type Pipeline struct {
	store      Store
	classifier Classifier
	extractor  ocr.Engine
	parser     ocr.FieldParser
	impulse    ImpulseChecker
	publisher  Publisher
}

func NewPipeline(store Store, classifier Classifier, extractor ocr.Engine, parser ocr.FieldParser, impulse ImpulseChecker, publisher Publisher) *Pipeline {
	if parser == nil {
		parser = ocr.RegexFields{}
	}
	return &Pipeline{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		parser:     parser,
		impulse:    impulse,
		publisher:  publisher,
	}
}

// SubmitExpense validates, classifies and commits a typed expense.
// Validation failures surface before the store is touched; classifier and
// store failures propagate unretried.
func (p *Pipeline) SubmitExpense(ctx context.Context, date core.Date, description string, amount core.Money, mood core.Mood) (Result, error) {
	tx := core.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Mood:        mood,
	}
	if err := tx.Validate(); err != nil {
		return Result{}, err
	}
	return p.classifyAndCommit(ctx, tx)
}

// SubmitExpenseFromImage runs OCR on a scanned bill and commits the
// best-effort result. Imperfect extraction never aborts: a missing amount
// commits as zero and a missing description falls back to a placeholder,
// leaving the user to correct the record afterwards. Only an engine
// failure is an error.
func (p *Pipeline) SubmitExpenseFromImage(ctx context.Context, image []byte) (Result, error) {
	text, err := p.extractor.Extract(ctx, image)
	if err != nil {
		return Result{}, err
	}

	fields := p.parser.ParseFields(text)
	tx := core.Transaction{
		Date:        core.Today(),
		Description: fields.Description,
		Amount:      fields.Amount,
		Mood:        core.MoodPositive, // no mood is recoverable from an image
	}
	if fields.Amount.Cents == 0 {
		slog.WarnContext(ctx, "No amount found in scanned bill, committing zero",
			"description", tx.Description)
	}
	return p.classifyAndCommit(ctx, tx)
}

func (p *Pipeline) classifyAndCommit(ctx context.Context, tx core.Transaction) (Result, error) {
	category, err := p.classifier.Predict(ctx, tx.Description)
	if err != nil {
		return Result{}, core.WrapKind(core.ErrClassification, err)
	}
	tx.Category = category

	committed, err := p.store.InsertExpense(ctx, tx)
	if err != nil {
		return Result{}, core.WrapKind(core.ErrPersistence, err)
	}

	res := Result{Transaction: committed}
	flagged, err := p.impulse.ImpulseCheck(ctx, committed.Date)
	if err != nil {
		// The commit already happened; a failed check only costs the warning.
		slog.ErrorContext(ctx, "Impulse check failed", "date", committed.Date.String(), "error", err)
	} else {
		res.ImpulseWarning = flagged
	}

	p.publishExpense(ctx, res)
	return res, nil
}

func (p *Pipeline) publishExpense(ctx context.Context, res Result) {
	if p.publisher == nil {
		return
	}
	tx := res.Transaction
	if err := p.publisher.PublishExpenseRecorded(ctx, tx.ID, tx.Date.String(), tx.Category, tx.Amount.Cents); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event", "id", tx.ID, "error", err)
	}
	if res.ImpulseWarning {
		if err := p.publisher.PublishImpulseAlert(ctx, tx.Date.String()); err != nil {
			slog.ErrorContext(ctx, "Failed to publish impulse alert", "date", tx.Date.String(), "error", err)
		}
	}
}

// SubmitIncome validates and commits an income record. No classification.
func (p *Pipeline) SubmitIncome(ctx context.Context, date core.Date, source string, amount core.Money) (core.IncomeRecord, error) {
	rec := core.IncomeRecord{Date: date, Source: source, Amount: amount}
	if err := rec.Validate(); err != nil {
		return core.IncomeRecord{}, err
	}
	committed, err := p.store.InsertIncome(ctx, rec)
	if err != nil {
		return core.IncomeRecord{}, core.WrapKind(core.ErrPersistence, err)
	}
	return committed, nil
}

// DeleteExpense removes an expense; deleting an unknown ID is a no-op.
func (p *Pipeline) DeleteExpense(ctx context.Context, id int64) error {
	if err := p.store.DeleteExpense(ctx, id); err != nil {
		return core.WrapKind(core.ErrPersistence, fmt.Errorf("delete expense %d: %w", id, err))
	}
	return nil
}

// DeleteIncome removes an income record; deleting an unknown ID is a no-op.
func (p *Pipeline) DeleteIncome(ctx context.Context, id int64) error {
	if err := p.store.DeleteIncome(ctx, id); err != nil {
		return core.WrapKind(core.ErrPersistence, fmt.Errorf("delete income %d: %w", id, err))
	}
	return nil
}

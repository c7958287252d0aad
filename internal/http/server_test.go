package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodledger/internal/core"
	"moodledger/internal/intake"
)

type fakeIntake struct {
	submitted   []core.Transaction
	incomes     []core.IncomeRecord
	deletedExp  []int64
	deletedInc  []int64
	scanResult  intake.Result
	scanErr     error
	submitErr   error
	impulseFlag bool
}

func (f *fakeIntake) SubmitExpense(ctx context.Context, date core.Date, description string, amount core.Money, mood core.Mood) (intake.Result, error) {
	if f.submitErr != nil {
		return intake.Result{}, f.submitErr
	}
	tx := core.Transaction{ID: int64(len(f.submitted) + 1), Date: date, Description: description, Amount: amount, Category: "Food", Mood: mood}
	if err := tx.Validate(); err != nil {
		return intake.Result{}, err
	}
	f.submitted = append(f.submitted, tx)
	return intake.Result{Transaction: tx, ImpulseWarning: f.impulseFlag}, nil
}

func (f *fakeIntake) SubmitExpenseFromImage(ctx context.Context, image []byte) (intake.Result, error) {
	if f.scanErr != nil {
		return intake.Result{}, f.scanErr
	}
	return f.scanResult, nil
}

func (f *fakeIntake) SubmitIncome(ctx context.Context, date core.Date, source string, amount core.Money) (core.IncomeRecord, error) {
	rec := core.IncomeRecord{ID: int64(len(f.incomes) + 1), Date: date, Source: source, Amount: amount}
	if err := rec.Validate(); err != nil {
		return core.IncomeRecord{}, err
	}
	f.incomes = append(f.incomes, rec)
	return rec, nil
}

func (f *fakeIntake) DeleteExpense(ctx context.Context, id int64) error {
	f.deletedExp = append(f.deletedExp, id)
	return nil
}

func (f *fakeIntake) DeleteIncome(ctx context.Context, id int64) error {
	f.deletedInc = append(f.deletedInc, id)
	return nil
}

type fakeAnalytics struct {
	balance  core.Money
	sums     map[core.Mood]core.Money
	series   []core.MoodPoint
	dominant core.Mood
	hasData  bool
	err      error
}

func (f *fakeAnalytics) Balance(ctx context.Context) (core.Money, error) {
	return f.balance, f.err
}

func (f *fakeAnalytics) MoodAggregate(ctx context.Context) (map[core.Mood]core.Money, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sums, nil
}

func (f *fakeAnalytics) DominantMood(ctx context.Context) (core.Mood, bool, error) {
	return f.dominant, f.hasData, f.err
}

func (f *fakeAnalytics) MoodTimeSeries(ctx context.Context) ([]core.MoodPoint, error) {
	return f.series, f.err
}

type fakeGoals struct {
	upserts []core.SharedGoal
	deleted []string
	list    []core.SharedGoal
	export  []byte
	err     error
}

func (f *fakeGoals) Upsert(ctx context.Context, name string, target, saved core.Money) error {
	if f.err != nil {
		return f.err
	}
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyGoalName
	}
	f.upserts = append(f.upserts, core.SharedGoal{Name: name, Target: target, Saved: saved})
	return nil
}

func (f *fakeGoals) Delete(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.err
}

func (f *fakeGoals) List(ctx context.Context) ([]core.SharedGoal, error) {
	return f.list, f.err
}

func (f *fakeGoals) Export(ctx context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.list) == 0 {
		return nil, core.ErrNothingToExport
	}
	return f.export, nil
}

type fakeReader struct {
	expenses []core.Transaction
	incomes  []core.IncomeRecord
	err      error
}

func (f *fakeReader) ListExpenses(ctx context.Context) ([]core.Transaction, error) {
	return f.expenses, f.err
}

func (f *fakeReader) ListIncomes(ctx context.Context) ([]core.IncomeRecord, error) {
	return f.incomes, f.err
}

type deps struct {
	intake    *fakeIntake
	analytics *fakeAnalytics
	goals     *fakeGoals
	reader    *fakeReader
}

func newTestServer(t *testing.T) (*Server, *deps) {
	t.Helper()
	d := &deps{
		intake:    &fakeIntake{},
		analytics: &fakeAnalytics{sums: map[core.Mood]core.Money{}},
		goals:     &fakeGoals{},
		reader:    &fakeReader{},
	}
	s := NewServer(":0", d.intake, d.analytics, d.goals, d.reader, nil)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, d
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateExpense(t *testing.T) {
	s, d := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/expenses", expenseRequest{
		Date: "2026-08-29", Description: "Coffee", Amount: "4.50", Mood: "🙂",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp expenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-08-29", resp.Date)
	assert.Equal(t, "Coffee", resp.Description)
	assert.Equal(t, "4.50", resp.Amount)
	assert.Equal(t, "positive", resp.Mood)
	assert.False(t, resp.ImpulseWarning)
	require.Len(t, d.intake.submitted, 1)
	assert.Equal(t, int64(450), d.intake.submitted[0].Amount.Cents)
}

func TestCreateExpenseImpulseWarning(t *testing.T) {
	s, d := newTestServer(t)
	d.intake.impulseFlag = true

	rec := doJSON(t, s, http.MethodPost, "/expenses", expenseRequest{
		Date: "2026-08-29", Description: "Snack", Amount: "2.00", Mood: "neutral",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp expenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ImpulseWarning)
}

func TestCreateExpenseValidation(t *testing.T) {
	s, d := newTestServer(t)

	cases := []struct {
		name string
		req  expenseRequest
	}{
		{"bad amount", expenseRequest{Date: "2026-08-29", Description: "x", Amount: "abc", Mood: "neutral"}},
		{"zero amount", expenseRequest{Date: "2026-08-29", Description: "x", Amount: "0", Mood: "neutral"}},
		{"unknown mood", expenseRequest{Date: "2026-08-29", Description: "x", Amount: "1.00", Mood: "ecstatic"}},
		{"bad date", expenseRequest{Date: "29/08/2026", Description: "x", Amount: "1.00", Mood: "neutral"}},
		{"empty description", expenseRequest{Date: "2026-08-29", Description: "  ", Amount: "1.00", Mood: "neutral"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/expenses", tc.req)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, d.intake.submitted, "nothing reaches the store on validation failure")
}

func TestCreateExpenseMissingDateDefaultsToToday(t *testing.T) {
	s, d := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/expenses", expenseRequest{
		Description: "Lunch", Amount: "12.00", Mood: "neutral",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, d.intake.submitted, 1)
	assert.Equal(t, core.Today().String(), d.intake.submitted[0].Date.String())
}

func TestScanExpense(t *testing.T) {
	s, d := newTestServer(t)
	d.intake.scanResult = intake.Result{Transaction: core.Transaction{
		ID: 7, Date: core.Today(), Description: "Total: 45.50", Amount: core.Money{Cents: 4550},
		Category: "Food", Mood: core.MoodPositive,
	}}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "bill.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not-a-real-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/expenses/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp expenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "45.50", resp.Amount)
}

func TestScanExpenseMissingImage(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/expenses/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanExpenseEngineFailure(t *testing.T) {
	s, d := newTestServer(t)
	d.intake.scanErr = core.WrapKind(core.ErrExtraction, errors.New("tesseract unavailable"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "bill.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/expenses/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListAndDeleteExpense(t *testing.T) {
	s, d := newTestServer(t)
	d.reader.expenses = []core.Transaction{
		{ID: 2, Date: core.NewDate(2026, 8, 29), Description: "Dinner", Amount: core.Money{Cents: 3000}, Category: "Food", Mood: core.MoodNegative},
		{ID: 1, Date: core.NewDate(2026, 8, 28), Description: "Bus", Amount: core.Money{Cents: 250}, Category: "Transport", Mood: core.MoodNeutral},
	}

	rec := doJSON(t, s, http.MethodGet, "/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []expenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Dinner", list[0].Description)

	rec = doJSON(t, s, http.MethodDelete, "/expenses/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{2}, d.intake.deletedExp)

	rec = doJSON(t, s, http.MethodDelete, "/expenses/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndDeleteIncome(t *testing.T) {
	s, d := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/incomes", incomeRequest{
		Date: "2026-08-01", Source: "Salary", Amount: "2500.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp incomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Salary", resp.Source)
	assert.Equal(t, "2500.00", resp.Amount)

	rec = doJSON(t, s, http.MethodPost, "/incomes", incomeRequest{Date: "2026-08-01", Source: " ", Amount: "1.00"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/incomes/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{1}, d.intake.deletedInc)
}

func TestBalance(t *testing.T) {
	s, d := newTestServer(t)
	d.analytics.balance = core.Money{Cents: 60000}

	rec := doJSON(t, s, http.MethodGet, "/analytics/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "600.00", resp.Balance)
	assert.Equal(t, int64(60000), resp.Cents)
}

func TestMoodAggregate(t *testing.T) {
	s, d := newTestServer(t)
	d.analytics.sums = map[core.Mood]core.Money{
		core.MoodPositive: {Cents: 1000},
		core.MoodNegative: {Cents: 4000},
	}
	d.analytics.dominant = core.MoodNegative
	d.analytics.hasData = true

	rec := doJSON(t, s, http.MethodGet, "/analytics/mood", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp moodAggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "40.00", resp.Totals["negative"])
	assert.Equal(t, "negative", resp.Dominant)
}

func TestMoodAggregateEmptyLedger(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/analytics/mood", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp moodAggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Totals)
	assert.Empty(t, resp.Dominant)
}

func TestMoodSeries(t *testing.T) {
	s, d := newTestServer(t)
	d.analytics.series = []core.MoodPoint{
		{Date: core.NewDate(2026, 8, 28), Totals: map[core.Mood]core.Money{
			core.MoodPositive: {Cents: 500},
			core.MoodNeutral:  {},
			core.MoodNegative: {},
		}},
	}

	rec := doJSON(t, s, http.MethodGet, "/analytics/mood-series", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []moodPointResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "2026-08-28", resp[0].Date)
	assert.Equal(t, "5.00", resp[0].Totals["positive"])
	assert.Equal(t, "0.00", resp[0].Totals["neutral"])
}

func TestGoalLifecycle(t *testing.T) {
	s, d := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/goals", goalRequest{Name: "Trip", Target: "500.00", Saved: "100.00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, d.goals.upserts, 1)
	assert.Equal(t, int64(50000), d.goals.upserts[0].Target.Cents)

	rec = doJSON(t, s, http.MethodPost, "/goals", goalRequest{Name: "Fresh", Target: "500.00", Saved: "0"})
	require.Equal(t, http.StatusCreated, rec.Code, "zero saved is a valid fresh goal")

	rec = doJSON(t, s, http.MethodPost, "/goals", goalRequest{Name: " ", Target: "500.00"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	d.goals.list = []core.SharedGoal{{Name: "Trip", Target: core.Money{Cents: 50000}, Saved: core.Money{Cents: 25000}}}
	rec = doJSON(t, s, http.MethodGet, "/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []goalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.InDelta(t, 0.5, list[0].Progress, 1e-9)

	rec = doJSON(t, s, http.MethodDelete, "/goals/Trip", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"Trip"}, d.goals.deleted)
}

func TestExportGoals(t *testing.T) {
	s, d := newTestServer(t)
	d.goals.list = []core.SharedGoal{{Name: "Trip", Target: core.Money{Cents: 50000}}}
	d.goals.export = []byte("xlsx-bytes")

	rec := doJSON(t, s, http.MethodGet, "/goals/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.ms-excel", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shared_goals.xlsx")
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
}

func TestExportGoalsEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/goals/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/expenses", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimitOnWrites(t *testing.T) {
	s, _ := newTestServer(t)

	var last int
	for i := 0; i < 70; i++ {
		rec := doJSON(t, s, http.MethodPost, "/goals", goalRequest{Name: "Trip", Target: "1.00"})
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

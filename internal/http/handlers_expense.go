package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"moodledger/internal/core"
	"moodledger/internal/intake"
)

// maxImageBytes bounds uploaded bill scans.
const maxImageBytes = 10 << 20

type expenseRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Mood        string `json:"mood"`
}

type expenseResponse struct {
	ID             int64  `json:"id"`
	Date           string `json:"date"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	Category       string `json:"category"`
	Mood           string `json:"mood"`
	ImpulseWarning bool   `json:"impulse_warning"`
}

func toExpenseResponse(res intake.Result) expenseResponse {
	tx := res.Transaction
	return expenseResponse{
		ID:             tx.ID,
		Date:           tx.Date.String(),
		Description:    tx.Description,
		Amount:         tx.Amount.String(),
		Category:       tx.Category,
		Mood:           string(tx.Mood),
		ImpulseWarning: res.ImpulseWarning,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(w, r, core.ErrInvalidAmount)
		return
	}
	mood, err := core.ParseMood(req.Mood)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.intake.SubmitExpense(r.Context(), date, strings.TrimSpace(req.Description), core.Money{Cents: cents}, mood)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(res))
}

// handleScanExpense accepts a multipart upload with an "image" part and
// commits the OCR result.
func (s *Server) handleScanExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image part")
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read image")
		return
	}

	res, err := s.intake.SubmitExpenseFromImage(r.Context(), image)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if res.Transaction.Amount.Cents == 0 {
		slog.WarnContext(r.Context(), "Scanned bill committed with zero amount",
			"id", res.Transaction.ID)
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(res))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	txs, err := s.reader.ListExpenses(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]expenseResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toExpenseResponse(intake.Result{Transaction: tx}))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	if err := s.intake.DeleteExpense(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDateOrToday treats an absent date as today, matching the entry
// form's default.
func parseDateOrToday(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"moodledger/internal/core"
)

type incomeRequest struct {
	Date   string `json:"date"`
	Source string `json:"source"`
	Amount string `json:"amount"`
}

type incomeResponse struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Source string `json:"source"`
	Amount string `json:"amount"`
}

func toIncomeResponse(rec core.IncomeRecord) incomeResponse {
	return incomeResponse{
		ID:     rec.ID,
		Date:   rec.Date.String(),
		Source: rec.Source,
		Amount: rec.Amount.String(),
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
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

	rec, err := s.intake.SubmitIncome(r.Context(), date, strings.TrimSpace(req.Source), core.Money{Cents: cents})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeResponse(rec))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	recs, err := s.reader.ListIncomes(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]incomeResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toIncomeResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid income id")
		return
	}
	if err := s.intake.DeleteIncome(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

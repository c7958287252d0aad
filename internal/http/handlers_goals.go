package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"moodledger/internal/core"
	"moodledger/internal/goals"
)

type goalRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Saved  string `json:"saved"`
}

type goalResponse struct {
	Name     string  `json:"name"`
	Target   string  `json:"target"`
	Saved    string  `json:"saved"`
	Progress float64 `json:"progress"`
}

func (s *Server) handleUpsertGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := parseGoalAmount(req.Target)
	if err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := parseGoalAmount(req.Saved)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.goals.Upsert(r.Context(), strings.TrimSpace(req.Name), target, saved); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.goals.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]goalResponse, 0, len(list))
	for _, g := range list {
		resp := goalResponse{Name: g.Name, Target: g.Target.String(), Saved: g.Saved.String()}
		// A degenerate target just reports zero progress in the listing.
		if ratio, err := goals.Progress(g); err == nil {
			resp.Progress = ratio
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		respondError(w, r, core.ErrEmptyGoalName)
		return
	}
	if err := s.goals.Delete(r.Context(), name); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportGoals streams the goal table as a spreadsheet download.
func (s *Server) handleExportGoals(w http.ResponseWriter, r *http.Request) {
	data, err := s.goals.Export(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", goals.ExportMIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+goals.ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseGoalAmount accepts the same decimal format as expenses but allows
// zero, since a fresh goal starts with nothing saved.
func parseGoalAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "0.,") == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, core.ErrInvalidAmount
	}
	return core.Money{Cents: cents}, nil
}

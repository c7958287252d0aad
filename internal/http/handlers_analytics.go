package http

import (
	"net/http"

	"moodledger/internal/core"
)

type balanceResponse struct {
	Balance string `json:"balance"`
	Cents   int64  `json:"cents"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.analytics.Balance(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance.String(), Cents: balance.Cents})
}

type moodAggregateResponse struct {
	Totals   map[string]string `json:"totals"`
	Dominant string            `json:"dominant,omitempty"`
}

// handleMoodAggregate reports per-mood spend totals plus the dominant
// mood. An empty ledger yields empty totals and no dominant mood.
func (s *Server) handleMoodAggregate(w http.ResponseWriter, r *http.Request) {
	sums, err := s.analytics.MoodAggregate(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	resp := moodAggregateResponse{Totals: make(map[string]string, len(sums))}
	for mood, total := range sums {
		resp.Totals[string(mood)] = total.String()
	}
	if dominant, ok, err := s.analytics.DominantMood(r.Context()); err != nil {
		respondError(w, r, err)
		return
	} else if ok {
		resp.Dominant = string(dominant)
	}
	writeJSON(w, http.StatusOK, resp)
}

type moodPointResponse struct {
	Date   string            `json:"date"`
	Totals map[string]string `json:"totals"`
}

func (s *Server) handleMoodSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.analytics.MoodTimeSeries(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]moodPointResponse, 0, len(series))
	for _, point := range series {
		p := moodPointResponse{Date: point.Date.String(), Totals: make(map[string]string, len(core.Moods))}
		for mood, total := range point.Totals {
			p.Totals[string(mood)] = total.String()
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

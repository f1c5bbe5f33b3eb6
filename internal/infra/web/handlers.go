package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"vaccine-tracker-bot/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleSnapshot serves the snapshot of ?region=, national when empty.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	scope, err := s.regions.Resolve(r.URL.Query().Get("region"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, err := s.reports.Snapshot(r.Context(), scope.Code)
	if err != nil {
		s.log.Warn().Err(err).Str("region", scope.Code).Msg("snapshot failed")
		switch {
		case errors.Is(err, domain.ErrFetchFailed):
			http.Error(w, "Data unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, domain.ErrEmptySeries), errors.Is(err, domain.ErrInsufficientData):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to build snapshot", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleSubscriptions reports subscriber counts per chart scope. Recipients are not exposed.
func (s *Server) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	subs := s.registry.List()
	byRegion := map[string]int{}
	for _, sub := range subs {
		key := sub.Region
		if key == "" {
			key = "national"
		}
		byRegion[key]++
	}
	regions := make([]string, 0, len(byRegion))
	for k := range byRegion {
		regions = append(regions, k)
	}
	sort.Strings(regions)

	type scopeCount struct {
		Region string `json:"region"`
		Count  int    `json:"count"`
	}
	resp := struct {
		Total    int          `json:"total"`
		ByRegion []scopeCount `json:"by_region"`
	}{Total: len(subs), ByRegion: make([]scopeCount, 0, len(regions))}
	for _, k := range regions {
		resp.ByRegion = append(resp.ByRegion, scopeCount{Region: k, Count: byRegion[k]})
	}
	writeJSON(w, http.StatusOK, resp)
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

// handleLogin exchanges the admin api key for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" || s.auth == nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !s.validKey(req.APIKey) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to mint admin session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	if s.auth != nil {
		s.auth.Clear(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

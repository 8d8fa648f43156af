package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/pipeline"
	"github.com/gorilla/mux"
)

// SeasonRunner computes a season's result. *pipeline.Runner satisfies it.
type SeasonRunner interface {
	Run(ctx context.Context, season int, reporter pipeline.Reporter) (*model.Result, error)
}

// SeasonArchive reads previously stored team totals.
type SeasonArchive interface {
	SeasonTeams(ctx context.Context, season int) ([]model.TeamLoss, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	runner  SeasonRunner
	archive SeasonArchive
}

// NewHandler creates a new handler
func NewHandler(runner SeasonRunner, archive SeasonArchive) *Handler {
	return &Handler{runner: runner, archive: archive}
}

type winsLostResponse struct {
	Season      int              `json:"season"`
	SeasonLabel string           `json:"season_label"`
	Source      string           `json:"source"`
	Teams       []model.TeamLoss `json:"teams"`
	Gaps        []model.JoinGap  `json:"join_gaps,omitempty"`
	Skipped     int              `json:"skipped"`
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "sidelined",
	})
}

// GetWinsLost handles GET /api/v1/seasons/{season}/wins-lost. With
// ?source=archive the stored totals are returned instead of a fresh run.
func (h *Handler) GetWinsLost(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	if r.URL.Query().Get("source") == "archive" {
		h.getArchived(w, r, season)
		return
	}

	result, err := h.runner.Run(r.Context(), season, nil)
	if err != nil {
		respondError(w, statusFor(err), "Failed to compute wins lost", err)
		return
	}

	respondJSON(w, http.StatusOK, winsLostResponse{
		Season:      result.Season,
		SeasonLabel: model.SeasonLabel(result.Season),
		Source:      "live",
		Teams:       result.Teams,
		Gaps:        result.Gaps,
		Skipped:     result.Skipped,
	})
}

func (h *Handler) getArchived(w http.ResponseWriter, r *http.Request, season int) {
	if h.archive == nil {
		respondError(w, http.StatusNotImplemented, "No archive configured", nil)
		return
	}

	teams, err := h.archive.SeasonTeams(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read archive", err)
		return
	}
	if len(teams) == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("No archived result for season %d", season), nil)
		return
	}

	respondJSON(w, http.StatusOK, winsLostResponse{
		Season:      season,
		SeasonLabel: model.SeasonLabel(season),
		Source:      "archive",
		Teams:       teams,
	})
}

// GetStints handles GET /api/v1/seasons/{season}/stints, optionally filtered
// by ?team=BOS.
func (h *Handler) GetStints(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	result, err := h.runner.Run(r.Context(), season, nil)
	if err != nil {
		respondError(w, statusFor(err), "Failed to compute stints", err)
		return
	}

	stints := result.Stints
	if team := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("team"))); team != "" {
		filtered := make([]model.StintLoss, 0)
		for _, s := range stints {
			if s.Team == team {
				filtered = append(filtered, s)
			}
		}
		stints = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season": result.Season,
		"count":  len(stints),
		"stints": stints,
	})
}

func seasonParam(r *http.Request) (int, error) {
	raw := mux.Vars(r)["season"]
	season, err := strconv.Atoi(raw)
	if err != nil || season < 1947 || season > 9999 {
		return 0, fmt.Errorf("season %q must be a four-digit end year", raw)
	}
	return season, nil
}

// statusFor maps pipeline failures onto HTTP statuses.
func statusFor(err error) int {
	var remote *model.RemoteFetchError
	var drift *model.SchemaDriftError
	switch {
	case errors.As(err, &remote), errors.As(err, &drift):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrMalformedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}

package handlers

import (
	"net/http"

	"github.com/scrimhub/tournament-platform/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// ListStandings godoc
// @Summary Get the global team leaderboard
// @Tags leaderboard
// @Produce json
// @Success 200 {array} models.TeamStatistics
// @Router /leaderboard [get]
func (h *LeaderboardHandler) ListStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.leaderboardService.ListStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Recalculate godoc
// @Summary Rebuild every team's statistics and global ranks
// @Tags leaderboard
// @Produce json
// @Success 202 {object} map[string]string
// @Security BearerAuth
// @Router /leaderboard/recalculate [post]
func (h *LeaderboardHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	if err := h.leaderboardService.RecalculateStatistics(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"status": "recalculated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

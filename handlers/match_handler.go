package handlers

import (
	"net/http"

	"github.com/scrimhub/tournament-platform/services"
)

type MatchHandler struct {
	matchService   services.MatchService
	scoringService services.ScoringService
}

func NewMatchHandler(matchService services.MatchService, scoringService services.ScoringService) *MatchHandler {
	return &MatchHandler{matchService: matchService, scoringService: scoringService}
}

// GetMatch godoc
// @Summary Get a match by ID
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} models.Match
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGroupMatches godoc
// @Summary List a group's matches in play order
// @Tags matches
// @Produce json
// @Param groupID path int true "Group ID"
// @Success 200 {array} models.Match
// @Router /groups/{groupID}/matches [get]
func (h *MatchHandler) ListGroupMatches(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListGroupMatches(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartMatch godoc
// @Summary Open a match lobby with room credentials
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} models.Match
// @Security BearerAuth
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoomID       string `json:"room_id"`
		RoomPassword string `json:"room_password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.StartMatch(r.Context(), matchID, input.RoomID, input.RoomPassword)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitScores godoc
// @Summary Submit the full score sheet for a match
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body []services.MatchScoreInput true "One entry per team"
// @Success 201 {array} models.MatchScore
// @Security BearerAuth
// @Router /matches/{matchID}/scores [post]
func (h *MatchHandler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var entries []services.MatchScoreInput
	if err := readJSON(w, r, &entries); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scores, err := h.scoringService.SubmitMatchScores(r.Context(), matchID, entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, scores, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMissingScores godoc
// @Summary List completed-round matches that still have no scores
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param roundNumber path int true "Round number"
// @Success 200 {array} models.Match
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds/{roundNumber}/missing-scores [get]
func (h *MatchHandler) ListMissingScores(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNumber, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.scoringService.ListMatchesMissingScores(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/scrimhub/tournament-platform/services"
)

type GroupHandler struct {
	groupService   services.GroupService
	scoringService services.ScoringService
}

func NewGroupHandler(groupService services.GroupService, scoringService services.ScoringService) *GroupHandler {
	return &GroupHandler{groupService: groupService, scoringService: scoringService}
}

// ConfigureRound godoc
// @Summary Partition a round's team pool into groups and create matches
// @Tags groups
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.ConfigureRoundInput true "Round configuration"
// @Success 201 {array} models.Group
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds [post]
func (h *GroupHandler) ConfigureRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ConfigureRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.groupService.ConfigureRound(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, groups, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetGroup godoc
// @Summary Get a group with its teams and matches
// @Tags groups
// @Produce json
// @Param groupID path int true "Group ID"
// @Success 200 {object} models.Group
// @Router /groups/{groupID} [get]
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, group, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRoundGroups godoc
// @Summary List the groups of a tournament round
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param roundNumber path int true "Round number"
// @Success 200 {array} models.Group
// @Router /tournaments/{tournamentID}/rounds/{roundNumber}/groups [get]
func (h *GroupHandler) ListRoundGroups(w http.ResponseWriter, r *http.Request) {
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

	groups, err := h.groupService.ListRoundGroups(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, groups, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetGroupStandings godoc
// @Summary Get a group's ranked standings
// @Tags groups
// @Produce json
// @Param groupID path int true "Group ID"
// @Success 200 {array} models.GroupStanding
// @Router /groups/{groupID}/standings [get]
func (h *GroupHandler) GetGroupStandings(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.scoringService.GetGroupStandings(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRoundResults godoc
// @Summary Get standings for every group of a round
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param roundNumber path int true "Round number"
// @Success 200 {array} services.RoundGroupResult
// @Router /tournaments/{tournamentID}/rounds/{roundNumber}/results [get]
func (h *GroupHandler) GetRoundResults(w http.ResponseWriter, r *http.Request) {
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

	results, err := h.scoringService.GetRoundResults(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, results, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetGroupQualifiers godoc
// @Summary Preview which teams qualify from a group
// @Tags groups
// @Produce json
// @Param groupID path int true "Group ID"
// @Param count query int false "Override qualifying count"
// @Success 200 {object} map[string][]int
// @Router /groups/{groupID}/qualifiers [get]
func (h *GroupHandler) GetGroupQualifiers(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	count := 0 // zero defers to the group's configured qualifying count
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count <= 0 {
			badRequestResponse(w, r, errInvalidQueryParam("count"))
			return
		}
	}

	qualifiers, err := h.scoringService.SelectQualifiers(r.Context(), groupID, count)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualifiers": qualifiers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordRoundQualifiers godoc
// @Summary Close out a round: persist qualifiers and round scores
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param roundNumber path int true "Round number"
// @Success 200 {object} map[string][]int
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds/{roundNumber}/advance [post]
func (h *GroupHandler) RecordRoundQualifiers(w http.ResponseWriter, r *http.Request) {
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

	if err := h.scoringService.CalculateRoundScores(r.Context(), tournamentID, roundNumber); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	qualifiers, err := h.scoringService.RecordRoundQualifiers(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualifiers": qualifiers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefreshGroupStatuses godoc
// @Summary Re-infer group statuses for a round from match completion
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param roundNumber path int true "Round number"
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds/{roundNumber}/refresh-statuses [post]
func (h *GroupHandler) RefreshGroupStatuses(w http.ResponseWriter, r *http.Request) {
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

	updated, err := h.groupService.RefreshGroupStatuses(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"updated_groups": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ComputeWinner godoc
// @Summary Resolve and persist the tournament winner from the final round
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Registration
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/winner [post]
func (h *GroupHandler) ComputeWinner(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	winner, err := h.scoringService.ComputeTournamentWinner(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, winner, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// passthroughTxRunner executes the closure without a database; the fakes
// ignore the executor, so nil stands in for the transaction.
func passthroughTxRunner(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// In-memory repository fakes. They ignore the SQLExecutor argument and
// back every query with plain maps.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.HostID != nil && t.HostID != *filter.HostID {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateSelectedTeams(_ context.Context, _ repositories.SQLExecutor, id int, selected models.RoundQualifiers, currentRound int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.SelectedTeams = selected
	t.CurrentRound = currentRound
	return nil
}

func (r *fakeTournamentRepo) UpdateWinner(_ context.Context, _ repositories.SQLExecutor, id int, winnerTeamID *int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinnerTeamID = winnerTeamID
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(_ context.Context, id int, bannerKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = bannerKey
	return nil
}

func (r *fakeTournamentRepo) ListForAutoStatusUpdate(_ context.Context, now time.Time) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.Status == models.TournamentStatusCompleted {
			continue
		}
		if !t.TournamentStart.After(now) || !t.TournamentEnd.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
	nextID        int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{registrations: make(map[int]*models.Registration), nextID: 1}
}

func (r *fakeRegistrationRepo) add(tournamentID int, teamName string, status models.RegistrationStatus) *models.Registration {
	reg := &models.Registration{
		ID:           r.nextID,
		TournamentID: tournamentID,
		TeamName:     teamName,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	r.nextID++
	r.registrations[reg.ID] = reg
	return reg
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *models.Registration) error {
	reg.ID = r.nextID
	r.nextID++
	reg.CreatedAt = time.Now()
	copied := *reg
	r.registrations[reg.ID] = &copied
	return nil
}

func (r *fakeRegistrationRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Registration, error) {
	reg, ok := r.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0)
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if status != nil && reg.Status != *status {
			continue
		}
		copied := *reg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRegistrationRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0, len(ids))
	for _, id := range ids {
		if reg, ok := r.registrations[id]; ok {
			copied := *reg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(_ context.Context, id int, status models.RegistrationStatus) error {
	reg, ok := r.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (r *fakeRegistrationRepo) CountByTournament(_ context.Context, tournamentID int, status *models.RegistrationStatus) (int, error) {
	count := 0
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if status != nil && reg.Status != *status {
			continue
		}
		count++
	}
	return count, nil
}

type fakeGroupRepo struct {
	groups map[int]*models.Group
	teams  map[int][]int
	nextID int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[int]*models.Group), teams: make(map[int][]int), nextID: 1}
}

func (r *fakeGroupRepo) add(tournamentID, roundNumber int, name string, qualifying int, teamIDs []int) *models.Group {
	g := &models.Group{
		ID:              r.nextID,
		TournamentID:    tournamentID,
		RoundNumber:     roundNumber,
		Name:            name,
		Status:          models.GroupStatusPending,
		QualifyingTeams: qualifying,
	}
	r.nextID++
	r.groups[g.ID] = g
	r.teams[g.ID] = append([]int(nil), teamIDs...)
	return g
}

func (r *fakeGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, group *models.Group) error {
	group.ID = r.nextID
	r.nextID++
	copied := *group
	r.groups[group.ID] = &copied
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGroupRepo) ListByTournamentRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber int) ([]*models.Group, error) {
	out := make([]*models.Group, 0)
	for _, g := range r.groups {
		if g.TournamentID == tournamentID && g.RoundNumber == roundNumber {
			copied := *g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeGroupRepo) CountByTournamentRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber int) (int, error) {
	count := 0
	for _, g := range r.groups {
		if g.TournamentID == tournamentID && g.RoundNumber == roundNumber {
			count++
		}
	}
	return count, nil
}

func (r *fakeGroupRepo) SetTeams(_ context.Context, _ repositories.SQLExecutor, groupID int, teamIDs []int) error {
	if _, ok := r.groups[groupID]; !ok {
		return repositories.ErrGroupNotFound
	}
	r.teams[groupID] = append([]int(nil), teamIDs...)
	return nil
}

func (r *fakeGroupRepo) ListTeamIDs(_ context.Context, _ repositories.SQLExecutor, groupID int) ([]int, error) {
	return append([]int(nil), r.teams[groupID]...), nil
}

func (r *fakeGroupRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.GroupStatus) error {
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrGroupNotFound
	}
	g.Status = status
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) add(groupID, matchNumber int, status models.MatchStatus) *models.Match {
	m := &models.Match{ID: r.nextID, GroupID: groupID, MatchNumber: matchNumber, Status: status}
	r.nextID++
	r.matches[m.ID] = m
	return m
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, groupID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.GroupID == groupID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchNumber < out[j].MatchNumber })
	return out, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) UpdateRoom(_ context.Context, _ repositories.SQLExecutor, id int, roomID, roomPassword *string) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.RoomID = roomID
	m.RoomPassword = roomPassword
	return nil
}

// fakeMatchScoreRepo resolves the joins the SQL implementation does with
// the match and group fakes it is built around.
type fakeMatchScoreRepo struct {
	scores  []*models.MatchScore
	matches *fakeMatchRepo
	groups  *fakeGroupRepo
	nextID  int
}

func newFakeMatchScoreRepo(matches *fakeMatchRepo, groups *fakeGroupRepo) *fakeMatchScoreRepo {
	return &fakeMatchScoreRepo{matches: matches, groups: groups, nextID: 1}
}

func (r *fakeMatchScoreRepo) add(matchID, teamID, wins, positionPoints, killPoints int) {
	r.scores = append(r.scores, &models.MatchScore{
		ID:             r.nextID,
		MatchID:        matchID,
		TeamID:         teamID,
		Wins:           wins,
		PositionPoints: positionPoints,
		KillPoints:     killPoints,
		TotalPoints:    positionPoints + killPoints,
	})
	r.nextID++
}

func (r *fakeMatchScoreRepo) Create(_ context.Context, _ repositories.SQLExecutor, score *models.MatchScore) error {
	for _, existing := range r.scores {
		if existing.MatchID == score.MatchID && existing.TeamID == score.TeamID {
			return repositories.ErrMatchScoreConflict
		}
	}
	score.ID = r.nextID
	r.nextID++
	copied := *score
	r.scores = append(r.scores, &copied)
	return nil
}

func (r *fakeMatchScoreRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.MatchScore, error) {
	out := make([]*models.MatchScore, 0)
	for _, s := range r.scores {
		if s.MatchID == matchID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMatchScoreRepo) CountByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int, error) {
	count := 0
	for _, s := range r.scores {
		if s.MatchID == matchID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchScoreRepo) SumByGroupAndTeam(_ context.Context, _ repositories.SQLExecutor, groupID, teamID int) (repositories.ScoreTotals, error) {
	var totals repositories.ScoreTotals
	for _, s := range r.scores {
		match, ok := r.matches.matches[s.MatchID]
		if !ok || match.GroupID != groupID || s.TeamID != teamID {
			continue
		}
		totals.PositionPoints += s.PositionPoints
		totals.KillPoints += s.KillPoints
		totals.Wins += s.Wins
	}
	return totals, nil
}

func (r *fakeMatchScoreRepo) SumByRoundAndTeam(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber, teamID int) (repositories.ScoreTotals, error) {
	var totals repositories.ScoreTotals
	for _, s := range r.scores {
		match, ok := r.matches.matches[s.MatchID]
		if !ok || s.TeamID != teamID {
			continue
		}
		group, ok := r.groups.groups[match.GroupID]
		if !ok || group.TournamentID != tournamentID || group.RoundNumber != roundNumber {
			continue
		}
		totals.PositionPoints += s.PositionPoints
		totals.KillPoints += s.KillPoints
		totals.Wins += s.Wins
	}
	return totals, nil
}

func (r *fakeMatchScoreRepo) SumByTeam(_ context.Context, _ int) (repositories.ScoreTotals, error) {
	return repositories.ScoreTotals{}, nil
}

func (r *fakeMatchScoreRepo) ListRoundTotalsByTeam(_ context.Context, _, _ int) ([]repositories.TeamRoundTotal, error) {
	return nil, nil
}

type fakeRoundScoreRepo struct {
	rows   map[int]*models.RoundScore
	nextID int
}

func newFakeRoundScoreRepo() *fakeRoundScoreRepo {
	return &fakeRoundScoreRepo{rows: make(map[int]*models.RoundScore), nextID: 1}
}

func (r *fakeRoundScoreRepo) add(tournamentID, roundNumber, teamID, totalPoints int) {
	row := &models.RoundScore{
		ID:           r.nextID,
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
		TeamID:       teamID,
		TotalPoints:  totalPoints,
	}
	r.nextID++
	r.rows[row.ID] = row
}

func (r *fakeRoundScoreRepo) GetByRoundAndTeam(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber, teamID int) (*models.RoundScore, error) {
	for _, row := range r.rows {
		if row.TournamentID == tournamentID && row.RoundNumber == roundNumber && row.TeamID == teamID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, repositories.ErrRoundScoreNotFound
}

func (r *fakeRoundScoreRepo) GetOrCreate(ctx context.Context, exec repositories.SQLExecutor, tournamentID, roundNumber, teamID int) (*models.RoundScore, error) {
	if row, err := r.GetByRoundAndTeam(ctx, exec, tournamentID, roundNumber, teamID); err == nil {
		return row, nil
	}
	r.add(tournamentID, roundNumber, teamID, 0)
	return r.GetByRoundAndTeam(ctx, exec, tournamentID, roundNumber, teamID)
}

func (r *fakeRoundScoreRepo) UpdateTotal(_ context.Context, _ repositories.SQLExecutor, id, totalPoints int) error {
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrRoundScoreNotFound
	}
	row.TotalPoints = totalPoints
	return nil
}

func (r *fakeRoundScoreRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber int) ([]*models.RoundScore, error) {
	out := make([]*models.RoundScore, 0)
	for _, row := range r.rows {
		if row.TournamentID == tournamentID && row.RoundNumber == roundNumber {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (r *fakeRoundScoreRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, row := range r.rows {
		if row.TournamentID == tournamentID {
			delete(r.rows, id)
		}
	}
	return nil
}

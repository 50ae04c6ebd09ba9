package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimhub/tournament-platform/live"
	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

type scoringFixture struct {
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	groups      *fakeGroupRepo
	matches     *fakeMatchRepo
	scores      *fakeMatchScoreRepo
	roundScores *fakeRoundScoreRepo
	service     ScoringService
}

func newScoringFixture() *scoringFixture {
	f := &scoringFixture{
		tournaments: newFakeTournamentRepo(),
		regs:        newFakeRegistrationRepo(),
		groups:      newFakeGroupRepo(),
		matches:     newFakeMatchRepo(),
		roundScores: newFakeRoundScoreRepo(),
	}
	f.scores = newFakeMatchScoreRepo(f.matches, f.groups)
	svc := NewScoringService(
		nil,
		f.tournaments,
		f.regs,
		f.groups,
		f.matches,
		f.scores,
		f.roundScores,
		live.NewHub(testLogger()),
		testLogger(),
	).(*scoringService)
	svc.runTx = passthroughTxRunner
	f.service = svc
	return f
}

func TestGetGroupStandingsRanking(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	alpha := f.regs.add(1, "Alpha", models.RegistrationStatusConfirmed)
	bravo := f.regs.add(1, "Bravo", models.RegistrationStatusConfirmed)
	charlie := f.regs.add(1, "Charlie", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 2, []int{alpha.ID, bravo.ID, charlie.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusCompleted)

	// Alpha: 15 total, Bravo and Charlie tie at 7 but Charlie has more
	// kill points.
	f.scores.add(match.ID, alpha.ID, 1, 10, 5)
	f.scores.add(match.ID, bravo.ID, 0, 5, 2)
	f.scores.add(match.ID, charlie.ID, 0, 4, 3)

	standings, err := f.service.GetGroupStandings(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, alpha.ID, standings[0].TeamID)
	assert.Equal(t, 15, standings[0].TotalPoints)
	assert.Equal(t, "Alpha", standings[0].TeamName)
	assert.Equal(t, charlie.ID, standings[1].TeamID)
	assert.Equal(t, bravo.ID, standings[2].TeamID)
}

func TestGetGroupStandingsTieBreakFallsThroughToTeamID(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	first := f.regs.add(1, "First", models.RegistrationStatusConfirmed)
	second := f.regs.add(1, "Second", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 1, []int{second.ID, first.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusCompleted)

	// Identical totals, kills and wins: the lower registration ID ranks
	// first.
	f.scores.add(match.ID, first.ID, 1, 6, 4)
	f.scores.add(match.ID, second.ID, 1, 6, 4)

	standings, err := f.service.GetGroupStandings(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, first.ID, standings[0].TeamID)
	assert.Equal(t, second.ID, standings[1].TeamID)
}

func TestGetGroupStandingsUnknownGroup(t *testing.T) {
	f := newScoringFixture()

	_, err := f.service.GetGroupStandings(context.Background(), 999)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSubmitMatchScoresValidation(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	member := f.regs.add(1, "Member", models.RegistrationStatusConfirmed)
	outsider := f.regs.add(1, "Outsider", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 1, []int{member.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusOngoing)

	_, err := f.service.SubmitMatchScores(ctx, match.ID, nil)
	assert.ErrorIs(t, err, ErrNoScoresSubmitted)

	_, err = f.service.SubmitMatchScores(ctx, match.ID, []MatchScoreInput{
		{TeamID: member.ID, PositionPoints: -1},
	})
	assert.ErrorIs(t, err, ErrNegativeScoreValues)

	_, err = f.service.SubmitMatchScores(ctx, match.ID, []MatchScoreInput{
		{TeamID: outsider.ID, PositionPoints: 5},
	})
	assert.ErrorIs(t, err, ErrTeamNotInGroup)

	_, err = f.service.SubmitMatchScores(ctx, 999, []MatchScoreInput{
		{TeamID: member.ID, PositionPoints: 5},
	})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSubmitMatchScoresRecordsAndCompletesMatch(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	alpha := f.regs.add(1, "Alpha", models.RegistrationStatusConfirmed)
	bravo := f.regs.add(1, "Bravo", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 1, []int{alpha.ID, bravo.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusOngoing)

	created, err := f.service.SubmitMatchScores(ctx, match.ID, []MatchScoreInput{
		{TeamID: alpha.ID, Wins: 1, PositionPoints: 10, KillPoints: 4},
		{TeamID: bravo.ID, Wins: 0, PositionPoints: 6, KillPoints: 2},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, alpha.ID, created[0].TeamID)
	assert.Equal(t, 14, created[0].TotalPoints)
	assert.Equal(t, bravo.ID, created[1].TeamID)
	assert.Equal(t, 8, created[1].TotalPoints)

	stored, err := f.matches.GetByID(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, stored.Status)

	count, err := f.scores.CountByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Each team gets exactly one row per match.
	_, err = f.service.SubmitMatchScores(ctx, match.ID, []MatchScoreInput{
		{TeamID: alpha.ID, PositionPoints: 1},
	})
	assert.ErrorIs(t, err, repositories.ErrMatchScoreConflict)
}

func TestSubmitMatchScoresRequiresStartedMatch(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	member := f.regs.add(1, "Member", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 1, []int{member.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusWaiting)

	_, err := f.service.SubmitMatchScores(ctx, match.ID, []MatchScoreInput{
		{TeamID: member.ID, PositionPoints: 5},
	})
	assert.ErrorIs(t, err, ErrMatchNotStarted)

	count, err := f.scores.CountByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCalculateRoundScoresIsIdempotent(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	a := f.regs.add(1, "A", models.RegistrationStatusConfirmed)
	b := f.regs.add(1, "B", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 1, []int{a.ID, b.ID})
	first := f.matches.add(group.ID, 1, models.MatchStatusCompleted)
	second := f.matches.add(group.ID, 2, models.MatchStatusCompleted)

	f.scores.add(first.ID, a.ID, 1, 10, 3)
	f.scores.add(first.ID, b.ID, 0, 4, 1)
	f.scores.add(second.ID, a.ID, 0, 2, 2)
	f.scores.add(second.ID, b.ID, 1, 8, 5)

	require.NoError(t, f.service.CalculateRoundScores(ctx, 1, 1))

	rows, err := f.roundScores.ListByRound(ctx, nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ID, rows[0].TeamID)
	assert.Equal(t, 18, rows[0].TotalPoints)
	assert.Equal(t, a.ID, rows[1].TeamID)
	assert.Equal(t, 17, rows[1].TotalPoints)

	// Rerunning with unchanged match data updates in place rather than
	// duplicating rows.
	require.NoError(t, f.service.CalculateRoundScores(ctx, 1, 1))

	again, err := f.roundScores.ListByRound(ctx, nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestSelectQualifiersFallsBackToGroupCount(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	a := f.regs.add(1, "A", models.RegistrationStatusConfirmed)
	b := f.regs.add(1, "B", models.RegistrationStatusConfirmed)
	c := f.regs.add(1, "C", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 2, []int{a.ID, b.ID, c.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusCompleted)

	f.scores.add(match.ID, a.ID, 0, 9, 0)
	f.scores.add(match.ID, b.ID, 0, 6, 0)
	f.scores.add(match.ID, c.ID, 0, 3, 0)

	qualified, err := f.service.SelectQualifiers(ctx, group.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, b.ID}, qualified)
}

func TestSelectQualifiersClipsToGroupSize(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	a := f.regs.add(1, "A", models.RegistrationStatusConfirmed)
	b := f.regs.add(1, "B", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 2, []int{a.ID, b.ID})
	match := f.matches.add(group.ID, 1, models.MatchStatusCompleted)

	f.scores.add(match.ID, a.ID, 0, 4, 0)
	f.scores.add(match.ID, b.ID, 0, 8, 0)

	qualified, err := f.service.SelectQualifiers(ctx, group.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID, a.ID}, qualified)
}

func TestRecordRoundQualifiersMergesGroupsAndBumpsRound(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	tournament := &models.Tournament{
		Title:    "Winter Clash",
		HostID:   1,
		Status:   models.TournamentStatusOngoing,
		MaxSlots: 8,
		Rounds: models.RoundConfigList{
			{Round: 1, MaxTeams: 4, QualifyingTeams: 1},
			{Round: 2, MaxTeams: 2, QualifyingTeams: 1},
		},
	}
	require.NoError(t, f.tournaments.Create(ctx, tournament))

	a := f.regs.add(tournament.ID, "A", models.RegistrationStatusConfirmed)
	b := f.regs.add(tournament.ID, "B", models.RegistrationStatusConfirmed)
	c := f.regs.add(tournament.ID, "C", models.RegistrationStatusConfirmed)
	d := f.regs.add(tournament.ID, "D", models.RegistrationStatusConfirmed)

	groupA := f.groups.add(tournament.ID, 1, "Group A", 1, []int{a.ID, b.ID})
	groupB := f.groups.add(tournament.ID, 1, "Group B", 1, []int{c.ID, d.ID})
	matchA := f.matches.add(groupA.ID, 1, models.MatchStatusCompleted)
	matchB := f.matches.add(groupB.ID, 1, models.MatchStatusCompleted)

	f.scores.add(matchA.ID, a.ID, 1, 10, 2)
	f.scores.add(matchA.ID, b.ID, 0, 4, 1)
	f.scores.add(matchB.ID, c.ID, 0, 3, 0)
	f.scores.add(matchB.ID, d.ID, 1, 7, 5)

	qualified, err := f.service.RecordRoundQualifiers(ctx, tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, d.ID}, qualified)

	stored, err := f.tournaments.GetByID(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, d.ID}, stored.SelectedTeams[1])
	assert.Equal(t, 1, stored.CurrentRound)
}

func TestRecordRoundQualifiersUnconfiguredRound(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	tournament := &models.Tournament{Title: "Empty", HostID: 1, Status: models.TournamentStatusOngoing, MaxSlots: 8}
	require.NoError(t, f.tournaments.Create(ctx, tournament))

	_, err := f.service.RecordRoundQualifiers(ctx, tournament.ID, 3)
	assert.ErrorIs(t, err, ErrRoundNotConfigured)
}

func TestComputeTournamentWinnerUsesFinalRoundOnly(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	tournament := &models.Tournament{
		Title:    "Spring Cup",
		HostID:   1,
		Status:   models.TournamentStatusOngoing,
		MaxSlots: 4,
		Rounds: models.RoundConfigList{
			{Round: 1, MaxTeams: 4, QualifyingTeams: 2},
			{Round: 2, MaxTeams: 2, QualifyingTeams: 1},
		},
	}
	require.NoError(t, f.tournaments.Create(ctx, tournament))

	steady := f.regs.add(tournament.ID, "Steady", models.RegistrationStatusConfirmed)
	closer := f.regs.add(tournament.ID, "Closer", models.RegistrationStatusConfirmed)

	// Steady dominated round 1 but the final round alone decides the
	// champion.
	f.roundScores.add(tournament.ID, 1, steady.ID, 100)
	f.roundScores.add(tournament.ID, 1, closer.ID, 10)
	f.roundScores.add(tournament.ID, 2, steady.ID, 5)
	f.roundScores.add(tournament.ID, 2, closer.ID, 20)

	winner, err := f.service.ComputeTournamentWinner(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, closer.ID, winner.ID)
	assert.Equal(t, "Closer", winner.TeamName)

	stored, err := f.tournaments.GetByID(ctx, nil, tournament.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WinnerTeamID)
	assert.Equal(t, closer.ID, *stored.WinnerTeamID)
}

func TestComputeTournamentWinnerErrors(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	noRounds := &models.Tournament{Title: "No Rounds", HostID: 1, Status: models.TournamentStatusOngoing, MaxSlots: 4}
	require.NoError(t, f.tournaments.Create(ctx, noRounds))
	_, err := f.service.ComputeTournamentWinner(ctx, noRounds.ID)
	assert.ErrorIs(t, err, ErrNoRoundsConfigured)

	noScores := &models.Tournament{
		Title:    "No Scores",
		HostID:   1,
		Status:   models.TournamentStatusOngoing,
		MaxSlots: 4,
		Rounds:   models.RoundConfigList{{Round: 1, MaxTeams: 4, QualifyingTeams: 1}},
	}
	require.NoError(t, f.tournaments.Create(ctx, noScores))
	_, err = f.service.ComputeTournamentWinner(ctx, noScores.ID)
	assert.ErrorIs(t, err, ErrNoScoresForRound)

	_, err = f.service.ComputeTournamentWinner(ctx, 999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestComputeTournamentWinnerAlreadyDecided(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	champion := f.regs.add(1, "Champion", models.RegistrationStatusConfirmed)
	tournament := &models.Tournament{
		Title:        "Decided Cup",
		HostID:       1,
		Status:       models.TournamentStatusCompleted,
		MaxSlots:     4,
		Rounds:       models.RoundConfigList{{Round: 1, MaxTeams: 4, QualifyingTeams: 1}},
		WinnerTeamID: &champion.ID,
	}
	require.NoError(t, f.tournaments.Create(ctx, tournament))
	f.roundScores.add(tournament.ID, 1, champion.ID, 30)

	_, err := f.service.ComputeTournamentWinner(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentHasWinner)
}

func TestListMatchesMissingScores(t *testing.T) {
	f := newScoringFixture()
	ctx := context.Background()

	a := f.regs.add(1, "A", models.RegistrationStatusConfirmed)
	group := f.groups.add(1, 1, "Group A", 1, []int{a.ID})
	scored := f.matches.add(group.ID, 1, models.MatchStatusCompleted)
	unscored := f.matches.add(group.ID, 2, models.MatchStatusCompleted)
	f.matches.add(group.ID, 3, models.MatchStatusWaiting)

	f.scores.add(scored.ID, a.ID, 0, 5, 0)

	missing, err := f.service.ListMatchesMissingScores(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, unscored.ID, missing[0].ID)
}

func TestGetRoundResultsUnconfiguredRound(t *testing.T) {
	f := newScoringFixture()

	_, err := f.service.GetRoundResults(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrRoundNotConfigured)
}

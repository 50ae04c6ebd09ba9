package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimhub/tournament-platform/models"
)

func newRegistrationFixture(t *testing.T, status models.TournamentStatus, maxSlots int) (*models.Tournament, *fakeRegistrationRepo, RegistrationService) {
	t.Helper()
	tournaments := newFakeTournamentRepo()
	regs := newFakeRegistrationRepo()
	service := NewRegistrationService(regs, tournaments, testLogger())

	tournament := &models.Tournament{
		Title:    "Open Qualifier",
		HostID:   1,
		Status:   status,
		MaxSlots: maxSlots,
	}
	require.NoError(t, tournaments.Create(context.Background(), tournament))
	return tournament, regs, service
}

func TestRegisterCreatesPendingRegistration(t *testing.T) {
	tournament, _, service := newRegistrationFixture(t, models.TournamentStatusUpcoming, 16)

	reg, err := service.Register(context.Background(), tournament.ID, nil, "Night Owls")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
	assert.Equal(t, tournament.ID, reg.TournamentID)
	assert.Equal(t, "Night Owls", reg.TeamName)
	assert.NotZero(t, reg.ID)
}

func TestRegisterValidation(t *testing.T) {
	tournament, _, service := newRegistrationFixture(t, models.TournamentStatusUpcoming, 16)
	ctx := context.Background()

	_, err := service.Register(ctx, tournament.ID, nil, "")
	assert.ErrorIs(t, err, ErrTeamNameRequired)

	_, err = service.Register(ctx, 999, nil, "Ghosts")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegisterClosedWhenTournamentStarted(t *testing.T) {
	tournament, _, service := newRegistrationFixture(t, models.TournamentStatusOngoing, 16)

	_, err := service.Register(context.Background(), tournament.ID, nil, "Latecomers")
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegisterFullTournament(t *testing.T) {
	tournament, regs, service := newRegistrationFixture(t, models.TournamentStatusUpcoming, 2)

	regs.add(tournament.ID, "One", models.RegistrationStatusConfirmed)
	regs.add(tournament.ID, "Two", models.RegistrationStatusPending)

	_, err := service.Register(context.Background(), tournament.ID, nil, "Three")
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestConfirmRegistration(t *testing.T) {
	tournament, regs, service := newRegistrationFixture(t, models.TournamentStatusUpcoming, 16)
	ctx := context.Background()

	pending := regs.add(tournament.ID, "Pending", models.RegistrationStatusPending)

	confirmed, err := service.Confirm(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusConfirmed, confirmed.Status)

	// Confirming twice is a no-op, not an error.
	confirmed, err = service.Confirm(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusConfirmed, confirmed.Status)

	cancelled := regs.add(tournament.ID, "Gone", models.RegistrationStatusCancelled)
	_, err = service.Confirm(ctx, cancelled.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotActive)

	_, err = service.Confirm(ctx, 999)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

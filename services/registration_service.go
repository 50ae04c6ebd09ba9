package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

// RegistrationService is the minimal entry path feeding the engine:
// payment capture, email confirmation and roster management happen
// elsewhere and land here as a confirm call.
type RegistrationService interface {
	Register(ctx context.Context, tournamentID int, teamID *int, teamName string) (*models.Registration, error)
	Confirm(ctx context.Context, registrationID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error)
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	logger           *slog.Logger
}

func NewRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		logger:           logger,
	}
}

func (s *registrationService) Register(ctx context.Context, tournamentID int, teamID *int, teamName string) (*models.Registration, error) {
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Status != models.TournamentStatusUpcoming {
		return nil, ErrRegistrationClosed
	}

	count, err := s.registrationRepo.CountByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	if count >= tournament.MaxSlots {
		return nil, ErrTournamentFull
	}

	registration := &models.Registration{
		TournamentID: tournamentID,
		TeamID:       teamID,
		TeamName:     teamName,
		Status:       models.RegistrationStatusPending,
	}
	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "team registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("registration_id", registration.ID),
		slog.String("team_name", teamName))

	return registration, nil
}

func (s *registrationService) Confirm(ctx context.Context, registrationID int) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, nil, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if registration.Status == models.RegistrationStatusCancelled {
		return nil, ErrRegistrationNotActive
	}
	if registration.Status == models.RegistrationStatusConfirmed {
		return registration, nil
	}

	if err := s.registrationRepo.UpdateStatus(ctx, registrationID, models.RegistrationStatusConfirmed); err != nil {
		return nil, err
	}
	registration.Status = models.RegistrationStatusConfirmed
	return registration, nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	return s.registrationRepo.ListByTournament(ctx, nil, tournamentID, status)
}

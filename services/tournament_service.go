package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
	"github.com/scrimhub/tournament-platform/storage"
)

type CreateTournamentInput struct {
	Title           string                 `json:"title"`
	Description     *string                `json:"description"`
	Rounds          models.RoundConfigList `json:"rounds"`
	MaxSlots        int                    `json:"max_slots"`
	TournamentStart time.Time              `json:"tournament_start"`
	TournamentEnd   time.Time              `json:"tournament_end"`
}

type UpdateTournamentInput struct {
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	Rounds          *models.RoundConfigList `json:"rounds"`
	MaxSlots        *int                    `json:"max_slots"`
	TournamentStart *time.Time              `json:"tournament_start"`
	TournamentEnd   *time.Time              `json:"tournament_end"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, hostID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id, hostID int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id, hostID int, status models.TournamentStatus) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id, hostID int) error
	UploadBanner(ctx context.Context, id, hostID int, contentType string, banner io.Reader) (*models.Tournament, error)
	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		uploader:         uploader,
		logger:           logger,
	}
}

func validateRounds(rounds models.RoundConfigList) error {
	seen := make(map[int]bool, len(rounds))
	for _, r := range rounds {
		if r.Round <= 0 || seen[r.Round] {
			return ErrTournamentInvalidRounds
		}
		seen[r.Round] = true
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, hostID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Title == "" {
		return nil, ErrTournamentTitleRequired
	}
	if input.MaxSlots <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	if !input.TournamentStart.Before(input.TournamentEnd) {
		return nil, ErrTournamentInvalidDateRange
	}
	if err := validateRounds(input.Rounds); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Title:           input.Title,
		Description:     input.Description,
		HostID:          hostID,
		Status:          models.TournamentStatusUpcoming,
		Rounds:          input.Rounds,
		SelectedTeams:   models.RoundQualifiers{},
		MaxSlots:        input.MaxSlots,
		TournamentStart: input.TournamentStart,
		TournamentEnd:   input.TournamentEnd,
	}
	if tournament.Rounds == nil {
		tournament.Rounds = models.RoundConfigList{}
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("host_id", hostID),
		slog.String("title", tournament.Title))

	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	s.populateBannerURL(tournament)

	registrations, err := s.registrationRepo.ListByTournament(ctx, nil, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations for tournament %d: %w", id, err)
	}
	tournament.Registrations = make([]models.Registration, 0, len(registrations))
	for _, reg := range registrations {
		tournament.Registrations = append(tournament.Registrations, *reg)
	}

	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

// getOwnedTournament loads the tournament and enforces host ownership for
// mutating operations.
func (s *tournamentService) getOwnedTournament(ctx context.Context, id, hostID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.HostID != hostID {
		return nil, ErrHostActionRequired
	}
	return tournament, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id, hostID int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.getOwnedTournament(ctx, id, hostID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusUpcoming {
		return nil, ErrTournamentNotEditable
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTournamentTitleRequired
		}
		tournament.Title = *input.Title
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.Rounds != nil {
		if err := validateRounds(*input.Rounds); err != nil {
			return nil, err
		}
		tournament.Rounds = *input.Rounds
	}
	if input.MaxSlots != nil {
		if *input.MaxSlots <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		tournament.MaxSlots = *input.MaxSlots
	}
	if input.TournamentStart != nil {
		tournament.TournamentStart = *input.TournamentStart
	}
	if input.TournamentEnd != nil {
		tournament.TournamentEnd = *input.TournamentEnd
	}
	if !tournament.TournamentStart.Before(tournament.TournamentEnd) {
		return nil, ErrTournamentInvalidDateRange
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id, hostID int, status models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.getOwnedTournament(ctx, id, hostID)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, err
	}
	tournament.Status = status
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id, hostID int) error {
	if _, err := s.getOwnedTournament(ctx, id, hostID); err != nil {
		return err
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) UploadBanner(ctx context.Context, id, hostID int, contentType string, banner io.Reader) (*models.Tournament, error) {
	tournament, err := s.getOwnedTournament(ctx, id, hostID)
	if err != nil {
		return nil, err
	}

	key, err := s.uploader.Upload(ctx, storage.UploadInput{
		KeyPrefix:   fmt.Sprintf("tournaments/%d/banner", id),
		ContentType: contentType,
		Body:        banner,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload banner for tournament %d: %w", id, err)
	}

	oldKey := tournament.BannerKey
	if err := s.tournamentRepo.UpdateBannerKey(ctx, id, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != "" && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous banner",
				slog.Int("tournament_id", id), slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	tournament.BannerKey = &key
	s.populateBannerURL(tournament)
	return tournament, nil
}

// AutoUpdateTournamentStatusesByDates advances statuses that lag behind
// the clock: upcoming tournaments past their start become ongoing, and
// anything past its end becomes completed. Run periodically from main.
func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	now := time.Now()
	stale, err := s.tournamentRepo.ListForAutoStatusUpdate(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list tournaments for status update: %w", err)
	}

	for _, tournament := range stale {
		var next models.TournamentStatus
		switch {
		case !tournament.TournamentEnd.After(now):
			next = models.TournamentStatusCompleted
		case !tournament.TournamentStart.After(now):
			next = models.TournamentStatusOngoing
		default:
			continue
		}
		if next == tournament.Status || !isValidStatusTransition(tournament.Status, next) {
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournament.ID, next); err != nil {
			return fmt.Errorf("failed to auto-update status of tournament %d: %w", tournament.ID, err)
		}
		s.logger.InfoContext(ctx, "tournament status auto-updated",
			slog.Int("tournament_id", tournament.ID),
			slog.String("from", string(tournament.Status)),
			slog.String("to", string(next)))
	}
	return nil
}

func (s *tournamentService) populateBannerURL(tournament *models.Tournament) {
	if tournament.BannerKey != nil && *tournament.BannerKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*tournament.BannerKey); url != "" {
			tournament.BannerURL = &url
		}
	}
}

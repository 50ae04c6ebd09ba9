package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListGroupMatches(ctx context.Context, groupID int) ([]*models.Match, error)
	// StartMatch opens the lobby: stores room credentials and moves the
	// match from waiting to ongoing.
	StartMatch(ctx context.Context, matchID int, roomID, roomPassword string) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	groupRepo repositories.GroupRepository
	logger    *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	groupRepo repositories.GroupRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		groupRepo: groupRepo,
		logger:    logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListGroupMatches(ctx context.Context, groupID int) ([]*models.Match, error) {
	if _, err := s.groupRepo.GetByID(ctx, nil, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByGroup(ctx, nil, groupID)
}

func (s *matchService) StartMatch(ctx context.Context, matchID int, roomID, roomPassword string) (*models.Match, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateRoom(ctx, nil, matchID, &roomID, &roomPassword); err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusWaiting {
		if err := s.matchRepo.UpdateStatus(ctx, nil, matchID, models.MatchStatusOngoing); err != nil {
			return nil, err
		}
		match.Status = models.MatchStatusOngoing
	}
	match.RoomID = &roomID
	match.RoomPassword = &roomPassword

	s.logger.InfoContext(ctx, "match started",
		slog.Int("match_id", matchID),
		slog.Int("group_id", match.GroupID),
		slog.Int("match_number", match.MatchNumber))

	return match, nil
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimhub/tournament-platform/models"
)

func TestStartMatchOpensRoomAndStarts(t *testing.T) {
	matches := newFakeMatchRepo()
	groups := newFakeGroupRepo()
	service := NewMatchService(matches, groups, testLogger())
	ctx := context.Background()

	group := groups.add(1, 1, "Group A", 1, []int{1, 2})
	waiting := matches.add(group.ID, 1, models.MatchStatusWaiting)

	started, err := service.StartMatch(ctx, waiting.ID, "room-42", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusOngoing, started.Status)
	require.NotNil(t, started.RoomID)
	assert.Equal(t, "room-42", *started.RoomID)
	require.NotNil(t, started.RoomPassword)
	assert.Equal(t, "hunter2", *started.RoomPassword)

	stored, err := matches.GetByID(ctx, nil, waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusOngoing, stored.Status)
}

func TestStartMatchKeepsNonWaitingStatus(t *testing.T) {
	matches := newFakeMatchRepo()
	groups := newFakeGroupRepo()
	service := NewMatchService(matches, groups, testLogger())
	ctx := context.Background()

	group := groups.add(1, 1, "Group A", 1, []int{1})
	completed := matches.add(group.ID, 1, models.MatchStatusCompleted)

	// Re-opening the room on a finished match must not regress its status.
	started, err := service.StartMatch(ctx, completed.ID, "room-9", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, started.Status)
}

func TestGetMatchNotFound(t *testing.T) {
	service := NewMatchService(newFakeMatchRepo(), newFakeGroupRepo(), testLogger())

	_, err := service.GetMatch(context.Background(), 123)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestListGroupMatchesUnknownGroup(t *testing.T) {
	service := NewMatchService(newFakeMatchRepo(), newFakeGroupRepo(), testLogger())

	_, err := service.ListGroupMatches(context.Background(), 123)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateGroupsEvenSplit(t *testing.T) {
	numGroups, distribution, err := CalculateGroups(100, 24)
	require.NoError(t, err)

	assert.Equal(t, 5, numGroups)
	assert.Equal(t, []int{20, 20, 20, 20, 20}, distribution)
}

func TestCalculateGroupsRemainderSpread(t *testing.T) {
	numGroups, distribution, err := CalculateGroups(23, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, numGroups)
	assert.Equal(t, []int{8, 8, 7}, distribution)
}

func TestCalculateGroupsExactFit(t *testing.T) {
	numGroups, distribution, err := CalculateGroups(50, 25)
	require.NoError(t, err)

	assert.Equal(t, 2, numGroups)
	assert.Equal(t, []int{25, 25}, distribution)
}

func TestCalculateGroupsSingleGroup(t *testing.T) {
	numGroups, distribution, err := CalculateGroups(7, 25)
	require.NoError(t, err)

	assert.Equal(t, 1, numGroups)
	assert.Equal(t, []int{7}, distribution)
}

func TestCalculateGroupsInvalidTeamsPerGroup(t *testing.T) {
	for _, perGroup := range []int{0, -1} {
		_, _, err := CalculateGroups(10, perGroup)
		assert.ErrorIs(t, err, ErrTeamsPerGroupInvalid)
	}
}

func TestCalculateGroupsTeamsPerGroupOverCap(t *testing.T) {
	_, _, err := CalculateGroups(100, 26)
	assert.ErrorIs(t, err, ErrTeamsPerGroupTooLarge)
}

func TestCalculateGroupsInvariants(t *testing.T) {
	// Sizes must sum to the team count, differ by at most one and never
	// exceed the lobby cap, for the whole valid input range.
	for totalTeams := 1; totalTeams <= 300; totalTeams++ {
		for teamsPerGroup := 1; teamsPerGroup <= MaxTeamsPerGroup; teamsPerGroup++ {
			numGroups, distribution, err := CalculateGroups(totalTeams, teamsPerGroup)
			require.NoError(t, err, "T=%d P=%d", totalTeams, teamsPerGroup)
			require.Len(t, distribution, numGroups)

			sum := 0
			minSize, maxSize := distribution[0], distribution[0]
			for _, size := range distribution {
				sum += size
				if size < minSize {
					minSize = size
				}
				if size > maxSize {
					maxSize = size
				}
			}
			assert.Equal(t, totalTeams, sum, "T=%d P=%d", totalTeams, teamsPerGroup)
			assert.LessOrEqual(t, maxSize-minSize, 1, "T=%d P=%d", totalTeams, teamsPerGroup)
			assert.LessOrEqual(t, maxSize, MaxTeamsPerGroup, "T=%d P=%d", totalTeams, teamsPerGroup)
			assert.LessOrEqual(t, maxSize, teamsPerGroup, "T=%d P=%d", totalTeams, teamsPerGroup)
		}
	}
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "Group A", GroupName(0))
	assert.Equal(t, "Group B", GroupName(1))
	assert.Equal(t, "Group Z", GroupName(25))
	assert.Equal(t, "Group AA", GroupName(26))
	assert.Equal(t, "Group AZ", GroupName(51))
	assert.Equal(t, "Group BA", GroupName(52))
	assert.Equal(t, "Group ZZ", GroupName(701))
	assert.Equal(t, "Group AAA", GroupName(702))
}

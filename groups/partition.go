// Package groups holds the pure group-partitioning math used when a
// tournament round is configured. It has no persistence side effects.
package groups

import (
	"errors"
	"fmt"
)

// MaxTeamsPerGroup is the hard cap on group size. Lobby capacity of the
// game clients is 25, so no distribution may ever exceed it.
const MaxTeamsPerGroup = 25

var (
	ErrTeamsPerGroupInvalid  = errors.New("teams per group must be greater than 0")
	ErrTeamsPerGroupTooLarge = fmt.Errorf("teams per group cannot exceed %d", MaxTeamsPerGroup)
)

// CalculateGroups splits totalTeams into groups of at most teamsPerGroup.
//
// The group count is totalTeams/teamsPerGroup, plus one more group when
// there is a remainder. Teams are then spread evenly across that many
// groups: every group gets totalTeams/numGroups, and the first
// totalTeams%numGroups groups get one extra. Sizes always sum to
// totalTeams and differ by at most one.
func CalculateGroups(totalTeams, teamsPerGroup int) (numGroups int, distribution []int, err error) {
	if teamsPerGroup > MaxTeamsPerGroup {
		return 0, nil, ErrTeamsPerGroupTooLarge
	}
	if teamsPerGroup <= 0 {
		return 0, nil, ErrTeamsPerGroupInvalid
	}
	if totalTeams <= 0 {
		return 0, []int{}, nil
	}

	numGroups = totalTeams / teamsPerGroup
	if totalTeams%teamsPerGroup > 0 {
		numGroups++
	}

	base := totalTeams / numGroups
	remainder := totalTeams % numGroups

	distribution = make([]int, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		size := base
		if i < remainder {
			size++
		}
		distribution = append(distribution, size)
	}

	// base+1 stays within teamsPerGroup for every reachable input, but a
	// distribution over the lobby cap must never leave this function.
	for _, size := range distribution {
		if size > MaxTeamsPerGroup {
			return 0, nil, fmt.Errorf("configuration would result in a group with %d teams, exceeding max limit of %d", size, MaxTeamsPerGroup)
		}
	}

	return numGroups, distribution, nil
}

// GroupName returns the human label for the zero-based group index:
// "Group A".."Group Z", then "Group AA", "Group AB" and so on, so large
// tournaments are not limited to 26 groups.
func GroupName(index int) string {
	letters := ""
	n := index
	for {
		letters = string(rune('A'+n%26)) + letters
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return "Group " + letters
}

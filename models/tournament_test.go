package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundQualifiersValueUsesStringKeys(t *testing.T) {
	q := RoundQualifiers{1: {10, 20}, 2: {10}}

	value, err := q.Value()
	require.NoError(t, err)

	// Integer map keys serialize as JSON strings, matching the stored
	// JSONB shape.
	assert.JSONEq(t, `{"1":[10,20],"2":[10]}`, string(value.([]byte)))
}

func TestRoundQualifiersScanRoundTrip(t *testing.T) {
	var q RoundQualifiers
	require.NoError(t, q.Scan([]byte(`{"1":[3,1],"4":[]}`)))

	assert.Equal(t, []int{3, 1}, q[1])
	assert.Empty(t, q[4])
	assert.Nil(t, q[2])
}

func TestRoundQualifiersScanNil(t *testing.T) {
	var q RoundQualifiers
	require.NoError(t, q.Scan(nil))
	assert.NotNil(t, q)
	assert.Empty(t, q)
}

func TestRoundQualifiersNilValue(t *testing.T) {
	var q RoundQualifiers
	value, err := q.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", value)
}

func TestRoundConfigListScan(t *testing.T) {
	var l RoundConfigList
	require.NoError(t, l.Scan([]byte(`[{"round":1,"max_teams":100,"qualifying_teams":5,"name":"Qualifiers"}]`)))
	require.Len(t, l, 1)
	assert.Equal(t, 1, l[0].Round)
	assert.Equal(t, 100, l[0].MaxTeams)
	require.NotNil(t, l[0].Name)
	assert.Equal(t, "Qualifiers", *l[0].Name)
}

func TestFinalRound(t *testing.T) {
	empty := &Tournament{}
	assert.Equal(t, 0, empty.FinalRound())

	// Round order in the list does not matter.
	unordered := &Tournament{Rounds: RoundConfigList{{Round: 3}, {Round: 1}, {Round: 2}}}
	assert.Equal(t, 3, unordered.FinalRound())
}

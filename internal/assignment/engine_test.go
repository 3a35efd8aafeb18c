package assignment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(capacity int, createdAt time.Time) Candidate {
	return Candidate{ID: uuid.New(), Capacity: capacity, CreatedAt: createdAt}
}

func TestBestFitPrefersLeastWaste(t *testing.T) {
	now := time.Now()
	two := candidate(2, now)
	four := candidate(4, now.Add(time.Minute))
	eight := candidate(8, now.Add(2*time.Minute))

	// A party of 3 wastes 1 seat on the four-top, 5 on the eight-top
	best, ok := BestFit([]Candidate{eight, two, four}, 3)
	require.True(t, ok)
	assert.Equal(t, four.ID, best.ID)

	// A party of 2 takes the exact-fit two-top
	best, ok = BestFit([]Candidate{eight, four, two}, 2)
	require.True(t, ok)
	assert.Equal(t, two.ID, best.ID)
}

func TestBestFitSkipsTooSmall(t *testing.T) {
	now := time.Now()
	two := candidate(2, now)
	six := candidate(6, now)

	best, ok := BestFit([]Candidate{two, six}, 5)
	require.True(t, ok)
	assert.Equal(t, six.ID, best.ID)
}

func TestBestFitNoFit(t *testing.T) {
	now := time.Now()
	_, ok := BestFit([]Candidate{candidate(2, now), candidate(4, now)}, 10)
	assert.False(t, ok)

	_, ok = BestFit(nil, 2)
	assert.False(t, ok)
}

func TestBestFitTieBreaksByCreationOrder(t *testing.T) {
	earlier := candidate(4, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	later := candidate(4, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	best, ok := BestFit([]Candidate{later, earlier}, 4)
	require.True(t, ok)
	assert.Equal(t, earlier.ID, best.ID)
}

func TestBestFitTieBreaksByID(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Candidate{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Capacity: 4, CreatedAt: created}
	b := Candidate{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Capacity: 4, CreatedAt: created}

	best, ok := BestFit([]Candidate{b, a}, 4)
	require.True(t, ok)
	assert.Equal(t, a.ID, best.ID)

	// Order of the input slice does not change the winner
	best, ok = BestFit([]Candidate{a, b}, 4)
	require.True(t, ok)
	assert.Equal(t, a.ID, best.ID)
}

package waitlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateWait(t *testing.T) {
	tests := []struct {
		name            string
		occupiedFitting int
		avgTurn         time.Duration
		concurrentFrees int
		want            int
	}{
		{"single occupied table", 1, 45 * time.Minute, 1, 45},
		{"two tables two frees", 2, 45 * time.Minute, 2, 45},
		{"four tables two frees", 4, 45 * time.Minute, 2, 90},
		{"nothing occupied waits one turn", 0, 30 * time.Minute, 2, 15},
		{"negative clamps like zero", -3, 30 * time.Minute, 1, 30},
		{"zero frees clamps to one", 2, 20 * time.Minute, 0, 40},
		{"never below one minute", 1, 30 * time.Second, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateWait(tt.occupiedFitting, tt.avgTurn, tt.concurrentFrees)
			assert.Equal(t, tt.want, got)
			assert.Positive(t, got)
		})
	}
}

func TestEntryTransitions(t *testing.T) {
	now := time.Now()

	t.Run("waiting to notified stamps once", func(t *testing.T) {
		e := &Entry{Status: StatusWaiting}
		require.True(t, e.Transition(StatusNotified, now))
		assert.Equal(t, StatusNotified, e.Status)
		require.NotNil(t, e.NotifiedAt)

		// A second notify is rejected: one offer per entry
		assert.False(t, e.Transition(StatusNotified, now.Add(time.Minute)))
		assert.Equal(t, now, *e.NotifiedAt)
	})

	t.Run("waiting can seat directly", func(t *testing.T) {
		e := &Entry{Status: StatusWaiting}
		require.True(t, e.Transition(StatusSeated, now))
		assert.Equal(t, StatusSeated, e.Status)
		assert.NotNil(t, e.SeatedAt)
	})

	t.Run("notified can leave", func(t *testing.T) {
		e := &Entry{Status: StatusNotified}
		require.True(t, e.Transition(StatusLeft, now))
		assert.Equal(t, StatusLeft, e.Status)
		assert.NotNil(t, e.LeftAt)
	})

	t.Run("terminal entries reject everything", func(t *testing.T) {
		for _, s := range []Status{StatusSeated, StatusLeft} {
			e := &Entry{Status: s}
			assert.False(t, e.Transition(StatusNotified, now))
			assert.False(t, e.Transition(StatusWaiting, now))
		}
	})
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusSeated.IsTerminal())
	assert.True(t, StatusLeft.IsTerminal())
	assert.False(t, StatusWaiting.IsTerminal())
	assert.False(t, StatusNotified.IsTerminal())
}

func TestTransitionSources(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusWaiting}, TransitionSources(StatusNotified))
	assert.ElementsMatch(t, []Status{StatusWaiting, StatusNotified}, TransitionSources(StatusSeated))
	assert.ElementsMatch(t, []Status{StatusWaiting, StatusNotified}, TransitionSources(StatusLeft))
	assert.Empty(t, TransitionSources(StatusWaiting))
}

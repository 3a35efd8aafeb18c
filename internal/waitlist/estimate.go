package waitlist

import "time"

// EstimateWait is the coarse linear wait estimator: the number of occupied
// tables that could fit the party, times the average observed turn duration,
// divided by how many of those tables are expected to free up concurrently.
// It is a staff-facing hint, not a queueing simulation or a guarantee.
func EstimateWait(occupiedFitting int, avgTurn time.Duration, expectedConcurrentFrees int) int {
	if occupiedFitting <= 0 {
		// Nothing occupied that would fit: the party waits roughly one turn
		// for the floor to churn.
		occupiedFitting = 1
	}
	if expectedConcurrentFrees < 1 {
		expectedConcurrentFrees = 1
	}

	estimate := time.Duration(occupiedFitting) * avgTurn / time.Duration(expectedConcurrentFrees)

	minutes := int(estimate.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

package assignment

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a table or combined group eligible for assignment. The floor
// service builds candidates only from units whose derived status is AVAILABLE.
type Candidate struct {
	ID        uuid.UUID
	IsGroup   bool
	Capacity  int
	CreatedAt time.Time
}

// Fits reports whether the candidate can seat the party
func (c Candidate) Fits(partySize int) bool {
	return c.Capacity >= partySize
}

// waste is the capacity left unused by the party
func (c Candidate) waste(partySize int) int {
	return c.Capacity - partySize
}

// BestFit selects the available unit with the least wasted capacity for the
// party. Ties break by smaller absolute capacity, then by creation order and
// id, so repeated calls over the same floor are deterministic. ok is false
// when nothing fits; the caller routes that outcome to the waitlist rather
// than treating it as an error.
func BestFit(candidates []Candidate, partySize int) (Candidate, bool) {
	var best Candidate
	found := false

	for _, c := range candidates {
		if !c.Fits(partySize) {
			continue
		}
		if !found || better(c, best, partySize) {
			best = c
			found = true
		}
	}

	return best, found
}

// better reports whether a should win over b for the given party size
func better(a, b Candidate, partySize int) bool {
	if wa, wb := a.waste(partySize), b.waste(partySize); wa != wb {
		return wa < wb
	}
	if a.Capacity != b.Capacity {
		return a.Capacity < b.Capacity
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

package progress

import (
	"context"
)

type Repository interface {
	// Upsert creates or replaces the fact keyed by (user, chapter).
	// Concurrent writers converge to last-write-wins, which is
	// acceptable for user-reported completion facts.
	Upsert(ctx context.Context, f *Fact) (*Fact, error)

	Get(ctx context.Context, userID, chapterID string) (*Fact, error)

	// ListByUserAndCourse returns every fact the user holds against the
	// given course id, including facts whose chapter may since have been
	// removed from the course tree; the aggregator filters those out.
	ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*Fact, error)
}

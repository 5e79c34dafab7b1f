package domain

import (
	"context"
	"time"
)

// ListQuery narrows a gallery listing. A zero Before means no cursor: start
// from the newest record.
type ListQuery struct {
	Limit  int
	Before time.Time
}

// HeadlineRepository defines persistence for gallery records.
type HeadlineRepository interface {
	Create(ctx context.Context, headline *Headline) error
	GetByID(ctx context.Context, id string) (*Headline, error)
	// ListRecent returns records newest-first; the wall display polls it.
	ListRecent(ctx context.Context, q ListQuery) ([]Headline, error)
	UpdateAnimation(ctx context.Context, id string, update AnimationUpdate) error
}

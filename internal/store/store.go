package store

import (
	"context"

	"github.com/meetbrief/meetbrief/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., postgres, sqlite).
type Store interface {
	Summaries() Summaries
}

// Summaries persists Summary records. Every read and write is scoped by the
// owner: a lookup for a record that exists under a different owner behaves
// exactly like a lookup for a record that does not exist, and both return
// model.ErrNotFound.
type Summaries interface {
	Create(ctx context.Context, s *model.Summary) (*model.Summary, error)
	GetByID(ctx context.Context, ownerID, summaryID string) (*model.Summary, error)
	// List returns the owner's summaries ordered by creation time descending.
	List(ctx context.Context, ownerID string) ([]*model.Summary, error)
	Update(ctx context.Context, s *model.Summary) (*model.Summary, error)
	Delete(ctx context.Context, ownerID, summaryID string) error
}

// HealthPinger is implemented by stores that support a cheap connectivity probe.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

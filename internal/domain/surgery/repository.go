package surgery

import (
	"context"
)

type Repository interface {
	// Create persists s and refreshes it from the stored document, setting ID.
	Create(ctx context.Context, s *Surgery) error

	// GetByID returns ErrInvalidID for malformed ids and ErrSurgeryNotFound when absent.
	GetByID(ctx context.Context, id string) (*Surgery, error)

	// List returns one page ordered by DateTime, then ID.
	List(ctx context.Context, q *ListSurgeriesQuery) (*PagedSurgeries, error)

	// Update writes only the present fields of changes and returns the stored
	// record. An empty change set still looks the record up. Malformed ids are
	// reported as ErrSurgeryNotFound.
	Update(ctx context.Context, id string, changes *Changes) (*Surgery, error)

	// Delete reports whether exactly one record was removed. Malformed ids
	// yield false with a nil error; store failures return ErrStoreUnavailable.
	Delete(ctx context.Context, id string) (bool, error)

	Ping(ctx context.Context) error
}

package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
)

var _ surgery.Repository = (*SurgeryRepository)(nil)

// SurgeryRepository keeps surgeries in a map. Identifiers use the same
// ObjectID hex scheme as the MongoDB store so id validation behaves alike.
type SurgeryRepository struct {
	mu        sync.RWMutex
	surgeries map[string]*surgery.Surgery
}

func NewSurgeryRepository() *SurgeryRepository {
	return &SurgeryRepository{surgeries: make(map[string]*surgery.Surgery)}
}

func (r *SurgeryRepository) Create(ctx context.Context, s *surgery.Surgery) error {
	if err := contextError(ctx, "insert"); err != nil {
		return err
	}

	stored := *s
	stored.ID = bson.NewObjectID().Hex()
	stored.DateTime = s.DateTime.UTC()
	stored.PatientBirthdate = surgery.DateOnly(s.PatientBirthdate)

	r.mu.Lock()
	r.surgeries[stored.ID] = &stored
	r.mu.Unlock()

	*s = stored
	return nil
}

func (r *SurgeryRepository) GetByID(ctx context.Context, id string) (*surgery.Surgery, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %q", surgery.ErrInvalidID, id)
	}
	if err := contextError(ctx, "find_one"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surgeries[id]
	if !ok {
		return nil, surgery.ErrSurgeryNotFound
	}
	out := *s
	return &out, nil
}

func (r *SurgeryRepository) List(ctx context.Context, q *surgery.ListSurgeriesQuery) (*surgery.PagedSurgeries, error) {
	if err := contextError(ctx, "find"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]*surgery.Surgery, 0, len(r.surgeries))
	for _, s := range r.surgeries {
		out := *s
		all = append(all, &out)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *surgery.Surgery) int {
		if c := a.DateTime.Compare(b.DateTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	start := min(q.Offset(), len(all))
	end := min(start+q.PageSize, len(all))

	return surgery.NewPagedSurgeries(all[start:end], int64(len(all)), q), nil
}

func (r *SurgeryRepository) Update(ctx context.Context, id string, changes *surgery.Changes) (*surgery.Surgery, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %w", surgery.ErrSurgeryNotFound, surgery.ErrInvalidID)
	}
	if err := contextError(ctx, "update_one"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surgeries[id]
	if !ok {
		return nil, surgery.ErrSurgeryNotFound
	}
	changes.Apply(s)
	s.DateTime = s.DateTime.UTC()
	s.PatientBirthdate = surgery.DateOnly(s.PatientBirthdate)

	out := *s
	return &out, nil
}

func (r *SurgeryRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := contextError(ctx, "delete_one"); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.surgeries[id]; !ok {
		return false, nil
	}
	delete(r.surgeries, id)
	return true, nil
}

func (r *SurgeryRepository) Ping(ctx context.Context) error {
	return contextError(ctx, "ping")
}

func (r *SurgeryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surgeries)
}

// contextError mirrors the MongoDB store: an expired deadline is an
// unavailable store, a cancelled request is returned as is.
func contextError(ctx context.Context, op string) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%w: %s: %w", surgery.ErrStoreUnavailable, op, err)
	}
}

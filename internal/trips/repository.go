package trips

import (
	"context"
	"errors"

	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// ErrNotFound indicates a missing trip.
var ErrNotFound = docstore.ErrNotFound

// Repository persists departure trips.
type Repository interface {
	Create(ctx context.Context, trip Trip) (string, error)
	Get(ctx context.Context, id string) (Trip, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status Status) ([]Trip, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Trip, error)
}

type repository struct {
	store docstore.Store
}

// NewRepository constructs a document store backed repository.
func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func (r *repository) Create(ctx context.Context, trip Trip) (string, error) {
	return r.store.Create(ctx, Collection, trip)
}

func (r *repository) Get(ctx context.Context, id string) (Trip, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Trip{}, ErrNotFound
		}
		return Trip{}, err
	}
	var trip Trip
	if err := doc.Decode(&trip); err != nil {
		return Trip{}, err
	}
	return trip, nil
}

func (r *repository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, Collection, id, fields)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

// List returns trips newest first, filtered by status when set.
func (r *repository) List(ctx context.Context, status Status) ([]Trip, error) {
	q := docstore.Query{OrderBy: docstore.FieldCreatedAt, Desc: true}
	if status != "" {
		q.Where = []docstore.Filter{{Field: "status", Value: string(status)}}
	}
	return r.query(ctx, q)
}

// ListByStatus returns at most limit trips of one status by departure date.
func (r *repository) ListByStatus(ctx context.Context, status Status, limit int) ([]Trip, error) {
	q := docstore.Where("status", string(status))
	q.OrderBy = "departureDate"
	q.Limit = limit
	return r.query(ctx, q)
}

func (r *repository) query(ctx context.Context, q docstore.Query) ([]Trip, error) {
	docs, err := r.store.Query(ctx, Collection, q)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Trip](docs)
}

package jastipers

import (
	"context"
	"errors"

	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// ErrNotFound indicates a missing directory record.
var ErrNotFound = docstore.ErrNotFound

// Repository persists directory records.
type Repository interface {
	Create(ctx context.Context, record Jastiper) (string, error)
	Get(ctx context.Context, id string) (Jastiper, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, params SearchParams) ([]Jastiper, error)
}

type repository struct {
	store docstore.Store
}

// NewRepository constructs a document store backed repository.
func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func (r *repository) Create(ctx context.Context, record Jastiper) (string, error) {
	return r.store.Create(ctx, Collection, record)
}

func (r *repository) Get(ctx context.Context, id string) (Jastiper, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Jastiper{}, ErrNotFound
		}
		return Jastiper{}, err
	}
	var j Jastiper
	if err := doc.Decode(&j); err != nil {
		return Jastiper{}, err
	}
	return j, nil
}

func (r *repository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, Collection, id, fields)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

// Find applies the verification filter and the date or name ordering. The
// text match and the rating or order sorts are left to the caller.
func (r *repository) Find(ctx context.Context, params SearchParams) ([]Jastiper, error) {
	var q docstore.Query
	if params.IsVerified != nil {
		q.Where = append(q.Where, docstore.Filter{Field: "isVerified", Value: *params.IsVerified})
	}
	switch params.SortBy {
	case SortOldest:
		q.OrderBy = docstore.FieldCreatedAt
	case SortName:
		q.OrderBy = "name"
	default:
		q.OrderBy = docstore.FieldCreatedAt
		q.Desc = true
	}
	docs, err := r.store.Query(ctx, Collection, q)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Jastiper](docs)
}

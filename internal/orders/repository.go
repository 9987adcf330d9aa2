package orders

import (
	"context"
	"errors"

	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// ErrNotFound indicates a missing item.
var ErrNotFound = docstore.ErrNotFound

// Repository persists order items.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, item Item) (string, error)
	Get(ctx context.Context, id string) (Item, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	ListByPeriod(ctx context.Context, periodID string) ([]Item, error)
}

type repository struct {
	store docstore.Store
}

// NewRepository constructs a document store backed repository.
func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return r.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Store) error {
		return fn(ctx, &repository{store: tx})
	})
}

func (r *repository) Create(ctx context.Context, item Item) (string, error) {
	return r.store.Create(ctx, Collection, item)
}

func (r *repository) Get(ctx context.Context, id string) (Item, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	var item Item
	if err := doc.Decode(&item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, Collection, id, fields)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

// ListByPeriod returns every item of the period, oldest first.
func (r *repository) ListByPeriod(ctx context.Context, periodID string) ([]Item, error) {
	q := docstore.Where("periodId", periodID)
	q.OrderBy = docstore.FieldCreatedAt
	docs, err := r.store.Query(ctx, Collection, q)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Item](docs)
}

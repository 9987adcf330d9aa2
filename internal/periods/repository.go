package periods

import (
	"context"

	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// ErrNotFound indicates a missing period.
var ErrNotFound = docstore.ErrNotFound

// Repository persists periods.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, period Period) (string, error)
	Get(ctx context.Context, id string) (Period, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Period, error)
	ListActive(ctx context.Context) ([]Period, error)
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

func (r *repository) Create(ctx context.Context, period Period) (string, error) {
	period.Items = nil
	return r.store.Create(ctx, Collection, period)
}

func (r *repository) Get(ctx context.Context, id string) (Period, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return Period{}, err
	}
	var period Period
	if err := doc.Decode(&period); err != nil {
		return Period{}, err
	}
	return period, nil
}

func (r *repository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, Collection, id, fields)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

// List returns every period, newest start date first.
func (r *repository) List(ctx context.Context) ([]Period, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Query{OrderBy: "startDate", Desc: true})
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Period](docs)
}

func (r *repository) ListActive(ctx context.Context) ([]Period, error) {
	q := docstore.Where("isActive", true)
	q.OrderBy = "startDate"
	q.Desc = true
	docs, err := r.store.Query(ctx, Collection, q)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Period](docs)
}

package monthly

import (
	"context"
	"errors"

	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// ErrNotFound indicates a missing monthly expense.
var ErrNotFound = docstore.ErrNotFound

// Repository persists monthly expenses.
type Repository interface {
	Create(ctx context.Context, expense Expense) (string, error)
	Get(ctx context.Context, id string) (Expense, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	ListByMonth(ctx context.Context, monthKey string) ([]Expense, error)
}

type repository struct {
	store docstore.Store
}

// NewRepository constructs a document store backed repository.
func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func (r *repository) Create(ctx context.Context, expense Expense) (string, error) {
	return r.store.Create(ctx, Collection, expense)
}

func (r *repository) Get(ctx context.Context, id string) (Expense, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Expense{}, ErrNotFound
		}
		return Expense{}, err
	}
	var expense Expense
	if err := doc.Decode(&expense); err != nil {
		return Expense{}, err
	}
	return expense, nil
}

func (r *repository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, Collection, id, fields)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

func (r *repository) ListByMonth(ctx context.Context, monthKey string) ([]Expense, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Where("month", monthKey))
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Expense](docs)
}

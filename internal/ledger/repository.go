package ledger

import (
	"context"

	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// ErrNotFound indicates a missing entry.
var ErrNotFound = docstore.ErrNotFound

// Repository persists ledger entries.
type Repository interface {
	CreateIncome(ctx context.Context, entry IncomeEntry) (string, error)
	GetIncome(ctx context.Context, id string) (IncomeEntry, error)
	UpdateIncome(ctx context.Context, id string, fields map[string]any) error
	DeleteIncome(ctx context.Context, id string) error
	IncomeByPeriod(ctx context.Context, periodID string) ([]IncomeEntry, error)
	AllIncome(ctx context.Context) ([]IncomeEntry, error)

	CreateExpense(ctx context.Context, entry ExpenseEntry) (string, error)
	GetExpense(ctx context.Context, id string) (ExpenseEntry, error)
	UpdateExpense(ctx context.Context, id string, fields map[string]any) error
	DeleteExpense(ctx context.Context, id string) error
	ExpensesByPeriod(ctx context.Context, periodID string) ([]ExpenseEntry, error)
	AllExpenses(ctx context.Context) ([]ExpenseEntry, error)
}

type repository struct {
	store docstore.Store
}

// NewRepository constructs a document store backed repository.
func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func (r *repository) CreateIncome(ctx context.Context, entry IncomeEntry) (string, error) {
	return r.store.Create(ctx, IncomeCollection, entry)
}

func (r *repository) GetIncome(ctx context.Context, id string) (IncomeEntry, error) {
	return get[IncomeEntry](ctx, r.store, IncomeCollection, id)
}

func (r *repository) UpdateIncome(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, IncomeCollection, id, fields)
}

func (r *repository) DeleteIncome(ctx context.Context, id string) error {
	return r.store.Delete(ctx, IncomeCollection, id)
}

func (r *repository) IncomeByPeriod(ctx context.Context, periodID string) ([]IncomeEntry, error) {
	return list[IncomeEntry](ctx, r.store, IncomeCollection, docstore.Where("periodId", periodID))
}

func (r *repository) AllIncome(ctx context.Context) ([]IncomeEntry, error) {
	return list[IncomeEntry](ctx, r.store, IncomeCollection, docstore.Query{})
}

func (r *repository) CreateExpense(ctx context.Context, entry ExpenseEntry) (string, error) {
	return r.store.Create(ctx, ExpenseCollection, entry)
}

func (r *repository) GetExpense(ctx context.Context, id string) (ExpenseEntry, error) {
	return get[ExpenseEntry](ctx, r.store, ExpenseCollection, id)
}

func (r *repository) UpdateExpense(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, ExpenseCollection, id, fields)
}

func (r *repository) DeleteExpense(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ExpenseCollection, id)
}

func (r *repository) ExpensesByPeriod(ctx context.Context, periodID string) ([]ExpenseEntry, error) {
	return list[ExpenseEntry](ctx, r.store, ExpenseCollection, docstore.Where("periodId", periodID))
}

func (r *repository) AllExpenses(ctx context.Context) ([]ExpenseEntry, error) {
	return list[ExpenseEntry](ctx, r.store, ExpenseCollection, docstore.Query{})
}

func get[T any](ctx context.Context, store docstore.Store, collection, id string) (T, error) {
	var out T
	doc, err := store.Get(ctx, collection, id)
	if err != nil {
		return out, err
	}
	if err := doc.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func list[T any](ctx context.Context, store docstore.Store, collection string, q docstore.Query) ([]T, error) {
	docs, err := store.Query(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[T](docs)
}

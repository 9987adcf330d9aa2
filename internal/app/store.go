package app

import (
	"context"
	"log/slog"

	"github.com/jastipku/jastipku/internal/platform/db"
	"github.com/jastipku/jastipku/internal/platform/docstore"
)

// OpenStore returns the document store selected by DOCSTORE_DRIVER and a
// function releasing its resources.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (docstore.Store, func(), error) {
	if cfg.DocstoreDriver == "memory" {
		logger.Warn("using in-memory document store, data is lost on restart")
		return docstore.NewMemory(), func() {}, nil
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, err
	}
	store := docstore.NewPostgres(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

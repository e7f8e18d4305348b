package storage

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/storage/badger"
	"github.com/ternarybob/stackscout/internal/storage/jobindex"
	"github.com/ternarybob/stackscout/internal/storage/postgres"
)

// Manager is the Badger storage manager with the configured saved-job backend
type Manager struct {
	*badger.Manager
	searcher interfaces.SavedJobSearcher
}

// NewStorageManager opens Badger, swaps saved jobs to Postgres when a DSN is
// configured and wraps them in a bleve index when an index path is set
func NewStorageManager(ctx context.Context, logger arbor.ILogger, config *common.Config) (*Manager, error) {
	base, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, err
	}
	m := &Manager{Manager: base}

	if dsn := config.Storage.Postgres.DSN; dsn != "" {
		pg, err := postgres.NewSavedJobStorage(ctx, dsn, logger)
		if err != nil {
			_ = base.Close()
			return nil, err
		}
		m.SetSavedJobStorage(pg)
		logger.Info().Msg("Saved jobs stored in Postgres")
	}

	if path := config.Storage.Bleve.Path; path != "" {
		indexed, err := jobindex.NewIndexedStorage(ctx, m.SavedJobStorage(), path, logger)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		m.SetSavedJobStorage(indexed)
		m.searcher = indexed
		logger.Info().Str("path", path).Msg("Saved job full-text index enabled")
	}

	return m, nil
}

// SavedJobSearcher returns the full-text searcher, or nil when indexing is disabled
func (m *Manager) SavedJobSearcher() interfaces.SavedJobSearcher {
	return m.searcher
}

var _ interfaces.StorageManager = (*Manager)(nil)

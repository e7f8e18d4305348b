package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	vector   *VectorStorage
	savedJob interfaces.SavedJobStorage
	jobRun   *JobRunStorage
	logger   arbor.ILogger
}

// NewManager opens the database and builds every Badger-backed store
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		vector:   NewVectorStorage(db, logger),
		savedJob: NewSavedJobStorage(db, logger),
		jobRun:   NewJobRunStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// DB returns the shared database connection
func (m *Manager) DB() *BadgerDB {
	return m.db
}

func (m *Manager) VectorStorage() interfaces.VectorStorage {
	return m.vector
}

func (m *Manager) SavedJobStorage() interfaces.SavedJobStorage {
	return m.savedJob
}

// SetSavedJobStorage replaces the saved-job backend (Postgres, bleve-indexed)
func (m *Manager) SetSavedJobStorage(s interfaces.SavedJobStorage) {
	m.savedJob = s
}

func (m *Manager) JobRunStorage() interfaces.JobRunStorage {
	return m.jobRun
}

// Close closes the saved-job backend when it is not Badger, then the database
func (m *Manager) Close() error {
	if _, ok := m.savedJob.(*SavedJobStorage); !ok && m.savedJob != nil {
		if err := m.savedJob.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close saved job storage")
		}
	}
	return m.db.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)

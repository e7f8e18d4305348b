package badger

import (
	"errors"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/stackscout/internal/common"
)

// BadgerDB owns the badgerhold store shared by the vector, saved-job and
// job-run stores.
type BadgerDB struct {
	store  *badgerhold.Store
	path   string
	logger arbor.ILogger
}

// NewBadgerDB opens (and with reset_on_startup, first wipes) the database directory
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config.Path == "" {
		return nil, errors.New("storage.badger.path is empty")
	}

	if config.ResetOnStartup {
		wipeDir(logger, config.Path)
	}

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", config.Path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	// open and close are logged through arbor instead
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", config.Path, err)
	}

	logger.Debug().Str("path", config.Path).Bool("reset", config.ResetOnStartup).Msg("Badger database opened")

	return &BadgerDB{
		store:  store,
		path:   config.Path,
		logger: logger,
	}, nil
}

func wipeDir(logger arbor.ILogger, dir string) {
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn().Err(err).Str("path", dir).Msg("Could not wipe badger directory")
		return
	}
	logger.Debug().Str("path", dir).Msg("Wiped badger directory")
}

func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Path is the directory holding both the LSM tree and the value log
func (b *BadgerDB) Path() string {
	return b.path
}

// Close is safe to call more than once
func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}
	err := b.store.Close()
	b.store = nil
	return err
}

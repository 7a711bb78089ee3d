package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/actionsum/appctl/internal/models"
)

// Several appctl commands may journal at once; WAL lets readers run beside
// the writer and the busy timeout queues concurrent writers.
const journalPragmas = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// journalModels are migrated by Initialize.
var journalModels = []interface{}{
	&models.SessionEvent{},
	&models.ErrorLog{},
}

// DB is the journal database.
type DB struct {
	*gorm.DB
	path string
}

// DefaultPath returns ~/.config/appctl/appctl.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".config", "appctl", "appctl.db"), nil
}

// Connect opens the journal at path, DefaultPath when empty, creating its
// directory as needed. Call Initialize before first use.
func Connect(path string) (*DB, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create journal directory")
	}

	gdb, err := gorm.Open(sqlite.Open(path+journalPragmas), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open journal %s", path)
	}
	return &DB{DB: gdb, path: path}, nil
}

// Path returns the journal file.
func (db *DB) Path() string {
	return db.path
}

// Initialize creates or migrates the journal tables.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(journalModels...); err != nil {
		return errors.Wrap(err, "failed to migrate journal schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

// store/store.go
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/tasklight/tasklight-core/pkg/config"
)

// Store owns the database handle. Connection pooling is the driver's
// concern; callers check out one connection per operation call.
type Store struct {
	db  *sql.DB
	dsn string
}

// Open dials the database described by the write-once connection
// configuration. An uninitialized handle is a fatal startup error.
func Open(cs *config.ConnString) (*Store, error) {
	dsn, err := cs.Get()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetConnMaxIdleTime(30 * time.Second)
	return &Store{db: db, dsn: dsn}, nil
}

// Migrate applies file-based migrations (the operation functions live
// there). A fully up-to-date directory is not an error.
func (s *Store) Migrate(path string) error {
	if path == "" {
		return nil
	}
	m, err := migrate.New("file://"+path, s.dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

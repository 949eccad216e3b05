package kv

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	key     TEXT PRIMARY KEY,
	value   BLOB NOT NULL,
	version INTEGER NOT NULL
)`

type record struct {
	Key     string `db:"key"`
	Value   []byte `db:"value"`
	Version int64  `db:"version"`
}

// SQLite stores records in a single table. Every write bumps the record
// version; a poller compares versions to see writes from other processes.
type SQLite struct {
	db  *sqlx.DB
	log *zap.SugaredLogger

	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mux      sync.Mutex
	versions map[string]int64
	watchers
}

func NewSQLite(dsn string, pollInterval time.Duration, log *zap.SugaredLogger) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SQLite{
		db:       db,
		log:      log,
		interval: pollInterval,
		ctx:      ctx,
		cancel:   cancel,
		versions: make(map[string]int64),
	}

	if err := s.snapshot(ctx); err != nil {
		cancel()
		_ = db.Close()
		return nil, err
	}

	if pollInterval > 0 {
		s.wg.Add(1)
		go s.poll()
	}

	return s, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var r record
	err := s.db.GetContext(ctx, &r, "SELECT key, value, version FROM records WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get record %q", key)
	}
	return r.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	s.mux.Lock()
	var version int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO records (key, value, version) VALUES (?, ?, 1)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = records.version + 1
		RETURNING version`, key, value).Scan(&version)
	if err != nil {
		s.mux.Unlock()
		return errors.Wrapf(err, "failed to set record %q", key)
	}
	s.versions[key] = version
	s.mux.Unlock()

	s.fire(key)
	return nil
}

func (s *SQLite) Watch(fn WatchFunc) {
	s.add(fn)
}

func (s *SQLite) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.db.Close()
}

func (s *SQLite) snapshot(ctx context.Context) error {
	_, err := s.changed(ctx)
	return err
}

// changed returns the keys whose version is newer than the last one seen.
func (s *SQLite) changed(ctx context.Context) ([]string, error) {
	var rows []record
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, version FROM records"); err != nil {
		return nil, errors.Wrap(err, "failed to list record versions")
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	var keys []string
	for _, r := range rows {
		if r.Version > s.versions[r.Key] {
			s.versions[r.Key] = r.Version
			keys = append(keys, r.Key)
		}
	}
	return keys, nil
}

func (s *SQLite) poll() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			keys, err := s.changed(s.ctx)
			if err != nil {
				if s.ctx.Err() == nil {
					s.log.Warnf("failed to poll changes: %v", err)
				}
				continue
			}
			for _, key := range keys {
				s.log.Debugf("record %q changed by another process", key)
				s.fire(key)
			}
		}
	}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver (cgo)
	_ "modernc.org/sqlite"          // "sqlite" driver (pure Go)

	"mercator-hq/flowc/pkg/config"
	"mercator-hq/flowc/pkg/telemetry/logging"
)

// Store operations reported to observers.
const (
	OpSave  = "save"
	OpGet   = "get"
	OpList  = "list"
	OpPrune = "prune"
)

// Observer receives store measurements. *metrics.Collector satisfies it.
type Observer interface {
	ObserveStore(op string, err error, d time.Duration)
	ObservePruned(n int64)
}

type nopObserver struct{}

func (nopObserver) ObserveStore(string, error, time.Duration) {}
func (nopObserver) ObservePruned(int64)                       {}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.With("component", "store")
		}
	}
}

// WithObserver sets the hooks that receive store measurements.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// ListOptions filters List results.
type ListOptions struct {
	Path   string // Exact source path; empty lists every path
	Status string // One of the flow.Status* values; empty lists every status
	Limit  int    // Zero means unlimited
}

// Store records compiled graphs in SQLite.
type Store struct {
	db       *sql.DB
	driver   string
	path     string
	logger   *logging.Logger
	observer Observer

	closeOnce sync.Once
}

// Open opens (and creates if needed) the artifact database described by cfg.
func Open(cfg *config.StoreConfig, opts ...Option) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DefaultStoreDriver
	}
	path := cfg.Path
	if path == "" {
		path = config.DefaultStorePath
	}
	busyTimeout := cfg.BusyTimeout
	if busyTimeout == 0 {
		busyTimeout = config.DefaultStoreBusyTimeout
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, NewStorageError(driver, "open", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, NewStorageError(driver, "open", err)
	}

	// SQLite only supports a single writer; pragmas are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:       db,
		driver:   driver,
		path:     path,
		logger:   logging.Discard(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initialize(busyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("artifact store opened", "driver", driver, "path", path)
	return s, nil
}

// initialize sets pragmas and creates the schema.
func (s *Store) initialize(busyTimeout time.Duration) error {
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return NewStorageError(s.driver, "set_busy_timeout", err)
	}
	if s.path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError(s.driver, "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(s.driver, "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().UnixMilli()); err != nil {
		return NewStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return NewStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Save records an artifact.
func (s *Store) Save(ctx context.Context, a *Artifact) (err error) {
	defer s.observe(OpSave, time.Now(), &err)

	if a == nil || a.ID == "" {
		return fmt.Errorf("artifact ID cannot be empty")
	}

	var diagnostics, graphJSON any
	if len(a.Diagnostics) > 0 {
		data, err := json.Marshal(a.Diagnostics)
		if err != nil {
			return fmt.Errorf("failed to marshal diagnostics: %w", err)
		}
		diagnostics = string(data)
	}
	if len(a.Graph) > 0 {
		graphJSON = string(a.Graph)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts (
			id, run_id, path, status, version, revision, graph,
			nodes, static_nodes, computed_nodes, depth,
			diagnostics, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RunID, a.Path, a.Status, a.Version, a.Revision, graphJSON,
		a.Nodes, a.Static, a.Computed, a.Depth,
		diagnostics, a.Duration.Milliseconds(), a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return NewStorageError(s.driver, OpSave, err)
	}

	s.logger.Debug("artifact saved", "id", a.ID, "path", a.Path, "status", a.Status)
	return nil
}

const selectArtifact = `
	SELECT id, run_id, path, status, version, revision, graph,
		nodes, static_nodes, computed_nodes, depth,
		diagnostics, duration_ms, created_at
	FROM artifacts`

// Get returns the artifact with the given ID. A unique ID prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (a *Artifact, err error) {
	defer s.observe(OpGet, time.Now(), &err)

	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, selectArtifact+` WHERE id LIKE ? ESCAPE '\' LIMIT 2`,
		escapeLike(id)+"%")
	if err != nil {
		return nil, NewStorageError(s.driver, OpGet, err)
	}
	defer rows.Close()

	artifacts, err := s.scanAll(rows)
	if err != nil {
		return nil, err
	}
	switch len(artifacts) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return artifacts[0], nil
	}
	for _, candidate := range artifacts {
		if candidate.ID == id {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("artifact ID prefix %q is ambiguous", id)
}

// List returns artifacts, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) (artifacts []*Artifact, err error) {
	defer s.observe(OpList, time.Now(), &err)

	query := selectArtifact
	var where []string
	var args []any
	if opts.Path != "" {
		where = append(where, "path = ?")
		args = append(args, opts.Path)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(s.driver, OpList, err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

// Prune deletes artifacts older than maxAge and keeps at most maxPerPath
// artifacts for each source path. Zero disables either limit.
// It returns the number of deleted artifacts.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration, maxPerPath int) (total int64, err error) {
	defer s.observe(OpPrune, time.Now(), &err)

	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge).UnixMilli()
		res, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE created_at < ?`, cutoff)
		if err != nil {
			return total, NewStorageError(s.driver, OpPrune, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if maxPerPath > 0 {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM artifacts WHERE id IN (
				SELECT id FROM (
					SELECT id, ROW_NUMBER() OVER (
						PARTITION BY path ORDER BY created_at DESC, rowid DESC
					) AS rn
					FROM artifacts
				) WHERE rn > ?
			)`, maxPerPath)
		if err != nil {
			return total, NewStorageError(s.driver, OpPrune, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	s.observer.ObservePruned(total)
	if total > 0 {
		s.logger.Info("pruned artifacts", "deleted_count", total, "max_age", maxAge, "max_per_path", maxPerPath)
	}
	return total, nil
}

// Count returns the number of stored artifacts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, NewStorageError(s.driver, "count", err)
	}
	return n, nil
}

// Ping checks that the database is reachable. It matches health.CheckFunc.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}

func (s *Store) observe(op string, start time.Time, err *error) {
	var e error
	if err != nil && !errors.Is(*err, ErrNotFound) {
		e = *err
	}
	s.observer.ObserveStore(op, e, time.Since(start))
}

func (s *Store) scanAll(rows *sql.Rows) ([]*Artifact, error) {
	var out []*Artifact
	for rows.Next() {
		var (
			a                        Artifact
			version, graphJSON, diag sql.NullString
			durationMs, createdAt    int64
		)
		err := rows.Scan(&a.ID, &a.RunID, &a.Path, &a.Status, &version, &a.Revision, &graphJSON,
			&a.Nodes, &a.Static, &a.Computed, &a.Depth,
			&diag, &durationMs, &createdAt)
		if err != nil {
			return nil, NewStorageError(s.driver, "scan", err)
		}
		a.Version = version.String
		if graphJSON.Valid {
			a.Graph = json.RawMessage(graphJSON.String)
		}
		if diag.Valid && diag.String != "" {
			if err := json.Unmarshal([]byte(diag.String), &a.Diagnostics); err != nil {
				return nil, NewStorageError(s.driver, "scan", fmt.Errorf("invalid diagnostics: %w", err))
			}
		}
		a.Duration = time.Duration(durationMs) * time.Millisecond
		a.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.driver, "scan", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Package postgres implements the document store on PostgreSQL. Documents
// live in a single table keyed by (collection, id) with a revision counter;
// transactions are optimistic and re-execute when a revision check fails on
// commit. Committed writes are fanned out to watchers via LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/topi314/gomigrate"
	"github.com/topi314/gomigrate/drivers/postgres"

	"github.com/campushq/unievents/server/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

const maxRetries = 10

type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n Host: %s\n Port: %d\n Username: %s\n Password: %s\n Database: %s\n SSLMode: %s",
		c.Host,
		c.Port,
		c.Username,
		strings.Repeat("*", len(c.Password)),
		c.Database,
		c.SSLMode,
	)
}

func (c Config) DataSourceName() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, sslMode)
}

func New(cfg Config) (*Store, error) {
	dbx, err := sqlx.Connect("pgx", cfg.DataSourceName())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = gomigrate.Migrate(ctx, dbx, postgres.New, migrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Store{
		db:  dbx,
		cfg: cfg,
	}
	s.listener = newListener(cfg, s)
	go s.listener.run()

	return s, nil
}

type Store struct {
	db       *sqlx.DB
	cfg      Config
	listener *listener
}

type row struct {
	Collection string `db:"collection"`
	ID         string `db:"id"`
	Rev        int64  `db:"rev"`
	Data       []byte `db:"data"`
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Doc, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `
		SELECT collection, id, rev, data
		FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Doc{}, store.ErrNotFound
		}
		return store.Doc{}, fmt.Errorf("failed to get document: %w", err)
	}
	return store.Doc{ID: r.ID, Rev: r.Rev, Data: r.Data}, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Doc, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		SELECT collection, id, rev, data
		FROM documents
		WHERE collection = $1
		ORDER BY id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]store.Doc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, store.Doc{ID: r.ID, Rev: r.Rev, Data: r.Data})
	}
	return docs, nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := &tx{s: s, ctx: ctx, reads: map[docKey]int64{}}
		if err := fn(t); err != nil {
			return err
		}

		ok, err := s.commit(ctx, t)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return store.ErrConflict
}

func (s *Store) Watch(ctx context.Context, collection string) (*store.Subscription, error) {
	return s.listener.subscribe(collection)
}

func (s *Store) Close() error {
	s.listener.close()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

type docKey struct {
	collection string
	id         string
}

type write struct {
	key    docKey
	data   []byte
	create bool
	delete bool
}

type tx struct {
	s      *Store
	ctx    context.Context
	reads  map[docKey]int64
	writes []write
}

func (t *tx) Get(collection string, id string) (store.Doc, error) {
	if len(t.writes) > 0 {
		return store.Doc{}, store.ErrReadAfterWrite
	}

	key := docKey{collection, id}
	doc, err := t.s.Get(t.ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			t.reads[key] = 0
		}
		return store.Doc{}, err
	}
	t.reads[key] = doc.Rev
	return doc, nil
}

func (t *tx) List(collection string) ([]store.Doc, error) {
	if len(t.writes) > 0 {
		return nil, store.ErrReadAfterWrite
	}

	docs, err := t.s.List(t.ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		t.reads[docKey{collection, doc.ID}] = doc.Rev
	}
	return docs, nil
}

func (t *tx) Create(collection string, id string, data []byte) error {
	key := docKey{collection, id}
	if _, ok := t.reads[key]; !ok {
		if _, err := t.s.Get(t.ctx, collection, id); err == nil {
			return fmt.Errorf("create %s/%s: %w", collection, id, store.ErrExists)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		t.reads[key] = 0
	} else if t.reads[key] != 0 {
		return fmt.Errorf("create %s/%s: %w", collection, id, store.ErrExists)
	}
	t.writes = append(t.writes, write{key: key, data: slices.Clone(data), create: true})
	return nil
}

func (t *tx) Put(collection string, id string, data []byte) error {
	t.writes = append(t.writes, write{key: docKey{collection, id}, data: slices.Clone(data)})
	return nil
}

func (t *tx) Delete(collection string, id string) error {
	t.writes = append(t.writes, write{key: docKey{collection, id}, delete: true})
	return nil
}

// commit re-checks every recorded revision inside one SQL transaction and
// applies the buffered writes. ok=false means a concurrent writer won and
// the caller should retry with fresh reads.
func (s *Store) commit(ctx context.Context, t *tx) (bool, error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	for key, rev := range t.reads {
		var current int64
		err = sqlTx.GetContext(ctx, &current, `
			SELECT rev FROM documents
			WHERE collection = $1 AND id = $2
			FOR UPDATE
		`, key.collection, key.id)
		if errors.Is(err, sql.ErrNoRows) {
			if rev != 0 {
				return false, nil
			}
			continue
		} else if err != nil {
			return false, fmt.Errorf("failed to check document revision: %w", err)
		}
		if current != rev {
			return false, nil
		}
	}

	for _, w := range t.writes {
		if w.delete {
			if _, err = sqlTx.ExecContext(ctx, `
				DELETE FROM documents
				WHERE collection = $1 AND id = $2
			`, w.key.collection, w.key.id); err != nil {
				return false, fmt.Errorf("failed to delete document: %w", err)
			}
			continue
		}

		if w.create {
			// A rev-0 read takes no row lock, so a concurrent create of the
			// same id can slip past the revision checks. A plain INSERT makes
			// the unique index the arbiter: losing the race retries the
			// transaction, which then observes the winner's document.
			if _, err = sqlTx.ExecContext(ctx, `
				INSERT INTO documents (collection, id, rev, data, updated_at)
				VALUES ($1, $2, 1, $3, now())
			`, w.key.collection, w.key.id, w.data); err != nil {
				if isUniqueViolation(err) {
					return false, nil
				}
				return false, fmt.Errorf("failed to create document: %w", err)
			}
			continue
		}

		if _, err = sqlTx.ExecContext(ctx, `
			INSERT INTO documents (collection, id, rev, data, updated_at)
			VALUES ($1, $2, 1, $3, now())
			ON CONFLICT (collection, id)
			DO UPDATE SET rev = documents.rev + 1, data = EXCLUDED.data, updated_at = now()
		`, w.key.collection, w.key.id, w.data); err != nil {
			return false, fmt.Errorf("failed to write document: %w", err)
		}
	}

	if err = sqlTx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// isUniqueViolation reports whether err is a unique index violation (SQLSTATE
// 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

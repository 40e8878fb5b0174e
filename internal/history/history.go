package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.

	"papersum/internal/domain"
)

// Store keeps completed summaries for the recent-summaries panel. It is
// write-only from the pipeline and is never consulted before a fetch or a
// completion call, so it is not a result cache.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func New(ctx context.Context, dbPath string, log *slog.Logger) (*Store, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	dbInstance, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("create DB instance: %w", err)
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create source instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	if err = m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		log.InfoContext(ctx, "No migrations to apply",
			"dbPath", dbPath)
	} else {
		log.InfoContext(ctx, "DB is migrated",
			"dbPath", dbPath)
	}

	return &Store{db: dbFile, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one completed summary. CreatedAt defaults to now when unset.
func (s *Store) Save(ctx context.Context, rec domain.SummaryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := "insert into summaries (url, audience, length, summary, created_at) values (?, ?, ?, ?, ?)"

	_, err := s.db.ExecContext(ctx, query,
		rec.URL, string(rec.Audience), rec.Length, rec.Summary, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	return nil
}

// Recent returns up to limit summaries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.SummaryRecord, error) {
	query := "select id, url, audience, length, summary, created_at from summaries order by id desc limit ?"

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.log.WarnContext(ctx, "Failed to close rows",
				"error", closeErr)
		}
	}()

	var records []domain.SummaryRecord
	for rows.Next() {
		var rec domain.SummaryRecord
		var audience string

		if err = rows.Scan(
			&rec.ID, &rec.URL, &audience, &rec.Length, &rec.Summary, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}

		rec.Audience = domain.Audience(audience)
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return records, nil
}

// PruneOlderThan deletes summaries created before cutoff and reports how many
// rows went away.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "delete from summaries where created_at < ?"

	res, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete summaries: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted summaries: %w", err)
	}

	return affected, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"stocktake-dashboard/internal/models"
)

// imageSeparator joins image URLs into a single column value.
const imageSeparator = ";"

// Store defines the persistence operations for check events.
type Store interface {
	InsertEvents(ctx context.Context, events []models.CheckEvent) (int64, error)
	ListEvents(ctx context.Context) ([]models.CheckEvent, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertEvent *sql.Stmt
}

// Open opens (or creates) the database at path, runs migrations, and
// returns a ready store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewSQLiteStore(db)
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error
	s.insertEvent, err = s.db.Prepare(`
		INSERT INTO check_events (product_code, system_id, checked_by, checked_at,
			event_date, point_of_sale, teams, notes, supplier_type, client_name, images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

// InsertEvents writes a batch of events in a single transaction and
// returns the number inserted.
func (s *SQLiteStore) InsertEvents(ctx context.Context, events []models.CheckEvent) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt := tx.StmtContext(ctx, s.insertEvent)
	var inserted int64
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.ProductCode, e.SystemID, e.CheckedBy, e.CheckedAt,
			e.Date, e.PointOfSale, e.Teams, e.Notes,
			e.SupplierType, e.ClientName, strings.Join(e.Images, imageSeparator),
		); err != nil {
			return 0, fmt.Errorf("insert event: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListEvents returns all events in insertion order.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]models.CheckEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_code, system_id, checked_by, checked_at,
		       event_date, point_of_sale, teams, notes, supplier_type, client_name, images
		FROM check_events
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []models.CheckEvent
	for rows.Next() {
		var e models.CheckEvent
		var images string
		if err := rows.Scan(
			&e.ProductCode, &e.SystemID, &e.CheckedBy, &e.CheckedAt,
			&e.Date, &e.PointOfSale, &e.Teams, &e.Notes,
			&e.SupplierType, &e.ClientName, &images,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if images != "" {
			e.Images = strings.Split(images, imageSeparator)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		events = []models.CheckEvent{}
	}
	return events, nil
}

// Count returns the total number of stored events.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM check_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close releases prepared statements and the underlying database.
func (s *SQLiteStore) Close() error {
	if s.insertEvent != nil {
		s.insertEvent.Close()
	}
	return s.db.Close()
}

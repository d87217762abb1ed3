package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanschultz/koni/internal/app"
	"github.com/evanschultz/koni/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// busyTimeoutMillis bounds how long a writer waits on another process holding the file lock.
const busyTimeoutMillis = 5000

// Repository is the note store backed by one embedded sqlite database.
type Repository struct {
	db *sql.DB
}

// Open opens the database file at path and ensures the schema exists.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMillis)
	return openDSN(dsn)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	return openDSN("file::memory:")
}

// openDSN opens one single-connection handle and runs schema setup.
func openDSN(dsn string) (*Repository, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", app.ErrStore, err)
	}
	// One connection: statements on a handle are serialized, and an in-memory database lives as long as it does.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	repo := &Repository{db: db}
	if err := repo.Initialize(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Initialize creates the notes table when missing.
func (r *Repository) Initialize(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL CHECK (trim(title) <> ''),
			body TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w: %w", app.ErrStore, err)
		}
	}
	return nil
}

// ListNotes returns all notes ordered by id.
func (r *Repository) ListNotes(ctx context.Context) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, body FROM notes ORDER BY id ASC`)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	defer rows.Close()

	out := []domain.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storeErr("scan note", err)
		}
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list notes", err)
	}
	return out, nil
}

// CreateNotes inserts every note inside one transaction; any failure leaves none of them visible.
func (r *Repository) CreateNotes(ctx context.Context, notes []domain.Note) (err error) {
	if len(notes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin create", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO notes(title, body) VALUES(?, ?)`)
	if err != nil {
		return storeErr("prepare insert", err)
	}
	defer stmt.Close()

	for idx, note := range notes {
		if _, err = stmt.ExecContext(ctx, note.Title, note.Body); err != nil {
			return storeErr(fmt.Sprintf("insert note %d", idx), err)
		}
	}
	if err = tx.Commit(); err != nil {
		return storeErr("commit create", err)
	}
	return nil
}

// GetNote fetches one note by id.
func (r *Repository) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	return getNoteByID(ctx, r.db, id)
}

// DeleteNote removes one note and returns the row as it was before deletion.
func (r *Repository) DeleteNote(ctx context.Context, id int64) (note domain.Note, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Note{}, storeErr("begin delete", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	note, err = getNoteByID(ctx, tx, id)
	if err != nil {
		return domain.Note{}, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return domain.Note{}, storeErr("delete note", err)
	}
	if err = translateNoRows(res); err != nil {
		return domain.Note{}, err
	}
	if err = tx.Commit(); err != nil {
		return domain.Note{}, storeErr("commit delete", err)
	}
	return note, nil
}

// UpdateNote is reserved for in-place editing, which is not implemented.
// It performs no work and reports success so callers need no special case.
func (r *Repository) UpdateNote(context.Context, int64, domain.Note) error {
	return nil
}

// queryRower is the subset of *sql.DB and *sql.Tx used for single-row reads.
type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// getNoteByID returns one note by id.
func getNoteByID(ctx context.Context, q queryRower, id int64) (domain.Note, error) {
	row := q.QueryRowContext(ctx, `SELECT id, title, body FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Note{}, app.ErrNotFound
		}
		return domain.Note{}, storeErr("get note", err)
	}
	return note, nil
}

// scanNote decodes one notes row.
func scanNote(s scanner) (domain.Note, error) {
	var note domain.Note
	if err := s.Scan(&note.ID, &note.Title, &note.Body); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

// translateNoRows maps a zero-row write to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// storeErr tags a driver failure with app.ErrStore while keeping the cause inspectable.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, app.ErrStore, err)
}

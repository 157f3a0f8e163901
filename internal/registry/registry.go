// Package registry owns durable Application Records and registration-number
// issuance over a SQLite store.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dbs-admissions/admitd/internal/admission"
)

var (
	ErrPersistence = errors.New("registry: persistence failure")
	ErrNotFound    = errors.New("registry: record not found")
)

// placeholder occupies registration_number between insert and stamp; the
// stamp happens in the same transaction so it is never visible to readers.
const placeholder = "TEMP"

// Config configures one registry instance. Now is injectable so tests can
// pin the issuance year.
type Config struct {
	Path   string
	Prefix string
	Now    func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Path:   "dbs_admissions.db",
		Prefix: "DBS",
	}
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Path) == "" {
		c.Path = DefaultConfig().Path
	}
	if strings.TrimSpace(c.Prefix) == "" {
		c.Prefix = DefaultConfig().Prefix
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Registry issues unique, monotonically traceable registration numbers and
// owns the applications table. Safe for single-session use; the server
// handles one exchange per invocation.
type Registry struct {
	db     *sql.DB
	prefix string
	now    func() time.Time
}

// Open opens (creating if absent) the SQLite store at cfg.Path.
func Open(cfg Config) (*Registry, error) {
	cfg = cfg.withDefaults()
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrPersistence, cfg.Path, err)
	}
	return &Registry{db: db, prefix: cfg.Prefix, now: cfg.Now}, nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS applications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	qualifications TEXT NOT NULL,
	course TEXT NOT NULL,
	start_year INTEGER NOT NULL,
	start_month INTEGER NOT NULL,
	registration_number TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
)`

// EnsureSchema creates the applications table if absent. Idempotent; safe to
// call on every server start.
func (r *Registry) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", ErrPersistence, err)
	}
	return nil
}

// FormatRegistrationNumber renders prefix, issuance year, and store-assigned
// id as e.g. DBS-2025-000001.
func FormatRegistrationNumber(prefix string, year int, id int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, id)
}

// Persist inserts app and returns its stamped registration number. The
// number depends on the store-assigned id, so the row is inserted with a
// placeholder and stamped in place; both steps share one transaction, so a
// crash between them leaves nothing behind. The issuance year comes from the
// registry clock, not from app.StartYear.
func (r *Registry) Persist(ctx context.Context, app admission.Application) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO applications
		(name, address, qualifications, course, start_year, start_month, registration_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.Name,
		app.Address,
		app.Qualifications,
		app.Course,
		app.StartYear,
		app.StartMonth,
		placeholder,
		r.now().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert: %v", ErrPersistence, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("%w: row id: %v", ErrPersistence, err)
	}

	regNumber := FormatRegistrationNumber(r.prefix, r.now().Year(), id)
	stamped, err := tx.ExecContext(ctx,
		`UPDATE applications SET registration_number = ? WHERE id = ?`,
		regNumber, id,
	)
	if err != nil {
		return "", fmt.Errorf("%w: stamp %s: %v", ErrPersistence, regNumber, err)
	}
	n, err := stamped.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%w: stamp %s: %v", ErrPersistence, regNumber, err)
	}
	if n != 1 {
		return "", fmt.Errorf("%w: stamp %s touched %d rows", ErrPersistence, regNumber, n)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %v", ErrPersistence, err)
	}
	return regNumber, nil
}

// Get returns the record stamped with regNumber.
func (r *Registry) Get(ctx context.Context, regNumber string) (admission.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, qualifications, course, start_year, start_month, registration_number, created_at
		FROM applications WHERE registration_number = ?`, regNumber)

	var rec admission.Record
	var createdAt string
	err := row.Scan(
		&rec.ID,
		&rec.Application.Name,
		&rec.Application.Address,
		&rec.Application.Qualifications,
		&rec.Application.Course,
		&rec.Application.StartYear,
		&rec.Application.StartMonth,
		&rec.RegistrationNumber,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return admission.Record{}, fmt.Errorf("%w: %s", ErrNotFound, regNumber)
	}
	if err != nil {
		return admission.Record{}, fmt.Errorf("%w: get %s: %v", ErrPersistence, regNumber, err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return admission.Record{}, fmt.Errorf("%w: get %s: %v", ErrPersistence, regNumber, err)
	}
	return rec, nil
}

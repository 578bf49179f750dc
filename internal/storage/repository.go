package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"givetrack/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dsnPragmas lets concurrent readers proceed under WAL and makes writers wait
// on each other instead of failing with SQLITE_BUSY.
const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLiteRepository is the record store for accounts and their contributions.
// Foreign keys are declared in the schema but not enforced.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + dsnPragmas

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateAccount inserts a new account. A second account with the same email
// fails with core.ErrDuplicateEmail and leaves the first untouched; an absent
// field fails the NOT NULL constraint with core.ErrMissingField.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, s core.Signup) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password) VALUES (?, ?, ?)`,
		nullable(s.Username), nullable(s.Email), nullable(s.Password))
	if err != nil {
		switch {
		case isConstraintViolation(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE"):
			return core.Account{}, fmt.Errorf("create account %q: %w", deref(s.Email), core.ErrDuplicateEmail)
		case isConstraintViolation(err, sqlite3.SQLITE_CONSTRAINT_NOTNULL, "NOT NULL"):
			return core.Account{}, fmt.Errorf("create account: %w", core.ErrMissingField)
		}
		return core.Account{}, core.NewStorageError("insert account", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, core.NewStorageError("insert account", err)
	}

	slog.DebugContext(ctx, "Account saved to SQLite", "id", id, "email", deref(s.Email))

	return core.Account{
		ID:       id,
		Username: deref(s.Username),
		Email:    deref(s.Email),
		Password: deref(s.Password),
	}, nil
}

// FindAccountByEmail returns the account with exactly this email.
func (r *SQLiteRepository) FindAccountByEmail(ctx context.Context, email string) (core.Account, error) {
	return r.scanAccount(ctx, "find account by email",
		`SELECT id, username, email, password FROM users WHERE email = ?`, email)
}

// GetAccount returns the account with the given id.
func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return r.scanAccount(ctx, "get account",
		`SELECT id, username, email, password FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) scanAccount(ctx context.Context, op, query string, arg any) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Username, &a.Email, &a.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, fmt.Errorf("%s %v: %w", op, arg, core.ErrNotFound)
		}
		return core.Account{}, core.NewStorageError(op, err)
	}
	return a, nil
}

// InsertDonation appends a donation. accountID is not checked against users.
func (r *SQLiteRepository) InsertDonation(ctx context.Context, accountID int64, amount float64, date string) (core.Donation, error) {
	id, err := r.insert(ctx, "insert donation",
		`INSERT INTO donations (user_id, amount, date) VALUES (?, ?, ?)`,
		accountID, amount, date)
	if err != nil {
		return core.Donation{}, err
	}

	slog.DebugContext(ctx, "Donation saved to SQLite", "id", id, "user_id", accountID, "amount", amount)

	return core.Donation{ID: id, AccountID: accountID, Amount: amount, Date: date}, nil
}

func (r *SQLiteRepository) InsertVolunteerLog(ctx context.Context, accountID int64, hours float64, date string) (core.VolunteerLog, error) {
	id, err := r.insert(ctx, "insert volunteer hours",
		`INSERT INTO volunteer_hours (user_id, hours, date) VALUES (?, ?, ?)`,
		accountID, hours, date)
	if err != nil {
		return core.VolunteerLog{}, err
	}
	return core.VolunteerLog{ID: id, AccountID: accountID, Hours: hours, Date: date}, nil
}

func (r *SQLiteRepository) InsertCausePledge(ctx context.Context, accountID int64, causeName string) (core.CausePledge, error) {
	id, err := r.insert(ctx, "insert cause",
		`INSERT INTO user_causes (user_id, cause_name) VALUES (?, ?)`,
		accountID, causeName)
	if err != nil {
		return core.CausePledge{}, err
	}
	return core.CausePledge{ID: id, AccountID: accountID, CauseName: causeName}, nil
}

func (r *SQLiteRepository) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, core.NewStorageError(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError(op, err)
	}
	return id, nil
}

// SumDonations returns the lifetime donation total for an account, 0 when there are none.
func (r *SQLiteRepository) SumDonations(ctx context.Context, accountID int64) (float64, error) {
	return r.sum(ctx, "sum donations",
		`SELECT COALESCE(SUM(amount), 0) FROM donations WHERE user_id = ?`, accountID)
}

// SumVolunteerHours returns the lifetime volunteer hours for an account, 0 when there are none.
func (r *SQLiteRepository) SumVolunteerHours(ctx context.Context, accountID int64) (float64, error) {
	return r.sum(ctx, "sum volunteer hours",
		`SELECT COALESCE(SUM(hours), 0) FROM volunteer_hours WHERE user_id = ?`, accountID)
}

func (r *SQLiteRepository) sum(ctx context.Context, op, query string, accountID int64) (float64, error) {
	var total float64
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&total); err != nil {
		return 0, core.NewStorageError(op, err)
	}
	return total, nil
}

// ListCauses returns cause names pledged by an account in the order they were
// stored. Repeated pledges appear once per row.
func (r *SQLiteRepository) ListCauses(ctx context.Context, accountID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cause_name FROM user_causes WHERE user_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, core.NewStorageError("list causes", err)
	}
	defer rows.Close()

	causes := []string{}
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, core.NewStorageError("scan cause", err)
		}
		causes = append(causes, name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list causes", err)
	}

	return causes, nil
}

// isConstraintViolation matches the extended result code, or the primary
// code plus message when extended codes are off.
func isConstraintViolation(err error, extended int, marker string) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == extended ||
		(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), marker))
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

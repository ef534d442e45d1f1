package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

// LedgerState tracks whether a transaction has been exported to the
// external ledger backup.
type LedgerState int64

const (
	LedgerPending LedgerState = iota
	LedgerExported
	LedgerError
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// runMigrations brings the schema up to date from the embedded migration
// files. It uses its own connection; golang-migrate closes it on Close
// and the repository pool must outlive that.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("wrap migration connection: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser implements UserStore.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar_set, avatar)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.AvatarSet, u.Avatar)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "email", u.Email)
	return u, nil
}

// UserByEmail implements UserStore.
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, avatar_set, avatar
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UserByID implements UserStore.
func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, avatar_set, avatar
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// SetAvatar implements UserStore.
func (r *SQLiteRepository) SetAvatar(ctx context.Context, id, image string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar = ?, avatar_set = 1 WHERE id = ?`, image, id)
	if err != nil {
		return core.User{}, fmt.Errorf("set avatar: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.User{}, core.ErrNotFound
	}
	return r.UserByID(ctx, id)
}

// CreateTransaction implements TransactionStore.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, title, amount_cents, category, type, date, description, ledger_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Title, tx.Amount.Cents, tx.Category, string(tx.Type),
		tx.Date.Format(dateLayout), tx.Description, LedgerPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"title", tx.Title,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category,
		"type", tx.Type)

	return tx, nil
}

// TransactionByID implements TransactionStore.
func (r *SQLiteRepository) TransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, amount_cents, category, type, date, description
		 FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// UpdateTransaction implements TransactionStore.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, amount_cents = ?, category = ?, type = ?, date = ?, description = ?, ledger_state = ?
		 WHERE id = ?`,
		tx.Title, tx.Amount.Cents, tx.Category, string(tx.Type),
		tx.Date.Format(dateLayout), tx.Description, LedgerPending, tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Transaction{}, core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID, "user_id", tx.UserID)
	return tx, nil
}

// DeleteTransaction implements TransactionStore.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListTransactions implements TransactionStore. The date window and type
// filters are pushed into the query; ordering follows insertion order so
// aggregation tie-breaks stay deterministic.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, title, amount_cents, category, type, date, description
		 FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return txs, nil
}

// UpsertBudget implements BudgetStore.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, amount_cents, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id, category)
		 DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = CURRENT_TIMESTAMP`,
		b.UserID, b.Category, b.Amount.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"user_id", b.UserID,
		"category", b.Category,
		"amount_cents", b.Amount.Cents)
	return nil
}

// DeleteBudget implements BudgetStore.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, category string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND category = ?`, userID, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Budget deleted", "user_id", userID, "category", category)
	return nil
}

// ListBudgets implements BudgetStore.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, category, amount_cents
		 FROM budgets WHERE user_id = ? ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.UserID, &b.Category, &b.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	return budgets, nil
}

// PendingLedgerTransaction carries the minimal data the ledger worker
// needs to pick up unexported transactions.
type PendingLedgerTransaction struct {
	ID        string
	CreatedAt time.Time
}

// PendingLedgerTransactions returns transactions that still need to be
// exported to the ledger backup, oldest first.
func (r *SQLiteRepository) PendingLedgerTransactions(ctx context.Context, limit int) ([]PendingLedgerTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions
		 WHERE ledger_state = ? ORDER BY created_at LIMIT ?`,
		LedgerPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending ledger transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingLedgerTransaction
	for rows.Next() {
		var (
			p         PendingLedgerTransaction
			createdAt string
		)
		if err := rows.Scan(&p.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending ledger transaction: %w", err)
		}
		// SQLite stores CURRENT_TIMESTAMP as "2006-01-02 15:04:05" text.
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", createdAt, time.UTC); err == nil {
			p.CreatedAt = t
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending ledger transactions: %w", err)
	}

	return pending, nil
}

// MarkLedgered marks a transaction as successfully exported.
func (r *SQLiteRepository) MarkLedgered(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET ledger_state = ? WHERE id = ?`, LedgerExported, id); err != nil {
		return fmt.Errorf("mark transaction ledgered: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as ledgered", "id", id)
	return nil
}

// MarkLedgerError marks a transaction as having failed export.
func (r *SQLiteRepository) MarkLedgerError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET ledger_state = ? WHERE id = ?`, LedgerError, id); err != nil {
		return fmt.Errorf("mark transaction ledger error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with ledger error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarSet, &u.Avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		txType  string
		rawDate string
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Title, &tx.Amount.Cents, &tx.Category, &txType, &rawDate, &tx.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Type = core.TransactionType(txType)
	day, err := time.ParseInLocation(dateLayout, rawDate, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", rawDate, err)
	}
	tx.Date = core.DateOf(day)

	return tx, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finchat/internal/core"
	"finchat/internal/ledger"

	_ "modernc.org/sqlite"
)

var (
	_ ledger.Store  = (*SQLiteRepository)(nil)
	_ ledger.Pinger = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sql.DB
}

// ChatEvent is a persisted record of an answered question.
type ChatEvent struct {
	ID         string
	UserID     string
	Intent     string
	Question   string
	Answer     string
	OccurredAt time.Time
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

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
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

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReadProfile implements ledger.ProfileReader
func (r *SQLiteRepository) ReadProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	p := core.UserProfile{UserID: userID, CategoryBudgets: map[string]decimal.Decimal{}}

	var budget string
	err := r.db.QueryRowContext(ctx, `SELECT monthly_budget FROM users WHERE id = ?`, userID).Scan(&budget)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return p, nil
	case err != nil:
		return p, fmt.Errorf("get user: %w", err)
	}
	if p.MonthlyBudget, err = decimal.NewFromString(budget); err != nil {
		return p, fmt.Errorf("decode monthly budget for %s: %w", userID, err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM category_budgets WHERE user_id = ?`, userID)
	if err != nil {
		return p, fmt.Errorf("get category budgets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return p, fmt.Errorf("scan category budget: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return p, fmt.Errorf("decode budget for category %s: %w", category, err)
		}
		p.CategoryBudgets[category] = d
	}
	return p, rows.Err()
}

// ListTransactions implements ledger.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, w core.Window) ([]core.Transaction, error) {
	query := `SELECT amount, occurred_at_ns, COALESCE(category, '') FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if !w.IsZero() {
		query += ` AND occurred_at_ns >= ? AND occurred_at_ns < ?`
		args = append(args, w.Start.UnixNano(), w.End.UnixNano())
	}
	query += ` ORDER BY occurred_at_ns, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			amount   string
			ns       int64
			category string
		)
		if err := rows.Scan(&amount, &ns, &category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("decode transaction amount: %w", err)
		}
		out = append(out, core.Transaction{Amount: d, Date: time.Unix(0, ns), Category: category})
	}
	return out, rows.Err()
}

// UpsertProfile replaces the user's monthly and category budgets.
func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.UserProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := upsertProfile(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// AddTransaction stores one ledger record and returns its id.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, userID string, t core.Transaction) (int64, error) {
	return insertTransaction(ctx, r.db, userID, t)
}

// Seed loads a fixture atomically: every user's profile is replaced and
// their transactions appended.
func (r *SQLiteRepository) Seed(ctx context.Context, f *ledger.Fixture) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for id, u := range f.Users {
		if err := upsertProfile(ctx, tx, u.Profile(id)); err != nil {
			return 0, err
		}
		for _, t := range u.Records() {
			if _, err := insertTransaction(ctx, tx, id, t); err != nil {
				return 0, err
			}
			count++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	slog.InfoContext(ctx, "Ledger fixture loaded", "users", len(f.Users), "transactions", count)
	return count, nil
}

// RecordChatEvent stores an audit event. Redelivered events with a known id
// are ignored; the boolean reports whether a row was written.
func (r *SQLiteRepository) RecordChatEvent(ctx context.Context, e ChatEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_events (id, user_id, intent, question, answer, occurred_at_ns) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Intent, e.Question, e.Answer, e.OccurredAt.UnixNano())
	if err != nil {
		return false, fmt.Errorf("insert chat event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListChatEvents returns the user's most recent events, newest first.
func (r *SQLiteRepository) ListChatEvents(ctx context.Context, userID string, limit int) ([]ChatEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, intent, question, answer, occurred_at_ns FROM chat_events WHERE user_id = ? ORDER BY occurred_at_ns DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat events: %w", err)
	}
	defer rows.Close()

	var out []ChatEvent
	for rows.Next() {
		var (
			e  ChatEvent
			ns int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Intent, &e.Question, &e.Answer, &ns); err != nil {
			return nil, fmt.Errorf("scan chat event: %w", err)
		}
		e.OccurredAt = time.Unix(0, ns)
		out = append(out, e)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertProfile(ctx context.Context, tx *sql.Tx, p core.UserProfile) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, monthly_budget) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET monthly_budget = excluded.monthly_budget`,
		p.UserID, p.MonthlyBudget.String()); err != nil {
		return fmt.Errorf("upsert user %s: %w", p.UserID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM category_budgets WHERE user_id = ?`, p.UserID); err != nil {
		return fmt.Errorf("clear category budgets: %w", err)
	}
	for category, amount := range p.CategoryBudgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category_budgets (user_id, category, amount) VALUES (?, ?, ?)`,
			p.UserID, category, amount.String()); err != nil {
			return fmt.Errorf("insert category budget %s: %w", category, err)
		}
	}
	return nil
}

func insertTransaction(ctx context.Context, db execer, userID string, t core.Transaction) (int64, error) {
	var category any
	if t.Category != "" {
		category = t.Category
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount, occurred_at_ns, category) VALUES (?, ?, ?, ?)`,
		userID, t.Amount.String(), t.Date.UnixNano(), category)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

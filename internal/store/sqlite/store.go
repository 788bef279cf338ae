// Package sqlite persists the household document in a local SQLite database.
//
// Each top-level field group (categories, transactions, configs, merchant
// mappings) lives in its own table and Save replaces the whole group. Two
// concurrent writers therefore clobber each other at group granularity;
// that matches the product's last-write-wins model and is flagged in
// DESIGN.md rather than silently merged here.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spokoj/internal/core"
	"spokoj/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ store.DocumentStore = (*Store)(nil)

// Open creates the database file if needed, runs migrations and returns a
// ready store.
func Open(dbPath string) (*Store, error) {
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

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements store.DocumentStore. Field groups are read independently;
// a malformed group falls back to its default instead of failing the whole
// document.
func (s *Store) Load(ctx context.Context) (core.Document, error) {
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM document WHERE id = 1`).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return core.Document{}, store.ErrNotFound
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("read document row: %w", err)
	}

	doc := core.Document{
		Configs:          map[string]core.MonthConfig{},
		Categories:       []core.Category{},
		Transactions:     []core.Transaction{},
		MerchantMappings: []core.MerchantMapping{},
	}

	if err := s.loadCategories(ctx, &doc); err != nil {
		return core.Document{}, fmt.Errorf("load categories: %w", err)
	}
	if err := s.loadConfigs(ctx, &doc); err != nil {
		return core.Document{}, fmt.Errorf("load month configs: %w", err)
	}
	if err := s.loadTransactions(ctx, &doc); err != nil {
		return core.Document{}, fmt.Errorf("load transactions: %w", err)
	}
	if err := s.loadMerchantMappings(ctx, &doc); err != nil {
		return core.Document{}, fmt.Errorf("load merchant mappings: %w", err)
	}

	return doc, nil
}

func (s *Store) loadCategories(ctx context.Context, doc *core.Document) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, limit_amount, icon, is_system FROM categories ORDER BY position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c core.Category
		var isSystem int64
		if err := rows.Scan(&c.ID, &c.Name, &c.Limit, &c.Icon, &isSystem); err != nil {
			return err
		}
		c.IsSystem = isSystem != 0
		doc.Categories = append(doc.Categories, c)
	}
	return rows.Err()
}

func (s *Store) loadConfigs(ctx context.Context, doc *core.Document) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, total_income, savings_goals FROM month_configs`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cfg core.MonthConfig
		var goalsJSON string
		if err := rows.Scan(&cfg.ID, &cfg.TotalIncome, &goalsJSON); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(goalsJSON), &cfg.SavingsGoals); err != nil {
			// Legacy field; a broken blob must not break the month.
			slog.Warn("Dropping unreadable savings goals", "month", cfg.ID, "error", err)
			cfg.SavingsGoals = nil
		}
		doc.Configs[cfg.ID] = cfg
	}
	return rows.Err()
}

func (s *Store) loadTransactions(ctx context.Context, doc *core.Document) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, category_id, date, note, created_by, timestamp
		   FROM transactions ORDER BY position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t core.Transaction
		var createdBy string
		if err := rows.Scan(&t.ID, &t.Amount, &t.CategoryID, &t.Date, &t.Note, &createdBy, &t.Timestamp); err != nil {
			return err
		}
		t.CreatedBy = core.Member(createdBy)
		doc.Transactions = append(doc.Transactions, t)
	}
	return rows.Err()
}

func (s *Store) loadMerchantMappings(ctx context.Context, doc *core.Document) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern, category_id, merchant_name FROM merchant_mappings ORDER BY position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m core.MerchantMapping
		if err := rows.Scan(&m.Pattern, &m.CategoryID, &m.MerchantName); err != nil {
			return err
		}
		doc.MerchantMappings = append(doc.MerchantMappings, m)
	}
	return rows.Err()
}

// Save implements store.DocumentStore. The whole document is replaced in one
// transaction so readers never observe a half-written snapshot.
func (s *Store) Save(ctx context.Context, doc core.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document (id, updated_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`, now); err != nil {
		return fmt.Errorf("upsert document row: %w", err)
	}

	for _, table := range []string{"categories", "month_configs", "transactions", "merchant_mappings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, c := range doc.Categories {
		isSystem := 0
		if c.IsSystem {
			isSystem = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (position, id, name, limit_amount, icon, is_system)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, c.ID, c.Name, c.Limit, c.Icon, isSystem); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for _, cfg := range doc.Configs {
		goalsJSON, err := json.Marshal(cfg.SavingsGoals)
		if err != nil {
			return fmt.Errorf("marshal savings goals for %s: %w", cfg.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO month_configs (id, total_income, savings_goals) VALUES (?, ?, ?)`,
			cfg.ID, cfg.TotalIncome, string(goalsJSON)); err != nil {
			return fmt.Errorf("insert month config %s: %w", cfg.ID, err)
		}
	}

	for i, t := range doc.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (position, id, amount, category_id, date, note, created_by, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, t.ID, t.Amount, t.CategoryID, t.Date, t.Note, string(t.CreatedBy), t.Timestamp); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	for i, m := range doc.MerchantMappings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO merchant_mappings (position, pattern, category_id, merchant_name)
			 VALUES (?, ?, ?, ?)`,
			i, m.Pattern, m.CategoryID, m.MerchantName); err != nil {
			return fmt.Errorf("insert merchant mapping %s: %w", m.Pattern, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

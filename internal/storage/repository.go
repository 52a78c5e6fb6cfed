// Package storage keeps an imported snapshot of transactions and the report
// run history in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"upreport/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db            *sql.DB
	schemaVersion uint
	now           func() time.Time
}

// ImportResult counts what an import did. Transactions already in the
// snapshot are never overwritten.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// Stats describes the snapshot contents.
type Stats struct {
	Transactions int
	First        time.Time
	Last         time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, schemaVersion: version, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SchemaVersion returns the migration version applied at open time.
func (r *SQLiteRepository) SchemaVersion() uint { return r.schemaVersion }

// Import adds transactions to the snapshot in one database transaction.
func (r *SQLiteRepository) Import(ctx context.Context, txs []core.Transaction) (ImportResult, error) {
	var res ImportResult

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin import: %w", err)
	}
	defer dbtx.Rollback()

	insertTx, err := dbtx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
			(id, account_id, description, message, amount, created_at, created_unix,
			 settled_at, category, parent_category, status, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return res, fmt.Errorf("prepare insert transaction: %w", err)
	}
	defer insertTx.Close()

	insertTag, err := dbtx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transaction_tags (transaction_id, tag, position) VALUES (?, ?, ?)`)
	if err != nil {
		return res, fmt.Errorf("prepare insert tag: %w", err)
	}
	defer insertTag.Close()

	importedAt := r.now().UTC().Format(time.RFC3339Nano)
	for _, tx := range txs {
		var settled sql.NullString
		if !tx.SettledAt.IsZero() {
			settled = sql.NullString{String: tx.SettledAt.Format(time.RFC3339Nano), Valid: true}
		}
		result, err := insertTx.ExecContext(ctx,
			tx.ID, tx.AccountID, tx.Description, tx.Message,
			tx.Amount.Decimal().String(),
			tx.CreatedAt.Format(time.RFC3339Nano), tx.CreatedAt.UnixNano(),
			settled, tx.Category, tx.ParentCategory, tx.Status, importedAt)
		if err != nil {
			return res, fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return res, fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
		if n == 0 {
			res.Skipped++
			continue
		}
		for i, tag := range tx.Tags {
			if _, err := insertTag.ExecContext(ctx, tx.ID, tag, i); err != nil {
				return res, fmt.Errorf("insert tag %q for %s: %w", tag, tx.ID, err)
			}
		}
		res.Inserted++
	}

	if err := dbtx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported into snapshot",
		"inserted", res.Inserted,
		"skipped", res.Skipped)

	return res, nil
}

// Stats returns the number of stored transactions and their time span.
func (r *SQLiteRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var first, last sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(created_unix), MAX(created_unix) FROM transactions`).
		Scan(&s.Transactions, &first, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("query snapshot stats: %w", err)
	}
	if first.Valid {
		s.First = time.Unix(0, first.Int64)
	}
	if last.Valid {
		s.Last = time.Unix(0, last.Int64)
	}
	return s, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"upreport/internal/core"
	"upreport/internal/source"
)

const defaultPageSize = 100

// Pager walks the snapshot in (created_at, id) order using keyset
// pagination, so pages stay stable while new transactions are imported.
type Pager struct {
	db        *sql.DB
	accountID string
	since     int64
	until     int64
	size      int

	afterUnix int64
	afterID   string
	started   bool
	done      bool
}

// Pages returns a pager over the transactions created in [since, until].
// A zero bound is open. An empty accountID selects every account.
func (r *SQLiteRepository) Pages(accountID string, since, until time.Time, size int) *Pager {
	if size <= 0 {
		size = defaultPageSize
	}
	p := &Pager{db: r.db, accountID: accountID, since: math.MinInt64, until: math.MaxInt64, size: size}
	if !since.IsZero() {
		p.since = since.UnixNano()
	}
	if !until.IsZero() {
		p.until = until.UnixNano()
	}
	return p
}

// Opener serves report windows from the snapshot.
func (r *SQLiteRepository) Opener(accountID string, size int) source.Opener {
	return source.OpenerFunc(func(_ context.Context, w core.Window) (source.Pager, error) {
		return r.Pages(accountID, w.Start, w.End, size), nil
	})
}

// Next implements source.Pager.
func (p *Pager) Next(ctx context.Context) ([]core.RawTransaction, error) {
	if p.done {
		return nil, io.EOF
	}

	q := strings.Builder{}
	q.WriteString(`
		SELECT id, account_id, description, message, amount, created_at, created_unix,
		       settled_at, category, parent_category, status
		FROM transactions
		WHERE created_unix BETWEEN ? AND ?`)
	args := []any{p.since, p.until}
	if p.accountID != "" {
		q.WriteString(` AND account_id = ?`)
		args = append(args, p.accountID)
	}
	if p.started {
		q.WriteString(` AND (created_unix > ? OR (created_unix = ? AND id > ?))`)
		args = append(args, p.afterUnix, p.afterUnix, p.afterID)
	}
	q.WriteString(` ORDER BY created_unix, id LIMIT ?`)
	args = append(args, p.size)

	rows, err := p.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions page: %w", err)
	}
	defer rows.Close()

	var (
		page []core.RawTransaction
		ids  []string
		last int64
	)
	for rows.Next() {
		var (
			rec       core.RawTransaction
			amount    string
			createdAt string
			settledAt sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Description, &rec.Message, &amount,
			&createdAt, &last, &settledAt, &rec.Category, &rec.ParentCategory, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Amount = &amount
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse created_at: %w", rec.ID, err)
		}
		rec.CreatedAt = &created
		if settledAt.Valid {
			settled, err := time.Parse(time.RFC3339Nano, settledAt.String)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: parse settled_at: %w", rec.ID, err)
			}
			rec.SettledAt = &settled
		}
		page = append(page, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	if len(page) < p.size {
		p.done = true
	}
	if len(page) == 0 {
		return nil, io.EOF
	}
	p.started = true
	p.afterUnix = last
	p.afterID = ids[len(ids)-1]

	tags, err := p.tags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range page {
		page[i].Tags = tags[page[i].ID]
	}
	return page, nil
}

func (p *Pager) tags(ctx context.Context, ids []string) (map[string][]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT transaction_id, tag FROM transaction_tags
		 WHERE transaction_id IN (`+placeholders+`)
		 ORDER BY transaction_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string, len(ids))
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out[id] = append(out[id], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return out, nil
}

package auditlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
)

// ErrNotFound indicates the audit entry does not exist.
var ErrNotFound = errors.New("audit entry not found")

// Record is a single audit log entry.
type Record struct {
	ID         int64          `db:"id" json:"id"`
	Actor      string         `db:"actor" json:"actor"`
	Action     string         `db:"action" json:"action"`
	FormID     int64          `db:"form_id" json:"form_id"`
	BeforeJSON sql.NullString `db:"before_json" json:"-"`
	AfterJSON  sql.NullString `db:"after_json" json:"-"`
	AppliedAt  time.Time      `db:"applied_at" json:"applied_at"`
}

// Repo provides access to audit log records.
type Repo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	Driver      string
	TablePrefix string
}

func (r *Repo) table() string {
	prefix := r.TablePrefix
	if prefix == "" {
		prefix = "formd_"
	}
	return prefix + "audit_logs"
}

var columns = []string{"id", "actor", "action", "form_id", "before_json", "after_json", "applied_at"}

// FindByID returns a record by its ID.
func (r *Repo) FindByID(ctx context.Context, id int64) (Record, error) {
	if r == nil || r.DB == nil {
		return Record{}, sql.ErrConnDone
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Select(columns...).
		Where("id", id).
		WithContext(ctx)
	var rec Record
	if err := q.First(&rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// List returns the newest entries first, optionally filtered by action or
// form id.
func (r *Repo) List(ctx context.Context, action string, formID int64, limit int) ([]Record, error) {
	if r == nil || r.DB == nil {
		return nil, sql.ErrConnDone
	}
	var (
		conds []string
		args  []any
	)
	next := func() string {
		if r.Driver == "postgres" {
			return fmt.Sprintf("$%d", len(args)+1)
		}
		return "?"
	}
	if action != "" {
		conds = append(conds, "action="+next())
		args = append(args, action)
	}
	if formID > 0 {
		conds = append(conds, "form_id="+next())
		args = append(args, formID)
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), r.table())
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", limit) // #nosec G201 -- limit sanitized by caller
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Actor, &rec.Action, &rec.FormID, &rec.BeforeJSON, &rec.AfterJSON, &rec.AppliedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// PurgeOlderThan deletes entries applied before the cutoff and reports how
// many were removed.
func (r *Repo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.DB == nil {
		return 0, sql.ErrConnDone
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE applied_at < ?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("DELETE FROM %s WHERE applied_at < $1", r.table())
	}
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package formdef

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
)

// Repository is storage access for form definitions. Both the SQL and the
// Mongo backends implement it.
type Repository interface {
	Create(ctx context.Context, def FormDefinition) (FormDefinition, error)
	Get(ctx context.Context, id int64) (FormDefinition, error)
	List(ctx context.Context) ([]FormDefinition, error)
	Update(ctx context.Context, id int64, def FormDefinition) (FormDefinition, error)
	UpdateConfiguration(ctx context.Context, id int64, cfg json.RawMessage) error
	Delete(ctx context.Context, id int64) error
	CountForms(ctx context.Context) (int, error)
}

// SQLRepo stores form definitions in a relational table (MySQL or Postgres).
type SQLRepo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *SQLRepo) prefix() string {
	if r.TablePrefix != "" {
		return r.TablePrefix
	}
	return "formd_"
}

func (r *SQLRepo) table() string { return r.prefix() + "forms" }

type formRow struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Method        string    `db:"method"`
	Action        string    `db:"action"`
	Fields        []byte    `db:"fields"`
	Configuration []byte    `db:"configuration"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

var formColumns = []string{"id", "title", "method", "action", "fields", "configuration", "is_active", "created_at", "updated_at"}

func (row formRow) toDefinition() (FormDefinition, error) {
	def := FormDefinition{
		ID:        row.ID,
		Title:     row.Title,
		Method:    row.Method,
		Action:    row.Action,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &def.Fields); err != nil {
			return def, fmt.Errorf("decode fields of form %d: %w", row.ID, err)
		}
	}
	if len(row.Configuration) > 0 {
		def.Configuration = json.RawMessage(row.Configuration)
	}
	return def, nil
}

// Create inserts a new form and returns the stored definition.
func (r *SQLRepo) Create(ctx context.Context, def FormDefinition) (FormDefinition, error) {
	if r == nil || r.DB == nil {
		return FormDefinition{}, fmt.Errorf("repo not initialized")
	}
	fields, err := json.Marshal(def.Fields)
	if err != nil {
		return FormDefinition{}, err
	}
	now := time.Now()
	data := map[string]any{
		"title":      def.Title,
		"method":     def.Method,
		"action":     def.Action,
		"fields":     string(fields),
		"is_active":  true,
		"created_at": now,
		"updated_at": now,
	}
	q := query.New(r.DB, r.table(), r.Dialect).WithContext(ctx)
	id, err := q.InsertGetId(data)
	if err != nil {
		return FormDefinition{}, err
	}
	return r.Get(ctx, id)
}

// Get fetches a form by id. ErrNotFound when the id does not resolve.
func (r *SQLRepo) Get(ctx context.Context, id int64) (FormDefinition, error) {
	if r == nil || r.DB == nil {
		return FormDefinition{}, fmt.Errorf("repo not initialized")
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Select(formColumns...).
		Where("id", id).
		WithContext(ctx)
	var row formRow
	if err := q.First(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FormDefinition{}, ErrNotFound
		}
		return FormDefinition{}, err
	}
	return row.toDefinition()
}

// List returns all forms in primary-key order.
func (r *SQLRepo) List(ctx context.Context) ([]FormDefinition, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Select(formColumns...).
		OrderBy("id", "asc").
		WithContext(ctx)
	var rows []formRow
	if err := q.Get(&rows); err != nil {
		return nil, err
	}
	defs := make([]FormDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := row.toDefinition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Update replaces title, method, action and fields of an existing form.
// Configuration and is_active are left untouched.
func (r *SQLRepo) Update(ctx context.Context, id int64, def FormDefinition) (FormDefinition, error) {
	if r == nil || r.DB == nil {
		return FormDefinition{}, fmt.Errorf("repo not initialized")
	}
	if _, err := r.Get(ctx, id); err != nil {
		return FormDefinition{}, err
	}
	fields, err := json.Marshal(def.Fields)
	if err != nil {
		return FormDefinition{}, err
	}
	data := map[string]any{
		"title":      def.Title,
		"method":     def.Method,
		"action":     def.Action,
		"fields":     string(fields),
		"updated_at": time.Now(),
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Where("id", id).
		WithContext(ctx)
	if _, err := q.Update(data); err != nil {
		return FormDefinition{}, err
	}
	return r.Get(ctx, id)
}

// UpdateConfiguration writes only the configuration attribute. The fields
// list is deliberately not touched here.
func (r *SQLRepo) UpdateConfiguration(ctx context.Context, id int64, cfg json.RawMessage) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	data := map[string]any{
		"configuration": string(cfg),
		"updated_at":    time.Now(),
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Where("id", id).
		WithContext(ctx)
	_, err := q.Update(data)
	return err
}

// Delete removes a form. Hard delete, no tombstone.
func (r *SQLRepo) Delete(ctx context.Context, id int64) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Where("id", id).
		WithContext(ctx)
	_, err := q.Delete()
	return err
}

// CountForms returns the number of stored forms, used by the metrics gauge.
func (r *SQLRepo) CountForms(ctx context.Context) (int, error) {
	if r == nil || r.DB == nil {
		return 0, nil
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		SelectRaw("COUNT(*) AS cnt").
		WithContext(ctx)
	var res struct {
		Cnt int `db:"cnt"`
	}
	if err := q.First(&res); err != nil {
		return 0, err
	}
	return res.Cnt, nil
}

package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"

	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/metrics"
)

// Recorder writes form change audit entries to the database.
type Recorder struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *Recorder) table() string {
	prefix := r.TablePrefix
	if prefix == "" {
		prefix = "formd_"
	}
	return prefix + "audit_logs"
}

// Write records a single form change. A nil old means creation, a nil new
// means deletion. The action may be overridden for narrow operations such as
// structure updates.
func (r *Recorder) Write(ctx context.Context, actor string, old, new *formdef.FormDefinition) error {
	var action string
	switch {
	case old == nil && new != nil:
		action = "create"
	case old != nil && new == nil:
		action = "delete"
	default:
		action = "update"
	}
	return r.write(ctx, actor, action, old, new)
}

// WriteStructure records a configuration-only update.
func (r *Recorder) WriteStructure(ctx context.Context, actor string, old, new *formdef.FormDefinition) error {
	return r.write(ctx, actor, "structure", old, new)
}

func (r *Recorder) write(ctx context.Context, actor, action string, old, new *formdef.FormDefinition) error {
	if r == nil || r.DB == nil {
		return nil
	}
	var formID int64
	if new != nil {
		formID = new.ID
	} else if old != nil {
		formID = old.ID
	}
	data := map[string]any{
		"actor":   actor,
		"action":  action,
		"form_id": formID,
	}
	if old != nil {
		b, err := json.Marshal(old)
		if err != nil {
			return err
		}
		data["before_json"] = string(b)
	}
	if new != nil {
		b, err := json.Marshal(new)
		if err != nil {
			return err
		}
		data["after_json"] = string(b)
	}
	q := query.New(r.DB, r.table(), r.Dialect).WithContext(ctx)
	if _, err := q.InsertGetId(data); err != nil {
		metrics.AuditErrors.WithLabelValues(action).Inc()
		return err
	}
	metrics.AuditEvents.WithLabelValues(action).Inc()
	return nil
}

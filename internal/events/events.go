package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default is the global dispatcher used by Emit.
var Default *Dispatcher

// Actions emitted by the form handlers.
const (
	ActionCreated          = "form.created"
	ActionUpdated          = "form.updated"
	ActionDeleted          = "form.deleted"
	ActionStructureUpdated = "form.structure.updated"
)

// Event is one change applied to a form definition. Form carries the JSON
// snapshot of the definition after the change (before, for deletions).
type Event struct {
	ID     string          `json:"id"`
	Action string          `json:"action"`
	FormID int64           `json:"form_id"`
	Actor  string          `json:"actor"`
	At     time.Time       `json:"at"`
	Form   json.RawMessage `json:"form,omitempty"`
}

// New builds an event for a form change. A nil snapshot leaves Form empty.
func New(action string, formID int64, actor string, snapshot any) Event {
	e := Event{Action: action, FormID: formID, Actor: actor, At: time.Now().UTC()}
	if snapshot != nil {
		if b, err := json.Marshal(snapshot); err == nil {
			e.Form = b
		}
	}
	return e
}

// Payload renders the JSON document every sink and the DLQ receive.
func (e Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Sink publishes events.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// DLQ stores events that could not be delivered.
type DLQ interface {
	Store(ctx context.Context, e Event, attempts int, lastErr string) error
}

// Dispatcher broadcasts events to multiple sinks with retries.
type Dispatcher struct {
	sinks        []Sink
	maxAttempts  int
	initialDelay time.Duration
	dlq          DLQ
}

// NewDispatcher creates a dispatcher from sinks and retry config.
func NewDispatcher(cfg Config, dlq DLQ, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{maxAttempts: 3, initialDelay: time.Second, dlq: dlq}
	if cfg.Retry.MaxAttempts > 0 {
		d.maxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelay > 0 {
		d.initialDelay = cfg.Retry.InitialDelay
	}
	d.sinks = append(d.sinks, sinks...)
	return d
}

// Emit publishes a form change through the default dispatcher, if one is
// configured.
func Emit(ctx context.Context, action string, formID int64, actor string, snapshot any) {
	if Default == nil {
		return
	}
	Default.Dispatch(ctx, New(action, formID, actor, snapshot))
}

// Dispatch sends the event to all sinks asynchronously. A missing event ID is
// filled in so the DLQ and consumers can deduplicate. Delivery outlives the
// request: the caller's cancelation does not abort in-flight retries.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	ctx = context.WithoutCancel(ctx)
	for _, s := range d.sinks {
		go d.deliver(ctx, s, e)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, s Sink, e Event) {
	backoff := d.initialDelay
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = s.Emit(ctx, e); err == nil {
			return
		}
		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			d.toDLQ(ctx, e, attempt, err)
			return
		}
	}
	d.toDLQ(ctx, e, d.maxAttempts, err)
}

func (d *Dispatcher) toDLQ(ctx context.Context, e Event, attempts int, err error) {
	if d.dlq == nil || err == nil {
		return
	}
	_ = d.dlq.Store(ctx, e, attempts, err.Error())
}

// SQLDLQ stores failed events in the database.
type SQLDLQ struct {
	DB          *sql.DB
	Driver      string
	TablePrefix string
}

// Store inserts the failed event with its full payload.
func (q *SQLDLQ) Store(ctx context.Context, e Event, attempts int, lastErr string) error {
	if q == nil || q.DB == nil {
		return nil
	}
	data, err := e.Payload()
	if err != nil {
		return err
	}
	tbl := q.TablePrefix + "events_failed"
	var stmt string
	if q.Driver == "postgres" {
		stmt = fmt.Sprintf("INSERT INTO %s(action, form_id, payload, attempts, last_error) VALUES ($1, $2, $3, $4, $5)", tbl)
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s(action, form_id, payload, attempts, last_error) VALUES (?, ?, ?, ?, ?)", tbl)
	}
	_, err = q.DB.ExecContext(ctx, stmt, e.Action, e.FormID, string(data), attempts, lastErr)
	return err
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/danielgtaylor/huma/v2"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"

	"github.com/formdeck/formd/internal/api/schema"
	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/formdef/audit"
)

// fakeRepo is an in-memory Repository that records which methods were called.
type fakeRepo struct {
	forms  map[int64]formdef.FormDefinition
	nextID int64
	calls  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{forms: map[int64]formdef.FormDefinition{}, nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, def formdef.FormDefinition) (formdef.FormDefinition, error) {
	r.calls = append(r.calls, "Create")
	def.ID = r.nextID
	def.IsActive = true
	r.nextID++
	r.forms[def.ID] = def
	return def, nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (formdef.FormDefinition, error) {
	r.calls = append(r.calls, "Get")
	def, ok := r.forms[id]
	if !ok {
		return formdef.FormDefinition{}, formdef.ErrNotFound
	}
	return def, nil
}

func (r *fakeRepo) List(_ context.Context) ([]formdef.FormDefinition, error) {
	r.calls = append(r.calls, "List")
	out := make([]formdef.FormDefinition, 0, len(r.forms))
	for _, d := range r.forms {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, def formdef.FormDefinition) (formdef.FormDefinition, error) {
	r.calls = append(r.calls, "Update")
	cur, ok := r.forms[id]
	if !ok {
		return formdef.FormDefinition{}, formdef.ErrNotFound
	}
	cur.Title, cur.Method, cur.Action, cur.Fields = def.Title, def.Method, def.Action, def.Fields
	r.forms[id] = cur
	return cur, nil
}

func (r *fakeRepo) UpdateConfiguration(_ context.Context, id int64, cfg json.RawMessage) error {
	r.calls = append(r.calls, "UpdateConfiguration")
	cur, ok := r.forms[id]
	if !ok {
		return formdef.ErrNotFound
	}
	cur.Configuration = cfg
	r.forms[id] = cur
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.calls = append(r.calls, "Delete")
	if _, ok := r.forms[id]; !ok {
		return formdef.ErrNotFound
	}
	delete(r.forms, id)
	return nil
}

func (r *fakeRepo) CountForms(_ context.Context) (int, error) {
	return len(r.forms), nil
}

func (r *fakeRepo) called(name string) bool {
	for _, c := range r.calls {
		if c == name {
			return true
		}
	}
	return false
}

func newHandler(repo *fakeRepo) *FormHandler {
	return &FormHandler{Repo: repo, Recorder: &audit.Recorder{}}
}

func validBody() schema.FormInput {
	return schema.FormInput{
		Title:  "Contact",
		Method: "POST",
		Action: "/submit",
		Fields: []map[string]any{{"type": "text", "name": "email", "label": "Email"}},
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(huma.StatusError)
	if !ok {
		t.Fatalf("not a status error: %v", err)
	}
	return se.GetStatus()
}

func TestCreateForm(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)

	out, err := h.create(context.Background(), &formInput{Body: validBody()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Body.ID != 1 || out.Body.Title != "Contact" {
		t.Fatalf("unexpected form: %+v", out.Body)
	}
	if !out.Body.IsActive {
		t.Fatal("new forms should be active")
	}
}

func TestCreateFormValidation(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)

	_, err := h.create(context.Background(), &formInput{Body: schema.FormInput{}})
	if status := statusOf(t, err); status != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", status)
	}
	if repo.called("Create") {
		t.Fatal("invalid input must not reach the repository")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateFormReservedName(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)

	body := validBody()
	body.Fields = []map[string]any{{"type": "hidden", "name": "csrf_token", "label": "Token"}}
	_, err := h.create(context.Background(), &formInput{Body: body})
	if status := statusOf(t, err); status != http.StatusConflict {
		t.Fatalf("want 409, got %d", status)
	}
	if repo.called("Create") {
		t.Fatal("reserved names must be rejected before persistence")
	}
}

func TestGetFormNotFound(t *testing.T) {
	h := newHandler(newFakeRepo())
	_, err := h.get(context.Background(), &formIDInput{ID: 42})
	if status := statusOf(t, err); status != http.StatusNotFound {
		t.Fatalf("want 404, got %d", status)
	}
}

func TestUpdateForm(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)
	created, err := h.create(context.Background(), &formInput{Body: validBody()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	body := validBody()
	body.Title = "Contact v2"
	out, err := h.update(context.Background(), &formUpdateInput{ID: created.Body.ID, Body: body})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Body.Title != "Contact v2" {
		t.Fatalf("title not updated: %+v", out.Body)
	}
}

func TestDeleteForm(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)
	created, err := h.create(context.Background(), &formInput{Body: validBody()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.delete(context.Background(), &formIDInput{ID: created.Body.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.get(context.Background(), &formIDInput{ID: created.Body.ID}); err == nil {
		t.Fatal("form should be gone")
	}
}

func TestImportJSONParsesWithoutPersisting(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)

	doc := `{"title":"Imported","fields":[{"type":"text","name":"a","label":"A"}]}`
	out, err := h.importJSON(context.Background(), &importInput{Body: schema.ImportInput{JSONData: doc}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Body.Message != "JSON configuration parsed successfully" {
		t.Fatalf("unexpected message %q", out.Body.Message)
	}
	cfg, ok := out.Body.Config.(map[string]any)
	if !ok || cfg["title"] != "Imported" {
		t.Fatalf("config not echoed: %#v", out.Body.Config)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("import must not touch the repository, called %v", repo.calls)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	h := newHandler(newFakeRepo())
	_, err := h.importJSON(context.Background(), &importInput{Body: schema.ImportInput{JSONData: "{broken"}})
	if status := statusOf(t, err); status != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", status)
	}
}

func TestUpdateStructureTouchesOnlyConfiguration(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)
	created, err := h.create(context.Background(), &formInput{Body: validBody()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	fieldsBefore := created.Body.Fields

	out, err := h.updateStructure(context.Background(), &structureInput{
		ID:   created.Body.ID,
		Body: schema.StructureInput{Configuration: json.RawMessage(`{"rows":[["email"]]}`)},
	})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	if out.Body.Message != "Form structure updated successfully" {
		t.Fatalf("unexpected message %q", out.Body.Message)
	}
	if repo.called("Update") {
		t.Fatal("structure update must not run the full update path")
	}
	if !repo.called("UpdateConfiguration") {
		t.Fatal("UpdateConfiguration was not called")
	}
	after, err := h.get(context.Background(), &formIDInput{ID: created.Body.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(after.Body.Fields) != len(fieldsBefore) {
		t.Fatal("fields must survive a structure update")
	}
	if string(after.Body.Configuration) != `{"rows":[["email"]]}` {
		t.Fatalf("configuration not stored: %s", after.Body.Configuration)
	}
}

func TestUpdateStructureScalarRejected(t *testing.T) {
	h := newHandler(newFakeRepo())
	_, err := h.updateStructure(context.Background(), &structureInput{
		ID:   1,
		Body: schema.StructureInput{Configuration: json.RawMessage(`42`)},
	})
	if status := statusOf(t, err); status != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", status)
	}
}

func TestUpdateFormNotFound(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)
	in := &formUpdateInput{ID: 99, Body: validBody()}
	_, err := h.update(context.Background(), in)
	if got := statusOf(t, err); got != http.StatusNotFound {
		t.Fatalf("want 404, got %d", got)
	}
	if repo.called("Update") {
		t.Fatal("Update must not run for a missing form")
	}
}

func TestDeleteFormNotFound(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)
	_, err := h.delete(context.Background(), &formIDInput{ID: 99})
	if got := statusOf(t, err); got != http.StatusNotFound {
		t.Fatalf("want 404, got %d", got)
	}
	if repo.called("Delete") {
		t.Fatal("Delete must not run for a missing form")
	}
}

func TestUpdateStructureNotFound(t *testing.T) {
	repo := newFakeRepo()
	h := newHandler(repo)
	in := &structureInput{ID: 99}
	in.Body.Configuration = json.RawMessage(`{"rows":[]}`)
	_, err := h.updateStructure(context.Background(), in)
	if got := statusOf(t, err); got != http.StatusNotFound {
		t.Fatalf("want 404, got %d", got)
	}
	if repo.called("UpdateConfiguration") {
		t.Fatal("UpdateConfiguration must not run for a missing form")
	}
}

func TestCreateFormAuditWriteFailure(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := newFakeRepo()
	rec := &audit.Recorder{DB: db, Dialect: ormdriver.PostgresDialect{}, TablePrefix: "formd_"}
	h := &FormHandler{Repo: repo, Recorder: rec}

	_, err = h.create(context.Background(), &formInput{Body: validBody()})
	if err == nil {
		t.Fatal("create must fail when the audit write fails")
	}
	if !strings.Contains(err.Error(), "write audit log") {
		t.Fatalf("unexpected error: %v", err)
	}
}

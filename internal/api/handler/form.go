package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"

	"github.com/formdeck/formd/internal/api/schema"
	"github.com/formdeck/formd/internal/events"
	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/formdef/audit"
	"github.com/formdeck/formd/internal/server/middleware"
	"github.com/formdeck/formd/internal/server/reserved"
)

// FormHandler serves the admin CRUD surface for form definitions.
type FormHandler struct {
	Repo     formdef.Repository
	Recorder *audit.Recorder
}

type formInput struct {
	Body schema.FormInput
}

type formOutput struct {
	Body formdef.FormDefinition
}

type formIDInput struct {
	ID int64 `path:"id"`
}

type formUpdateInput struct {
	ID   int64 `path:"id"`
	Body schema.FormInput
}

type listOutput struct {
	Body []formdef.FormDefinition
}

type importInput struct {
	Body schema.ImportInput
}

type importOutput struct {
	Body schema.ImportResult
}

type structureInput struct {
	ID   int64 `path:"id"`
	Body schema.StructureInput
}

type messageOutput struct {
	Body schema.Message
}

func Register(api huma.API, h *FormHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listForms",
		Method:      http.MethodGet,
		Path:        "/v1/forms",
		Summary:     "List form definitions",
		Tags:        []string{"Form"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID:   "createForm",
		Method:        http.MethodPost,
		Path:          "/v1/forms",
		Summary:       "Create form definition",
		Tags:          []string{"Form"},
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusConflict},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "getForm",
		Method:      http.MethodGet,
		Path:        "/v1/forms/{id}",
		Summary:     "Get form definition",
		Tags:        []string{"Form"},
		Errors:      []int{http.StatusNotFound},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "updateForm",
		Method:      http.MethodPut,
		Path:        "/v1/forms/{id}",
		Summary:     "Update form definition",
		Tags:        []string{"Form"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusNotFound, http.StatusConflict},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "deleteForm",
		Method:        http.MethodDelete,
		Path:          "/v1/forms/{id}",
		Summary:       "Delete form definition",
		Tags:          []string{"Form"},
		Errors:        []int{http.StatusNotFound},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
	huma.Register(api, huma.Operation{
		OperationID: "importFormJSON",
		Method:      http.MethodPost,
		Path:        "/v1/forms/import-json",
		Summary:     "Parse a raw JSON form configuration",
		Tags:        []string{"Form"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.importJSON)
	huma.Register(api, huma.Operation{
		OperationID: "updateFormStructure",
		Method:      http.MethodPost,
		Path:        "/v1/forms/{id}/structure",
		Summary:     "Replace the form's layout configuration",
		Tags:        []string{"Form"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusNotFound},
	}, h.updateStructure)
}

// validationError translates a domain validation error into a 422 with one
// ErrorDetail per message, locations keyed by attribute.
func validationError(ve *formdef.ValidationError) error {
	attrs := make([]string, 0, len(ve.Fields))
	for a := range ve.Fields {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	var details []error
	for _, a := range attrs {
		for _, msg := range ve.Fields[a] {
			details = append(details, &huma.ErrorDetail{Location: "body." + a, Message: msg})
		}
	}
	return huma.NewError(http.StatusUnprocessableEntity, "validation failed", details...)
}

func checkReserved(fields []formdef.FieldDescriptor) error {
	for _, f := range fields {
		if reserved.Is(f.Name) {
			return huma.Error409Conflict(fmt.Sprintf("field name '%s' is reserved", f.Name))
		}
	}
	return nil
}

func (h *FormHandler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	defs, err := h.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if defs == nil {
		defs = []formdef.FormDefinition{}
	}
	return &listOutput{Body: defs}, nil
}

func (h *FormHandler) create(ctx context.Context, in *formInput) (*formOutput, error) {
	fields, ve := formdef.ValidateDefinition(in.Body.Title, in.Body.Method, in.Body.Action, in.Body.Fields)
	if ve != nil {
		return nil, validationError(ve)
	}
	if err := checkReserved(fields); err != nil {
		return nil, err
	}
	def, err := h.Repo.Create(ctx, formdef.FormDefinition{
		Title:  in.Body.Title,
		Method: in.Body.Method,
		Action: in.Body.Action,
		Fields: fields,
	})
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	if err := h.Recorder.Write(ctx, actor, nil, &def); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}
	events.Emit(ctx, events.ActionCreated, def.ID, actor, def)
	return &formOutput{Body: def}, nil
}

func (h *FormHandler) get(ctx context.Context, in *formIDInput) (*formOutput, error) {
	def, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, formdef.ErrNotFound) {
			return nil, huma.Error404NotFound("form not found")
		}
		return nil, err
	}
	return &formOutput{Body: def}, nil
}

func (h *FormHandler) update(ctx context.Context, in *formUpdateInput) (*formOutput, error) {
	fields, ve := formdef.ValidateDefinition(in.Body.Title, in.Body.Method, in.Body.Action, in.Body.Fields)
	if ve != nil {
		return nil, validationError(ve)
	}
	if err := checkReserved(fields); err != nil {
		return nil, err
	}
	old, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, formdef.ErrNotFound) {
			return nil, huma.Error404NotFound("form not found")
		}
		return nil, err
	}
	def, err := h.Repo.Update(ctx, in.ID, formdef.FormDefinition{
		Title:  in.Body.Title,
		Method: in.Body.Method,
		Action: in.Body.Action,
		Fields: fields,
	})
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	if err := h.Recorder.Write(ctx, actor, &old, &def); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}
	events.Emit(ctx, events.ActionUpdated, def.ID, actor, def)
	return &formOutput{Body: def}, nil
}

func (h *FormHandler) delete(ctx context.Context, in *formIDInput) (*struct{}, error) {
	old, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, formdef.ErrNotFound) {
			return nil, huma.Error404NotFound("form not found")
		}
		return nil, err
	}
	if err := h.Repo.Delete(ctx, in.ID); err != nil {
		if errors.Is(err, formdef.ErrNotFound) {
			return nil, huma.Error404NotFound("form not found")
		}
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	if err := h.Recorder.Write(ctx, actor, &old, nil); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}
	events.Emit(ctx, events.ActionDeleted, in.ID, actor, old)
	return &struct{}{}, nil
}

// importJSON parses the submitted document and echoes it back. Nothing is
// persisted; creating a form from the preview is a separate step.
func (h *FormHandler) importJSON(ctx context.Context, in *importInput) (*importOutput, error) {
	if in.Body.JSONData == "" {
		ve := formdef.NewValidationError()
		ve.Add("json_data", "The json data field is required.")
		return nil, validationError(ve)
	}
	var config any
	if err := json.Unmarshal([]byte(in.Body.JSONData), &config); err != nil {
		ve := formdef.NewValidationError()
		ve.Add("json_data", "The json data field must be a valid JSON string.")
		return nil, validationError(ve)
	}
	return &importOutput{Body: schema.ImportResult{
		Config:  config,
		Message: "JSON configuration parsed successfully",
	}}, nil
}

// updateStructure replaces only the configuration attribute. The fields list
// stays untouched; the full validation path of update does not run here.
func (h *FormHandler) updateStructure(ctx context.Context, in *structureInput) (*messageOutput, error) {
	if ve := formdef.ValidateConfiguration(in.Body.Configuration); ve != nil {
		return nil, validationError(ve)
	}
	old, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, formdef.ErrNotFound) {
			return nil, huma.Error404NotFound("form not found")
		}
		return nil, err
	}
	if err := h.Repo.UpdateConfiguration(ctx, in.ID, in.Body.Configuration); err != nil {
		if errors.Is(err, formdef.ErrNotFound) {
			return nil, huma.Error404NotFound("form not found")
		}
		return nil, err
	}
	updated, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	if err := h.Recorder.WriteStructure(ctx, actor, &old, &updated); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}
	events.Emit(ctx, events.ActionStructureUpdated, in.ID, actor, updated)
	return &messageOutput{Body: schema.Message{Message: "Form structure updated successfully"}}, nil
}

package formdef

import (
	"encoding/json"
	"fmt"
	"time"
)

// FormDefinition is a persisted form: submission metadata plus an ordered
// list of field descriptors. Values returned by the repository are fresh
// copies; mutation happens only through explicit repository calls.
type FormDefinition struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Method        string            `json:"method"`
	Action        string            `json:"action"`
	Fields        []FieldDescriptor `json:"fields"`
	Configuration json.RawMessage   `json:"configuration,omitempty"`
	IsActive      bool              `json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

const maxAttrLen = 255

// ValidateDefinition checks the writable attributes of a form and normalizes
// its field list. All problems are collected into a single ValidationError so
// the caller sees every offending attribute at once.
func ValidateDefinition(title, method, action string, rawFields []map[string]any) ([]FieldDescriptor, *ValidationError) {
	ve := NewValidationError()
	switch {
	case title == "":
		ve.Add("title", "The form title is required.")
	case len(title) > maxAttrLen:
		ve.Add("title", "The form title cannot exceed 255 characters.")
	}
	switch {
	case method == "":
		ve.Add("method", "The form method is required.")
	case len(method) > maxAttrLen:
		ve.Add("method", "The form method cannot exceed 255 characters.")
	}
	switch {
	case action == "":
		ve.Add("action", "The form action URL is required.")
	case len(action) > maxAttrLen:
		ve.Add("action", "The form action URL cannot exceed 255 characters.")
	}
	fields := parseFields(rawFields, ve)
	if !ve.Empty() {
		return nil, ve
	}
	return fields, nil
}

// parseFields normalizes the raw descriptor list. Unknown keys are preserved,
// required defaults to false, and options must be non-empty label/value
// string pairs. Duplicate names are deliberately permitted.
func parseFields(raw []map[string]any, ve *ValidationError) []FieldDescriptor {
	if len(raw) == 0 {
		ve.Add("fields", "At least one field is required for the form.")
		return nil
	}
	out := make([]FieldDescriptor, 0, len(raw))
	for i, m := range raw {
		b, err := json.Marshal(m)
		if err != nil {
			ve.Add("fields", fmt.Sprintf("field %d: not a valid descriptor", i+1))
			continue
		}
		var fd FieldDescriptor
		if err := json.Unmarshal(b, &fd); err != nil {
			ve.Add("fields", fmt.Sprintf("field %d: %v", i+1, err))
			continue
		}
		if fd.Type == "" {
			ve.Add("fields", fmt.Sprintf("field %d: type is required", i+1))
		}
		if fd.Name == "" {
			ve.Add("fields", fmt.Sprintf("field %d: name is required", i+1))
		}
		if fd.Label == "" {
			ve.Add("fields", fmt.Sprintf("field %d: label is required", i+1))
		}
		for j, o := range fd.Options {
			if o.Label == "" || o.Value == "" {
				ve.Add("fields", fmt.Sprintf("field %d: option %d needs a label and a value", i+1, j+1))
			}
		}
		out = append(out, fd)
	}
	return out
}

// ValidateConfiguration checks the structure-update payload: present and a
// structured JSON value (object or array), never a scalar.
func ValidateConfiguration(cfg json.RawMessage) *ValidationError {
	ve := NewValidationError()
	if len(cfg) == 0 {
		ve.Add("configuration", "The configuration is required.")
		return ve
	}
	var v any
	if err := json.Unmarshal(cfg, &v); err != nil {
		ve.Add("configuration", "The configuration must be a structured value.")
		return ve
	}
	switch v.(type) {
	case map[string]any, []any:
		return nil
	default:
		ve.Add("configuration", "The configuration must be a structured value.")
		return ve
	}
}

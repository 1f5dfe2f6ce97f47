package schema

import "encoding/json"

// FormInput is the writable attribute set of a form definition. Validation
// happens in the domain layer so that every offending attribute is reported
// at once; the schema itself keeps all keys optional.
type FormInput struct {
	Title  string           `json:"title,omitempty" doc:"Form title"`
	Method string           `json:"method,omitempty" doc:"HTTP verb used on submission"`
	Action string           `json:"action,omitempty" doc:"Submission target URL"`
	Fields []map[string]any `json:"fields,omitempty" doc:"Ordered field descriptors"`
}

// ImportInput carries a raw JSON document to be parsed into a form
// configuration preview.
type ImportInput struct {
	JSONData string `json:"json_data,omitempty" doc:"Raw JSON text"`
}

// ImportResult echoes the parsed configuration.
type ImportResult struct {
	Config  any    `json:"config"`
	Message string `json:"message"`
}

// StructureInput carries the drag-and-drop layout written by the structure
// update operation.
type StructureInput struct {
	Configuration json.RawMessage `json:"configuration,omitempty" doc:"Structured layout value"`
}

// Message is a plain confirmation payload.
type Message struct {
	Message string `json:"message"`
}

package generator

// FieldTypeToGo maps form field types to Go types.
var FieldTypeToGo = map[string]string{
	"text":     "string",
	"textarea": "string",
	"email":    "string",
	"url":      "string",
	"password": "string",
	"hidden":   "string",
	"select":   "string",
	"radio":    "string",
	"file":     "string",
	"number":   "float64",
	"range":    "float64",
	"checkbox": "bool",
	"date":     "time.Time",
	"datetime": "time.Time",
	"time":     "time.Time",
}

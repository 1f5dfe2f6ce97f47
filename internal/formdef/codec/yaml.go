package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/formdeck/formd/internal/formdef"
)

const currentVersion = "0.1"

type formsFile struct {
	Version string `yaml:"version"`
	Forms   []any  `yaml:"forms"`
}

// EncodeYAML renders form definitions as a versioned YAML document. Forms go
// through a JSON round trip so that unknown field keys survive.
func EncodeYAML(defs []formdef.FormDefinition) ([]byte, error) {
	forms := make([]any, 0, len(defs))
	for _, d := range defs {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		var plain map[string]any
		if err := json.Unmarshal(raw, &plain); err != nil {
			return nil, err
		}
		forms = append(forms, plain)
	}
	return yaml.Marshal(formsFile{Version: currentVersion, Forms: forms})
}

// DecodeYAML parses a document produced by EncodeYAML.
func DecodeYAML(b []byte) ([]formdef.FormDefinition, error) {
	var rf formsFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, err
	}
	if rf.Version != "" && rf.Version != currentVersion {
		return nil, fmt.Errorf("unsupported forms file version %q", rf.Version)
	}
	defs := make([]formdef.FormDefinition, 0, len(rf.Forms))
	for i, f := range rf.Forms {
		raw, err := json.Marshal(normalize(f))
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i, err)
		}
		var def formdef.FormDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("form %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// normalize rewrites yaml map[any]any nodes into map[string]any so they can be
// re-encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}

package formdef

import (
	"encoding/json"
	"fmt"
)

// Option is one selectable choice of a select/radio/checkbox field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldDescriptor describes a single input element of a form. The schema is
// open: keys beyond the known ones are kept in Extra and survive a
// decode/encode round trip untouched.
type FieldDescriptor struct {
	Type        string                     `json:"type"`
	Name        string                     `json:"name"`
	Label       string                     `json:"label"`
	Placeholder string                     `json:"placeholder,omitempty"`
	Required    bool                       `json:"required"`
	Options     []Option                   `json:"options,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

var knownFieldKeys = map[string]bool{
	"type": true, "name": true, "label": true,
	"placeholder": true, "required": true, "options": true,
}

// UnmarshalJSON decodes the known keys and stashes everything else in Extra.
func (f *FieldDescriptor) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = FieldDescriptor{}
	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &f.Type); err != nil {
			return fmt.Errorf("type: %w", err)
		}
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &f.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	if v, ok := raw["label"]; ok {
		if err := json.Unmarshal(v, &f.Label); err != nil {
			return fmt.Errorf("label: %w", err)
		}
	}
	if v, ok := raw["placeholder"]; ok {
		if err := json.Unmarshal(v, &f.Placeholder); err != nil {
			return fmt.Errorf("placeholder: %w", err)
		}
	}
	if v, ok := raw["required"]; ok {
		if err := json.Unmarshal(v, &f.Required); err != nil {
			return fmt.Errorf("required: %w", err)
		}
	}
	if v, ok := raw["options"]; ok {
		if err := json.Unmarshal(v, &f.Options); err != nil {
			return fmt.Errorf("options: %w", err)
		}
	}
	for k, v := range raw {
		if knownFieldKeys[k] {
			continue
		}
		if f.Extra == nil {
			f.Extra = map[string]json.RawMessage{}
		}
		f.Extra[k] = v
	}
	return nil
}

// MarshalJSON emits the known keys plus the preserved extras.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, 6+len(f.Extra))
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if err := put("type", f.Type); err != nil {
		return nil, err
	}
	if err := put("name", f.Name); err != nil {
		return nil, err
	}
	if err := put("label", f.Label); err != nil {
		return nil, err
	}
	if f.Placeholder != "" {
		if err := put("placeholder", f.Placeholder); err != nil {
			return nil, err
		}
	}
	if err := put("required", f.Required); err != nil {
		return nil, err
	}
	if len(f.Options) > 0 {
		if err := put("options", f.Options); err != nil {
			return nil, err
		}
	}
	for k, v := range f.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

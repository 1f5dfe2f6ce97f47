package generator

import (
	"strings"
	"testing"

	"github.com/formdeck/formd/internal/formdef"
)

func TestStructName(t *testing.T) {
	cases := map[string]string{
		"Contact requests": "ContactRequest",
		"Orders":           "Order",
		"survey_response":  "SurveyResponse",
	}
	for in, want := range cases {
		if got := StructName(in); got != want {
			t.Errorf("StructName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateStruct(t *testing.T) {
	def := formdef.FormDefinition{
		Title: "Contact requests",
		Fields: []formdef.FieldDescriptor{
			{Type: "text", Name: "full_name", Required: true},
			{Type: "email", Name: "email"},
			{Type: "number", Name: "age"},
			{Type: "checkbox", Name: "subscribed"},
		},
	}
	src, err := GenerateStruct(def, StructOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(src)
	for _, want := range []string{
		"package forms",
		"type ContactRequest struct",
		"FullName",
		"string",
		"Age",
		"float64",
		"Subscribed",
		"bool",
		"json:\"full_name\" validate:\"required\"",
		"json:\"email\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "import \"time\"") {
		t.Error("time import must be omitted without date fields")
	}
	if strings.Contains(out, "json:\"email\" validate") {
		t.Error("optional field must not carry a validate tag")
	}
}

func TestGenerateStructTimeImport(t *testing.T) {
	def := formdef.FormDefinition{
		Title:  "Bookings",
		Fields: []formdef.FieldDescriptor{{Type: "date", Name: "starts_at"}},
	}
	src, err := GenerateStruct(def, StructOptions{Package: "models", Name: "Booking"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(src)
	if !strings.Contains(out, "package models") || !strings.Contains(out, "import \"time\"") {
		t.Fatalf("missing package or time import:\n%s", out)
	}
	if !strings.Contains(out, "StartsAt time.Time") {
		t.Fatalf("missing time.Time field:\n%s", out)
	}
}

func TestGenerateStructUnknownType(t *testing.T) {
	def := formdef.FormDefinition{
		Title:  "Widgets",
		Fields: []formdef.FieldDescriptor{{Type: "color", Name: "shade"}},
	}
	src, err := GenerateStruct(def, StructOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(src), "Shade string") {
		t.Fatalf("unknown field types must fall back to string:\n%s", src)
	}
}

func TestGenerateStructEmptyTitle(t *testing.T) {
	if _, err := GenerateStruct(formdef.FormDefinition{}, StructOptions{}); err == nil {
		t.Fatal("expected an error when no struct name can be derived")
	}
}

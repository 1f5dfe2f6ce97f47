package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	"github.com/formdeck/formd/internal/formdef"
)

// StructOptions controls Go source generation for a form definition.
type StructOptions struct {
	Package string
	Name    string
}

// StructName derives a Go type name from the form title. "Contact requests"
// becomes ContactRequest.
func StructName(title string) string {
	return strcase.ToCamel(inflection.Singular(title))
}

func fieldGoType(fieldType string) string {
	if t, ok := FieldTypeToGo[fieldType]; ok {
		return t
	}
	return "string"
}

// GenerateStruct renders a Go struct whose fields mirror the form's fields.
// The output is gofmt formatted.
func GenerateStruct(def formdef.FormDefinition, opts StructOptions) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "forms"
	}
	name := opts.Name
	if name == "" {
		name = StructName(def.Title)
	}
	if name == "" {
		return nil, fmt.Errorf("cannot derive struct name from title %q", def.Title)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	if needsTime(def.Fields) {
		buf.WriteString("import \"time\"\n\n")
	}
	fmt.Fprintf(&buf, "// %s is generated from the %q form definition.\n", name, def.Title)
	fmt.Fprintf(&buf, "type %s struct {\n", name)
	for _, f := range def.Fields {
		tag := fmt.Sprintf("`json:\"%s\"", f.Name)
		if f.Required {
			tag += " validate:\"required\""
		}
		tag += "`"
		fmt.Fprintf(&buf, "\t%s %s %s\n", strcase.ToCamel(f.Name), fieldGoType(f.Type), tag)
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

func needsTime(fields []formdef.FieldDescriptor) bool {
	for _, f := range fields {
		if strings.HasPrefix(fieldGoType(f.Type), "time.") {
			return true
		}
	}
	return false
}

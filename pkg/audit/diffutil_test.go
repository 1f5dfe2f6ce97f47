package audit

import (
	"strings"
	"testing"
)

func TestNormalizeJSONSortsKeys(t *testing.T) {
	a := NormalizeJSON([]byte(`{"b":1,"a":{"d":2,"c":3}}`))
	b := NormalizeJSON([]byte(`{"a":{"c":3,"d":2},"b":1}`))
	if a != b {
		t.Fatalf("normalization unstable:\n%s\n%s", a, b)
	}
	if !strings.Contains(a, "\"a\"") {
		t.Fatalf("unexpected output: %s", a)
	}
}

func TestNormalizeJSONInvalidPassthrough(t *testing.T) {
	in := `{broken`
	if got := NormalizeJSON([]byte(in)); got != in {
		t.Fatalf("invalid JSON should pass through, got %q", got)
	}
}

func TestUnifiedDiffCounts(t *testing.T) {
	before := []byte(`{"title":"Contact","method":"POST"}`)
	after := []byte(`{"title":"Contact v2","method":"POST","action":"/submit"}`)

	s, added, removed := UnifiedDiff(before, after)
	if s == "" {
		t.Fatal("expected non-empty diff")
	}
	if !strings.Contains(s, "--- before") || !strings.Contains(s, "+++ after") {
		t.Fatalf("missing file headers:\n%s", s)
	}
	if added != 2 || removed != 1 {
		t.Fatalf("want +2/-1, got +%d/-%d\n%s", added, removed, s)
	}
}

func TestUnifiedDiffIdentical(t *testing.T) {
	doc := []byte(`{"a":1}`)
	s, added, removed := UnifiedDiff(doc, doc)
	if s != "" || added != 0 || removed != 0 {
		t.Fatalf("identical docs should produce empty diff, got %q +%d/-%d", s, added, removed)
	}
}

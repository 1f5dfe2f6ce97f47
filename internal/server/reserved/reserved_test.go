package reserved

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	Load(filepath.Join(t.TempDir(), "missing.yaml"))
	for _, n := range []string{"id", "_method", "_token", "csrf_token"} {
		if !Is(n) {
			t.Errorf("%q should be reserved by default", n)
		}
	}
	if Is("email") {
		t.Error("email should not be reserved")
	}
}

func TestIsCaseInsensitive(t *testing.T) {
	Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !Is("CSRF_TOKEN") || !Is("Id") {
		t.Fatal("lookup should ignore case")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "reserved.yaml")
	data := "reserved_fields:\n  - internal_ref\n  - Locked\n"
	if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	Load(p)
	t.Cleanup(func() { Load(filepath.Join(dir, "missing.yaml")) })

	if !Is("internal_ref") || !Is("locked") {
		t.Fatalf("file entries not loaded: %v", Names())
	}
	if Is("csrf_token") {
		t.Fatal("file contents should replace the defaults")
	}
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FD_RESERVED_FIELDS", "alpha, beta")
	Load(filepath.Join(dir, "missing.yaml"))
	t.Cleanup(func() {
		os.Unsetenv("FD_RESERVED_FIELDS")
		Load(filepath.Join(dir, "missing.yaml"))
	})

	if !Is("alpha") || !Is("beta") {
		t.Fatalf("env entries not loaded: %v", Names())
	}
	if Is("id") {
		t.Fatal("env should replace the defaults")
	}
}

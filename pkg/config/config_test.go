package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := &File{
		Active: "p1",
		Profiles: map[string]Profile{
			"p1": {Name: "p1", APIURL: "http://api", Token: "tok", Insecure: true},
		},
		Version: 1,
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err := Path()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v", info.Mode().Perm())
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("cfg diff (-want +got)\n%s", diff)
	}
}

func TestProfileSelection(t *testing.T) {
	f := &File{}
	f.applyDefaults()
	f.SetProfile(Profile{Name: "staging", APIURL: "http://stage", Token: "t1"})
	f.SetProfile(Profile{Name: "prod", APIURL: "http://prod", Token: "t2"})

	if f.Active != "prod" {
		t.Fatalf("active = %q", f.Active)
	}
	if got := f.Profile(""); got.APIURL != "http://prod" {
		t.Fatalf("active profile = %+v", got)
	}
	if got := f.Profile("staging"); got.APIURL != "http://stage" {
		t.Fatalf("named profile = %+v", got)
	}
	if err := f.Use("staging"); err != nil {
		t.Fatalf("use: %v", err)
	}
	if f.Active != "staging" {
		t.Fatalf("active after use = %q", f.Active)
	}
	if err := f.Use("nope"); err == nil {
		t.Fatal("use of unknown profile must fail")
	}
	if diff := cmp.Diff([]string{"prod", "staging"}, f.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestSetProfileDefaultsName(t *testing.T) {
	f := &File{}
	f.applyDefaults()
	f.SetProfile(Profile{APIURL: "http://api", Token: "tok"})
	if f.Active != DefaultProfile {
		t.Fatalf("active = %q", f.Active)
	}
	if f.Profiles[DefaultProfile].Name != DefaultProfile {
		t.Fatalf("stored profile = %+v", f.Profiles[DefaultProfile])
	}
}

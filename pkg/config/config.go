package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultProfile is the profile used when none was ever selected.
const DefaultProfile = "default"

// Profile is one saved API endpoint with its credentials.
type Profile struct {
	Name     string `json:"name"`
	APIURL   string `json:"apiUrl"`
	Token    string `json:"token"`
	Insecure bool   `json:"insecure"`
}

// File is the on-disk store at ~/.formctl/config.json.
type File struct {
	Active   string             `json:"active"`
	Profiles map[string]Profile `json:"profiles"`
	Version  int                `json:"version"`
}

// Path returns the config file location, creating ~/.formctl if needed.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".formctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the store. A missing file yields an empty store rather than an
// error so first-run commands work.
func Load() (*File, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f := &File{}
			f.applyDefaults()
			return f, nil
		}
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	f.applyDefaults()
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	if f.Active == "" {
		f.Active = DefaultProfile
	}
	if f.Version == 0 {
		f.Version = 1
	}
}

// Profile returns the named profile; an empty name selects the active one.
func (f *File) Profile(name string) Profile {
	if name == "" {
		name = f.Active
	}
	return f.Profiles[name]
}

// SetProfile stores p under its name and makes it the active profile.
func (f *File) SetProfile(p Profile) {
	if p.Name == "" {
		p.Name = DefaultProfile
	}
	f.Profiles[p.Name] = p
	f.Active = p.Name
}

// Use switches the active profile to an existing one.
func (f *File) Use(name string) error {
	if _, ok := f.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	f.Active = name
	return nil
}

// Names lists the profile names sorted, for stable output.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for n := range f.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Save writes the store atomically with owner-only permissions.
func Save(f *File) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

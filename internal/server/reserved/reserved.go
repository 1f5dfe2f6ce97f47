package reserved

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/formdeck/formd/internal/logger"
)

var (
	mu    sync.RWMutex
	names map[string]bool
)

// defaults apply when no configuration file is present.
var defaults = []string{"id", "_method", "_token", "csrf_token"}

// Load reads reserved field names from the given YAML file. The environment
// variable FD_RESERVED_FIELDS overrides the file contents.
func Load(path string) {
	set := map[string]bool{}
	for _, n := range defaults {
		set[n] = true
	}
	p := filepath.Clean(path)
	data, err := os.ReadFile(p) // #nosec G304 -- configuration path provided by operator
	if err == nil {
		var cfg struct {
			Reserved []string `yaml:"reserved_fields"`
		}
		if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr == nil && len(cfg.Reserved) > 0 {
			set = map[string]bool{}
			for _, n := range cfg.Reserved {
				if n = strings.TrimSpace(n); n != "" {
					set[strings.ToLower(n)] = true
				}
			}
		}
	}
	if env := os.Getenv("FD_RESERVED_FIELDS"); env != "" {
		set = map[string]bool{}
		for _, n := range strings.Split(env, ",") {
			if n = strings.TrimSpace(n); n != "" {
				set[strings.ToLower(n)] = true
			}
		}
	}
	mu.Lock()
	names = set
	mu.Unlock()
}

// Is returns true if the field name is reserved.
func Is(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return names[strings.ToLower(name)]
}

// Names returns the reserved field names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out
}

// Watch reloads the configuration file whenever it changes. It returns once
// the context is done; callers run it in a goroutine.
func Watch(ctx context.Context, path string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(filepath.Clean(path))); err != nil {
		return err
	}
	for {
		select {
		case ev := <-fw.Events:
			if filepath.Base(ev.Name) != filepath.Base(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			Load(path)
			logger.L.Info("reloaded reserved field names", "path", path)
		case err := <-fw.Errors:
			if err != nil {
				logger.L.Warn("reserved watcher", "err", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func init() {
	names = map[string]bool{}
	for _, n := range defaults {
		names[n] = true
	}
}

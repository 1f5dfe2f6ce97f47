package events

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("FD_TEST_WEBHOOK_SECRET", "hush")
	doc := `
webhook:
  enabled: true
  endpoint: https://hooks.example.com/formd
  secret: ${FD_TEST_WEBHOOK_SECRET}
retry:
  max_attempts: 5
  initial_delay: 200ms
`
	path := filepath.Join(t.TempDir(), "events.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Webhook.Secret != "hush" {
		t.Fatalf("secret = %q", cfg.Webhook.Secret)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.InitialDelay != 200*time.Millisecond {
		t.Fatalf("retry = %+v", cfg.Retry)
	}

	sinks, err := cfg.BuildSinks()
	if err != nil {
		t.Fatalf("build sinks: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("want 1 sink, got %d", len(sinks))
	}
	if _, ok := sinks[0].(*WebhookSink); !ok {
		t.Fatalf("sink type %T", sinks[0])
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sinks, err := cfg.BuildSinks()
	if err != nil || len(sinks) != 0 {
		t.Fatalf("zero config must build no sinks, got %d %v", len(sinks), err)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
server:
  addr: ":8080"
matchmaking:
  interval: 250ms
log:
  level: debug
`)
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := Default()
	want.Server.Addr = ":8080"
	want.Matchmaking.Interval = 250 * time.Millisecond
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "server:\n  port: 1\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"empty addr", "server:\n  addr: \"\"\n"},
		{"zero interval", "matchmaking:\n  interval: 0s\n"},
		{"negative buffer", "websocket:\n  read_buffer_size: -1\n"},
		{"not yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidConfig", tt.data, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "chessbot.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error: %v", path, err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

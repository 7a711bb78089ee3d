package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APPCTL_TIMEOUT", "45")
	t.Setenv("APPCTL_POLL_INTERVAL", "250")
	t.Setenv("APPCTL_LOCK_DIR", "/run/user/1000/appctl")
	t.Setenv("APPCTL_TITLES_ONLY", "false")
	t.Setenv("APPCTL_JOURNAL", "true")
	t.Setenv("APPCTL_DB_PATH", "/tmp/journal.db")
	t.Setenv("APPCTL_LOG_LEVEL", "debug")
	t.Setenv("APPCTL_LOG_JSON", "1")

	cfg := New()

	if cfg.Launch.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Launch.Timeout)
	}
	if cfg.Launch.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.Launch.PollInterval)
	}
	if cfg.Launch.LockDir != "/run/user/1000/appctl" {
		t.Errorf("LockDir = %s", cfg.Launch.LockDir)
	}
	if cfg.Windows.TitlesOnly {
		t.Error("TitlesOnly = true, want false")
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/journal.db" {
		t.Errorf("Journal = %+v", cfg.Journal)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("APPCTL_TIMEOUT", "soon")
	t.Setenv("APPCTL_POLL_INTERVAL", "1")
	t.Setenv("APPCTL_TITLES_ONLY", "maybe")

	cfg := New()
	def := Default()

	if cfg.Launch.Timeout != def.Launch.Timeout {
		t.Errorf("Timeout = %v, want default %v", cfg.Launch.Timeout, def.Launch.Timeout)
	}
	if cfg.Launch.PollInterval != def.Launch.PollInterval {
		t.Errorf("PollInterval = %v, want default %v", cfg.Launch.PollInterval, def.Launch.PollInterval)
	}
	if !cfg.Windows.TitlesOnly {
		t.Error("TitlesOnly changed by an invalid value")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "zero timeout is allowed", modify: func(c *Config) { c.Launch.Timeout = 0 }},
		{name: "negative timeout", modify: func(c *Config) { c.Launch.Timeout = -time.Second }, wantErr: "negative"},
		{name: "interval too low", modify: func(c *Config) { c.Launch.PollInterval = time.Millisecond }, wantErr: "less than"},
		{name: "interval too high", modify: func(c *Config) { c.Launch.PollInterval = time.Hour }, wantErr: "greater than"},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "chatty" }, wantErr: "log level"},
		{name: "empty pin", modify: func(c *Config) { c.Versions["app"] = " " }, wantErr: "empty version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[launch]
timeout = "1m"
poll_interval = "500ms"

[windows]
titles_only = false

[journal]
enabled = true

[log]
level = "warn"

[versions]
"notepad.exe" = "10.0.19041.1"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APPCTL_LOG_LEVEL", "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Launch.Timeout != time.Minute || cfg.Launch.PollInterval != 500*time.Millisecond {
		t.Errorf("Launch = %+v", cfg.Launch)
	}
	if cfg.Windows.TitlesOnly {
		t.Error("TitlesOnly = true, want false from file")
	}
	if !cfg.Journal.Enabled {
		t.Error("Journal.Enabled = false, want true from file")
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %s, want env value error", cfg.Log.Level)
	}
	if cfg.Versions["notepad.exe"] != "10.0.19041.1" {
		t.Errorf("Versions = %v", cfg.Versions)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[launch\ntimeout ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() of malformed TOML succeeded")
	}

	badDuration := filepath.Join(dir, "duration.toml")
	if err := os.WriteFile(badDuration, []byte("[launch]\ntimeout = \"twenty\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(badDuration); err == nil || !strings.Contains(err.Error(), "launch.timeout") {
		t.Errorf("Load() error = %v, want launch.timeout error", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err != nil {
		t.Errorf("Load() of missing file error: %v", err)
	}
}

func TestString(t *testing.T) {
	cfg := Default()
	cfg.Versions["b"] = "2"
	cfg.Versions["a"] = "1"

	s := cfg.String()
	for _, want := range []string{"Timeout: 20s", "Titles Only: true", "Versions: a=1, b=2"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}

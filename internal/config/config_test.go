package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.CheckEvery != 5*time.Minute {
		t.Fatalf("CheckEvery = %v", cfg.CheckEvery)
	}
	if cfg.ConfirmDelay != 30*time.Second {
		t.Fatalf("ConfirmDelay = %v", cfg.ConfirmDelay)
	}
	if !cfg.Enabled() {
		t.Fatal("defaults must enable monitoring")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("NETWATCH_CHECK_MINUTES", "2")
	t.Setenv("NETWATCH_CONFIRM_SECONDS", "45")
	t.Setenv("NETWATCH_HEARTBEAT_DIR", "/var/tmp/hb")
	t.Setenv("NETWATCH_DEBUG", "1")

	cfg := FromEnv()
	if cfg.CheckEvery != 2*time.Minute {
		t.Fatalf("CheckEvery = %v", cfg.CheckEvery)
	}
	if cfg.ConfirmDelay != 45*time.Second {
		t.Fatalf("ConfirmDelay = %v", cfg.ConfirmDelay)
	}
	if cfg.HeartbeatDir != "/var/tmp/hb" {
		t.Fatalf("HeartbeatDir = %q", cfg.HeartbeatDir)
	}
	if !cfg.Debug {
		t.Fatal("debug not picked up")
	}
}

func TestFromEnv_ZeroMinutesDisables(t *testing.T) {
	t.Setenv("NETWATCH_CHECK_MINUTES", "0")
	cfg := FromEnv()
	if cfg.Enabled() {
		t.Fatal("zero check frequency must disable the subsystem")
	}
}

func TestLoad_YAMLFileWithEnvWinning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netwatch.yaml")
	data := []byte("check_minutes: 10\nconfirm_seconds: 20\nheartbeat_dir: /from/file\ndebug: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NETWATCH_CONFIRM_SECONDS", "50")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckEvery != 10*time.Minute {
		t.Fatalf("CheckEvery = %v, want value from file", cfg.CheckEvery)
	}
	if cfg.ConfirmDelay != 50*time.Second {
		t.Fatalf("ConfirmDelay = %v, env must win over the file", cfg.ConfirmDelay)
	}
	if cfg.HeartbeatDir != "/from/file" || !cfg.Debug {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not error: %v", err)
	}
	if cfg.CheckEvery != 5*time.Minute {
		t.Fatalf("CheckEvery = %v", cfg.CheckEvery)
	}
}

func TestLoad_BadYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("check_minutes: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config must surface an error to the caller")
	}
}

func TestClamp(t *testing.T) {
	cfg := Config{CheckEvery: -time.Minute, ConfirmDelay: -1, ProbeTimeout: 0}
	cfg.clamp()
	if cfg.CheckEvery != 0 {
		t.Fatalf("negative interval must clamp to disabled, got %v", cfg.CheckEvery)
	}
	if cfg.ConfirmDelay != 30*time.Second || cfg.ProbeTimeout != 10*time.Second {
		t.Fatalf("clamp results: %+v", cfg)
	}
}

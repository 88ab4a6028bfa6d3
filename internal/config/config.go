package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob the watchdog subsystem reads. The surrounding
// attendant tool owns the values; this subsystem only consumes them.
type Config struct {
	// CheckEvery is the primary-probe cadence. Zero disables the whole
	// subsystem.
	CheckEvery time.Duration
	// ConfirmDelay is how long a primary failure must persist, with no
	// intervening success, before a confirmation probe runs.
	ConfirmDelay time.Duration
	// ProbeTimeout bounds each individual probe call.
	ProbeTimeout time.Duration
	// HeartbeatDir is the heartbeat-log folder. Empty disables logging.
	HeartbeatDir string
	// LogDir is the debug/trace log folder. Empty logs nothing.
	LogDir string
	// ControlDir overrides where control files live; empty means the OS
	// temp directory.
	ControlDir string
	// Debug turns on the trace log and the loopback status endpoint.
	Debug bool
	// StatusAddr is the loopback bind address of the debug status API.
	StatusAddr string
}

// fileConfig is the YAML schema. Cadence is expressed in whole minutes and
// seconds, matching how the attendant tool's settings file talks about
// check frequency. Pointer fields distinguish "absent" from zero.
type fileConfig struct {
	CheckMinutes        *int    `yaml:"check_minutes"`
	ConfirmSeconds      *int    `yaml:"confirm_seconds"`
	ProbeTimeoutSeconds *int    `yaml:"probe_timeout_seconds"`
	HeartbeatDir        *string `yaml:"heartbeat_dir"`
	LogDir              *string `yaml:"log_dir"`
	ControlDir          *string `yaml:"control_dir"`
	Debug               *bool   `yaml:"debug"`
	StatusAddr          *string `yaml:"status_addr"`
}

func (f fileConfig) apply(c *Config) {
	if f.CheckMinutes != nil {
		c.CheckEvery = time.Duration(*f.CheckMinutes) * time.Minute
	}
	if f.ConfirmSeconds != nil {
		c.ConfirmDelay = time.Duration(*f.ConfirmSeconds) * time.Second
	}
	if f.ProbeTimeoutSeconds != nil {
		c.ProbeTimeout = time.Duration(*f.ProbeTimeoutSeconds) * time.Second
	}
	if f.HeartbeatDir != nil {
		c.HeartbeatDir = *f.HeartbeatDir
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.ControlDir != nil {
		c.ControlDir = *f.ControlDir
	}
	if f.Debug != nil {
		c.Debug = *f.Debug
	}
	if f.StatusAddr != nil {
		c.StatusAddr = *f.StatusAddr
	}
}

// Default cadence matches the attendant tool: probe every five minutes,
// confirm after thirty seconds of sustained failure.
func Defaults() Config {
	return Config{
		CheckEvery:   5 * time.Minute,
		ConfirmDelay: 30 * time.Second,
		ProbeTimeout: 10 * time.Second,
		StatusAddr:   "127.0.0.1:9190",
	}
}

// Load reads a YAML config file and applies environment overrides on top.
// A missing file is fine; env-only configuration is supported.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
			fc.apply(&cfg)
		}
	}
	cfg.applyEnv()
	cfg.clamp()
	return cfg, nil
}

// FromEnv builds a config from defaults plus environment only.
func FromEnv() Config {
	cfg := Defaults()
	cfg.applyEnv()
	cfg.clamp()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NETWATCH_CHECK_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.CheckEvery = time.Duration(n) * time.Minute
		}
	}
	if v := os.Getenv("NETWATCH_CONFIRM_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ConfirmDelay = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("NETWATCH_PROBE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ProbeTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("NETWATCH_HEARTBEAT_DIR"); v != "" {
		c.HeartbeatDir = v
	}
	if v := os.Getenv("NETWATCH_LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("NETWATCH_CONTROL_DIR"); v != "" {
		c.ControlDir = v
	}
	if v := os.Getenv("NETWATCH_DEBUG"); v != "" {
		c.Debug = v == "1" || v == "true"
	}
	if v := os.Getenv("NETWATCH_STATUS_ADDR"); v != "" {
		c.StatusAddr = v
	}
}

// clamp pulls nonsense values back to usable ones. CheckEvery zero is kept
// as-is: it is the documented off switch.
func (c *Config) clamp() {
	if c.CheckEvery < 0 {
		c.CheckEvery = 0
	}
	if c.ConfirmDelay <= 0 {
		c.ConfirmDelay = 30 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
}

// Enabled reports whether the subsystem should run at all.
func (c Config) Enabled() bool {
	return c.CheckEvery > 0
}

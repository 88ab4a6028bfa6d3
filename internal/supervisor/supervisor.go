package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pedalvalet/netwatch/internal/config"
	"github.com/pedalvalet/netwatch/internal/control"
	"github.com/pedalvalet/netwatch/internal/heartbeat"
)

const stopGrace = 5 * time.Second

// Supervisor is the parent-side handle on the watchdog child process. It is
// the sole writer of the control file and the only entry point the rest of
// the application may call. One live child per parent process; the control
// file is keyed by the parent PID.
type Supervisor struct {
	cfg     config.Config
	log     *zap.Logger
	channel *control.Channel
	hb      *heartbeat.Logger
	binPath string

	mu            sync.Mutex
	cmd           *exec.Cmd
	done          chan struct{}
	suppressUntil time.Time
	debug         bool
	warnedExit    bool
}

// New builds a supervisor. binPath locates the watchdog binary; empty means
// "netwatch" next to the current executable, falling back to $PATH.
func New(cfg config.Config, binPath string, log *zap.Logger) (*Supervisor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	hb, err := heartbeat.Open(cfg.HeartbeatDir)
	if err != nil {
		return nil, fmt.Errorf("heartbeat log: %w", err)
	}
	path := control.PathFor(cfg.ControlDir, os.Getpid())
	return &Supervisor{
		cfg:     cfg,
		log:     log,
		channel: control.NewChannel(path, log),
		hb:      hb,
		binPath: binPath,
		debug:   cfg.Debug,
	}, nil
}

// StartMonitor writes the initial control state and spawns the watchdog.
// It silently declines when monitoring is disabled by configuration or the
// platform is unsupported, so the host application stays usable without
// connectivity monitoring.
func (s *Supervisor) StartMonitor(initialSuppressSeconds int) {
	if !s.cfg.Enabled() {
		s.log.Debug("monitor_not_started", zap.String("reason", "check frequency zero"))
		return
	}
	if !control.Supported() {
		s.log.Debug("monitor_not_started", zap.String("reason", "platform unsupported"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressUntil = time.Now().Add(time.Duration(initialSuppressSeconds) * time.Second)
	if _, err := s.channel.Write(s.suppressUntil, s.debug); err != nil {
		s.log.Warn("control_write_failed", zap.Error(err))
	}
	s.startLocked()
}

// Enable starts the watchdog if it is not running and records the event.
func (s *Supervisor) Enable() {
	if !s.cfg.Enabled() || !control.Supported() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
	s.system("ENABLED")
}

// Disable stops the watchdog and records the event.
func (s *Supervisor) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.system("DISABLED")
}

// MonitorOff suppresses alerting for the given number of minutes. Last
// write wins. Starts the watchdog if it is not running: detection keeps
// going, only visibility is muted.
func (s *Supervisor) MonitorOff(minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressUntil = time.Now().Add(time.Duration(minutes) * time.Minute)
	if _, err := s.channel.Write(s.suppressUntil, s.debug); err != nil {
		return fmt.Errorf("suppress write: %w", err)
	}
	s.startLocked()
	s.nudgeLocked()
	return nil
}

// MonitorOn lifts any suppression immediately.
func (s *Supervisor) MonitorOn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressUntil = time.Now().Add(-time.Second)
	if _, err := s.channel.Write(s.suppressUntil, s.debug); err != nil {
		return fmt.Errorf("resume write: %w", err)
	}
	s.startLocked()
	s.nudgeLocked()
	return nil
}

// SetDebug propagates the debug flag without disturbing the suppression
// window.
func (s *Supervisor) SetDebug(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = enabled
	if _, err := s.channel.Write(s.suppressUntil, s.debug); err != nil {
		return fmt.Errorf("debug write: %w", err)
	}
	s.nudgeLocked()
	return nil
}

// Running reports whether a child is currently alive.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Close is the exit hook: stop the child and clean up the control file.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()

	var errs error
	errs = multierr.Append(errs, s.channel.Remove())
	errs = multierr.Append(errs, s.hb.Close())
	return errs
}

func (s *Supervisor) startLocked() {
	if s.cmd != nil {
		return
	}
	cmd := exec.Command(s.resolveBin(), "--control-file", s.channel.Path)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("NETWATCH_CHECK_MINUTES=%d", int(s.cfg.CheckEvery.Minutes())),
		fmt.Sprintf("NETWATCH_CONFIRM_SECONDS=%d", int(s.cfg.ConfirmDelay.Seconds())),
		fmt.Sprintf("NETWATCH_HEARTBEAT_DIR=%s", s.cfg.HeartbeatDir),
		fmt.Sprintf("NETWATCH_LOG_DIR=%s", s.cfg.LogDir),
	)
	if err := cmd.Start(); err != nil {
		// Surfaced once; the parent stays usable without the watchdog.
		if !s.warnedExit {
			s.warnedExit = true
			s.log.Warn("monitor_spawn_failed", zap.Error(err))
		}
		return
	}
	s.cmd = cmd
	done := make(chan struct{})
	s.done = done
	s.log.Info("monitor_started", zap.Int("pid", cmd.Process.Pid))

	go func() {
		err := cmd.Wait()
		close(done)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cmd != cmd {
			return
		}
		s.cmd = nil
		if err != nil && !s.warnedExit {
			s.warnedExit = true
			s.log.Warn("monitor_exited_unexpectedly", zap.Error(err))
		}
	}()
}

func (s *Supervisor) stopLocked() {
	if s.cmd == nil {
		return
	}
	cmd := s.cmd
	done := s.done
	s.cmd = nil

	_ = cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-done:
	case <-time.After(stopGrace):
		_ = cmd.Process.Kill()
		<-done
	}
	s.log.Info("monitor_stopped", zap.Int("pid", cmd.Process.Pid))
}

// nudgeLocked asks the child to re-read the control file now rather than at
// the next sleep chunk. Best effort.
func (s *Supervisor) nudgeLocked() {
	if s.cmd != nil && s.cmd.Process != nil {
		control.Signal(s.cmd.Process.Pid)
	}
}

// system appends a SYS heartbeat record for a lifecycle event.
func (s *Supervisor) system(status string) {
	if err := s.hb.Append("SUPV", heartbeat.KindSystem, status); err != nil {
		s.log.Debug("heartbeat_write_failed", zap.Error(err))
	}
}

func (s *Supervisor) resolveBin() string {
	if s.binPath != "" {
		return s.binPath
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "netwatch")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "netwatch"
}

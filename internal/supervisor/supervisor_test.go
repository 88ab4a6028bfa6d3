//go:build !windows

package supervisor

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pedalvalet/netwatch/internal/config"
	"github.com/pedalvalet/netwatch/internal/control"
	"github.com/pedalvalet/netwatch/internal/heartbeat"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.ControlDir = t.TempDir()
	cfg.HeartbeatDir = cfg.ControlDir
	return cfg
}

// a child that just sits there, so start/stop paths are exercised without
// the real watchdog binary.
func sleeperBin(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "netwatch")
	script := "#!/bin/sh\nsleep 60\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func readState(t *testing.T, s *Supervisor) *control.State {
	t.Helper()
	st, err := s.channel.Read()
	if err != nil {
		t.Fatalf("read control: %v", err)
	}
	if st == nil {
		t.Fatal("control file missing")
	}
	return st
}

func approxEpoch(t *testing.T, got float64, want time.Time) {
	t.Helper()
	wantF := float64(want.UnixNano()) / float64(time.Second)
	if diff := got - wantF; diff > 2 || diff < -2 {
		t.Fatalf("suppress_until = %f, want about %f", got, wantF)
	}
}

func TestSupervisor_DeclinesWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.CheckEvery = 0
	s, err := New(cfg, "/nonexistent/netwatch", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.StartMonitor(30)
	if s.Running() {
		t.Fatal("disabled configuration must not spawn a child")
	}
	if st, _ := s.channel.Read(); st != nil {
		t.Fatal("disabled configuration must not write a control file")
	}
}

func TestSupervisor_MonitorOffLastWriteWins(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, "/nonexistent/netwatch", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.MonitorOff(30); err != nil {
		t.Fatal(err)
	}
	first := readState(t, s)

	if err := s.MonitorOff(120); err != nil {
		t.Fatal(err)
	}
	second := readState(t, s)

	if first.CommandToken == second.CommandToken {
		t.Fatal("every write must mint a fresh token")
	}
	approxEpoch(t, second.SuppressUntil, time.Now().Add(120*time.Minute))
}

func TestSupervisor_MonitorOnResumesImmediately(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, "/nonexistent/netwatch", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.MonitorOff(60); err != nil {
		t.Fatal(err)
	}
	if err := s.MonitorOn(); err != nil {
		t.Fatal(err)
	}
	st := readState(t, s)
	if st.Suppressed(time.Now()) {
		t.Fatal("monitor_on must leave no active suppression window")
	}
}

func TestSupervisor_SetDebugPreservesSuppression(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, "/nonexistent/netwatch", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.MonitorOff(90); err != nil {
		t.Fatal(err)
	}
	before := readState(t, s)

	if err := s.SetDebug(true); err != nil {
		t.Fatal(err)
	}
	after := readState(t, s)

	if !after.Debug {
		t.Fatal("debug flag not propagated")
	}
	if diff := after.SuppressUntil - before.SuppressUntil; diff > 0.001 || diff < -0.001 {
		t.Fatalf("SetDebug moved suppress_until from %f to %f", before.SuppressUntil, after.SuppressUntil)
	}
}

func TestSupervisor_StartStopChild(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, sleeperBin(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.StartMonitor(0)
	if !s.Running() {
		t.Fatal("child did not start")
	}

	s.Disable()
	if s.Running() {
		t.Fatal("child still running after Disable")
	}

	s.Enable()
	if !s.Running() {
		t.Fatal("child did not restart on Enable")
	}
}

func TestSupervisor_LifecycleWritesSystemHeartbeats(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, sleeperBin(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	s.StartMonitor(0)
	s.Disable()
	s.Enable()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(cfg.HeartbeatDir, heartbeat.FileName))
	if err != nil {
		t.Fatalf("heartbeat log: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	var statuses []string
	for _, row := range rows {
		if row[3] != string(heartbeat.KindSystem) {
			t.Fatalf("unexpected non-SYS row from supervisor: %v", row)
		}
		statuses = append(statuses, row[4])
	}
	want := []string{"DISABLED", "ENABLED"}
	if len(statuses) != len(want) {
		t.Fatalf("SYS records %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("SYS records %v, want %v", statuses, want)
		}
	}
}

func TestSupervisor_SpawnFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, "/nonexistent/netwatch", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.StartMonitor(0)
	if s.Running() {
		t.Fatal("spawn of a missing binary cannot succeed")
	}
	// The control file must still be in place for a later retry.
	readState(t, s)
}

func TestSupervisor_CloseRemovesControlFile(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, sleeperBin(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	s.StartMonitor(0)
	path := s.channel.Path
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("control file left behind")
	}
	if s.Running() {
		t.Fatal("child outlived Close")
	}
}

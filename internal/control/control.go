package control

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the on-disk control document, the sole medium of parent-to-child
// configuration. The parent is the only writer; the watchdog only reads.
type State struct {
	SuppressUntil float64 `json:"suppress_until"`
	CommandToken  string  `json:"command_token"`
	Debug         bool    `json:"debug"`
	WrittenAt     float64 `json:"written_at"`
}

// Suppressed reports whether notification is muted at the given instant.
func (s *State) Suppressed(now time.Time) bool {
	return s != nil && epoch(now) < s.SuppressUntil
}

// Channel reads and writes one control file.
type Channel struct {
	Path string
	Log  *zap.Logger
}

func NewChannel(path string, log *zap.Logger) *Channel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Channel{Path: path, Log: log}
}

// PathFor returns the control-file path for one parent process. Keying on
// the parent PID keeps concurrent attendant sessions on one host from
// clobbering each other.
func PathFor(dir string, parentPID int) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("netwatch-control-%d.json", parentPID))
}

// Write atomically replaces the control document and returns the fresh
// command token. The temp-file/fsync/rename dance guarantees a concurrent
// reader sees either the prior document or the new one, never a torn write.
func (c *Channel) Write(suppressUntil time.Time, debug bool) (string, error) {
	st := State{
		SuppressUntil: epoch(suppressUntil),
		CommandToken:  uuid.NewString(),
		Debug:         debug,
		WrittenAt:     epoch(time.Now()),
	}

	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode control state: %w", err)
	}

	dir := filepath.Dir(c.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.Path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp control file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp control file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sync temp control file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp control file: %w", err)
	}
	if err := os.Rename(tmpName, c.Path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename control file into place: %w", err)
	}

	c.Log.Debug("control_written",
		zap.String("path", c.Path),
		zap.Float64("suppress_until", st.SuppressUntil),
		zap.Bool("debug", debug),
		zap.String("token", st.CommandToken),
	)
	return st.CommandToken, nil
}

// Read loads the current control document. A missing file means "no
// suppression, not debug" and returns (nil, nil); a malformed one is
// ignored the same way so the reader keeps its previous in-memory state.
// Read never propagates a parse error.
func (c *Channel) Read() (*State, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		c.Log.Debug("control_read_error", zap.String("path", c.Path), zap.Error(err))
		return nil, nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		c.Log.Debug("control_malformed", zap.String("path", c.Path), zap.Error(err))
		return nil, nil
	}
	return &st, nil
}

// Remove deletes the control file. Used by the parent on shutdown.
func (c *Channel) Remove() error {
	if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

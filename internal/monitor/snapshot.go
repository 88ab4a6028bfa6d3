package monitor

import "time"

// Snapshot is a point-in-time view of the loop for the debug status
// endpoint. The loop itself is single-threaded; the snapshot is the only
// state shared with other goroutines.
type Snapshot struct {
	Phase          string    `json:"phase"`
	PendingDiag    string    `json:"pending_diag,omitempty"`
	PendingSince   time.Time `json:"pending_since"`
	NotifiedAt     time.Time `json:"notified_at"`
	SuppressedTill float64   `json:"suppressed_until,omitempty"`
	Debug          bool      `json:"debug"`
}

func (l *Loop) publish() {
	s := Snapshot{Phase: l.phase.String()}
	if l.pending != nil {
		s.PendingDiag = l.pending.diag
		s.PendingSince = l.pending.firstFailure
	}
	if !l.notifiedAt.IsZero() {
		s.NotifiedAt = l.notifiedAt
	}
	if l.ctrl != nil {
		s.SuppressedTill = l.ctrl.SuppressUntil
		s.Debug = l.ctrl.Debug
	}
	l.mu.Lock()
	l.snap = s
	l.mu.Unlock()
}

// Status returns the latest published snapshot.
func (l *Loop) Status() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pedalvalet/netwatch/internal/alert"
	"github.com/pedalvalet/netwatch/internal/control"
	"github.com/pedalvalet/netwatch/internal/heartbeat"
	"github.com/pedalvalet/netwatch/internal/metrics"
	"github.com/pedalvalet/netwatch/internal/probe"
)

// MinimumSleep bounds how long the loop sleeps in one chunk, so reload and
// shutdown requests are honored within a second instead of after a full
// multi-minute interval.
const MinimumSleep = time.Second

// Options fixes the loop's cadence.
type Options struct {
	// CheckEvery is the primary-probe interval.
	CheckEvery time.Duration
	// ConfirmDelay is how long a primary failure must persist before a
	// confirmation probe runs.
	ConfirmDelay time.Duration
}

// Cooldown is the minimum spacing between two notifications for one
// sustained outage.
func (o Options) Cooldown() time.Duration {
	if o.CheckEvery > o.ConfirmDelay {
		return o.CheckEvery
	}
	return o.ConfirmDelay
}

type phase int

const (
	phaseStartup phase = iota
	phaseSteady
	phasePending
	phaseAlerted
)

func (p phase) String() string {
	switch p {
	case phaseStartup:
		return "startup"
	case phasePending:
		return "pending"
	case phaseAlerted:
		return "alerted"
	default:
		return "steady"
	}
}

// pendingAlert is the in-memory record of an unconfirmed suspected outage.
// Never persisted; a watchdog restart starts clean.
type pendingAlert struct {
	firstFailure time.Time
	diag         string
	probeID      string
}

// Loop is the watchdog's single-threaded scheduler. Exactly one probe runs
// per relevant tick; heartbeat records are written in execution order.
type Loop struct {
	opts     Options
	registry *probe.Registry
	primary  probe.Selector
	confirm  probe.Selector
	sink     alert.Sink
	hb       *heartbeat.Logger
	channel  *control.Channel
	log      *zap.Logger
	now      func() time.Time

	phase       phase
	pending     *pendingAlert
	notifiedAt  time.Time
	nextPrimary time.Time
	confirmAt   time.Time

	ctrl      *control.State
	lastToken string

	reload atomic.Bool
	wake   chan struct{}

	mu   sync.Mutex
	snap Snapshot
}

// New builds a loop. A nil sink, heartbeat logger, or logger is replaced by
// a no-op; selectors default to random.
func New(opts Options, reg *probe.Registry, ch *control.Channel, sink alert.Sink, hb *heartbeat.Logger, log *zap.Logger) *Loop {
	if sink == nil {
		sink = alert.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		opts:     opts,
		registry: reg,
		primary:  probe.NewRandomSelector(nil),
		confirm:  probe.NewRandomSelector(nil),
		sink:     sink,
		hb:       hb,
		channel:  ch,
		log:      log,
		now:      time.Now,
		wake:     make(chan struct{}, 1),
	}
}

// SetSelectors overrides probe selection, mainly for deterministic tests.
func (l *Loop) SetSelectors(primary, confirm probe.Selector) {
	l.primary = primary
	l.confirm = confirm
}

// RequestReload asks the loop to re-read the control file promptly. Safe to
// call from signal handlers and watcher goroutines.
func (l *Loop) RequestReload() {
	l.reload.Store(true)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drives the loop until ctx is cancelled. The first interval is spent
// idle so a freshly booted system is not probed before its network stack is
// up. Run never returns a probe error; the loop is failure-proof.
func (l *Loop) Run(ctx context.Context) error {
	now := l.now()
	l.applyControl(true)
	l.nextPrimary = now.Add(l.opts.CheckEvery)
	l.publish()
	l.log.Info("monitor_started",
		zap.Duration("check_every", l.opts.CheckEvery),
		zap.Duration("confirm_delay", l.opts.ConfirmDelay),
	)

	for {
		now = l.now()
		wait := l.Step(now)
		if err := l.sleep(ctx, wait); err != nil {
			l.log.Info("monitor_stopped")
			return nil
		}
	}
}

// Step advances the state machine for the given instant and returns how long
// to sleep before the next relevant instant. Exported shape so the machine
// unit-tests without processes or sleeps.
func (l *Loop) Step(now time.Time) time.Duration {
	if l.reload.Swap(false) || l.phase != phaseStartup {
		l.applyControl(false)
	}

	switch {
	case l.phase == phaseStartup:
		// One full interval of silence after bootstrap.
		if now.Before(l.nextPrimary) {
			break
		}
		l.phase = phaseSteady
		l.runPrimary(now)
	case !l.confirmAt.IsZero() && !now.Before(l.confirmAt):
		l.runConfirmation(now)
	case !now.Before(l.nextPrimary):
		l.runPrimary(now)
	}

	l.publish()
	return l.nextWait(now)
}

func (l *Loop) nextWait(now time.Time) time.Duration {
	next := l.nextPrimary
	if !l.confirmAt.IsZero() && l.confirmAt.Before(next) {
		next = l.confirmAt
	}
	wait := next.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

func (l *Loop) runPrimary(now time.Time) {
	l.nextPrimary = now.Add(l.opts.CheckEvery)

	p, ok := l.primary.Pick(l.registry.Primaries(), "")
	if !ok {
		return
	}
	res := l.execute(p)
	l.record(p.ID, heartbeat.KindPrimary, res)

	if res.OK {
		l.clearPending()
		return
	}

	if l.pending == nil {
		l.pending = &pendingAlert{firstFailure: now, diag: res.Diag, probeID: p.ID}
		l.phase = phasePending
	} else {
		l.pending.diag = res.Diag
		l.pending.probeID = p.ID
	}
	if l.confirmAt.IsZero() {
		l.confirmAt = now.Add(l.opts.ConfirmDelay)
		if l.phase == phaseAlerted {
			// Never confirm-and-notify twice inside one cooldown window.
			if earliest := l.notifiedAt.Add(l.opts.Cooldown()); l.confirmAt.Before(earliest) {
				l.confirmAt = earliest
			}
		}
	}
}

func (l *Loop) runConfirmation(now time.Time) {
	l.confirmAt = time.Time{}
	if l.pending == nil {
		return
	}

	p, ok := l.confirm.Pick(l.registry.Confirmations(), l.pending.probeID)
	if !ok {
		return
	}
	res := l.execute(p)
	l.record(p.ID, heartbeat.KindConfirmation, res)

	if res.OK {
		l.clearPending()
		return
	}

	l.pending.diag = res.Diag
	l.pending.probeID = p.ID

	inCooldown := l.phase == phaseAlerted && now.Before(l.notifiedAt.Add(l.opts.Cooldown()))
	if inCooldown {
		l.log.Debug("outage_still_confirmed",
			zap.String("diag", res.Diag),
			zap.Time("notified_at", l.notifiedAt),
		)
		l.confirmAt = l.notifiedAt.Add(l.opts.Cooldown())
		return
	}

	l.notify(now, res.Diag)
	// Cooldown is anchored to the notification instant, not to the latest
	// failure, so sustained failure cannot stretch the window.
	l.confirmAt = l.notifiedAt.Add(l.opts.Cooldown())
}

// notify performs the ALERTED transition. Under an active suppression window
// only the user-facing step is skipped; the transition and its cooldown
// still happen.
func (l *Loop) notify(now time.Time, diag string) {
	l.phase = phaseAlerted
	l.notifiedAt = now

	if l.ctrl.Suppressed(now) {
		l.log.Info("alert_suppressed", zap.String("diag", diag))
		return
	}

	metrics.AlertsTotal.Inc()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l.sink.Play(ctx, "connectivity")
	l.sink.Banner(ctx, "internet connectivity lost", diag)
	l.log.Warn("alert_raised", zap.String("diag", diag))
}

func (l *Loop) clearPending() {
	if l.pending != nil {
		l.log.Debug("pending_cleared", zap.String("diag", l.pending.diag))
	}
	l.pending = nil
	l.confirmAt = time.Time{}
	l.phase = phaseSteady
}

// execute runs one checker, converting a panic into a failed result so a
// misbehaving probe can never take the loop down.
func (l *Loop) execute(p probe.Probe) (res probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Warn("probe_panicked", zap.String("probe", p.ID), zap.Any("panic", r))
			res = probe.Result{OK: false, Diag: probe.Diagnostic(p.ID, probe.SuffixTransport)}
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), probe.DefaultTimeout+time.Second)
	defer cancel()
	return p.Checker.Check(ctx)
}

func (l *Loop) record(probeID string, kind heartbeat.Kind, res probe.Result) {
	status := heartbeat.StatusOK
	if !res.OK {
		status = res.Diag
	}
	if err := l.hb.Append(probeID, kind, status); err != nil {
		l.log.Debug("heartbeat_write_failed", zap.Error(err))
	}
	metrics.RecordProbe(probeID, res.OK)
	l.log.Debug("probe_done",
		zap.String("probe", probeID),
		zap.String("kind", string(kind)),
		zap.String("status", status),
	)
}

// applyControl re-reads the control file and applies it when the command
// token changed, which makes repeated or stale reload nudges idempotent.
func (l *Loop) applyControl(force bool) {
	if l.channel == nil {
		return
	}
	st, _ := l.channel.Read()
	if st == nil {
		// Missing or malformed file: keep the previous in-memory state.
		return
	}
	if !force && st.CommandToken == l.lastToken {
		return
	}
	l.ctrl = st
	l.lastToken = st.CommandToken
	metrics.ReloadsTotal.Inc()
	l.log.Debug("control_applied",
		zap.String("token", st.CommandToken),
		zap.Float64("suppress_until", st.SuppressUntil),
		zap.Bool("debug", st.Debug),
	)
}

// sleep waits out d in chunks no larger than MinimumSleep, re-reading the
// control state as soon as a reload is requested. Returns ctx.Err() on
// shutdown.
func (l *Loop) sleep(ctx context.Context, d time.Duration) error {
	deadline := l.now().Add(d)
	for {
		remaining := deadline.Sub(l.now())
		if remaining <= 0 {
			return nil
		}
		chunk := remaining
		if chunk > MinimumSleep {
			chunk = MinimumSleep
		}
		timer := time.NewTimer(chunk)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-l.wake:
			timer.Stop()
			if l.reload.Swap(false) {
				l.applyControl(false)
				l.publish()
			}
		case <-timer.C:
		}
	}
}

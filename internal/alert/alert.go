package alert

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Sink is the notification contract the monitor fires on a confirmed outage.
// Rendering beyond this interface belongs to the surrounding program.
type Sink interface {
	// Play emits the audible cue for the given alert category.
	Play(ctx context.Context, category string)
	// Banner shows the on-screen overlay for a confirmed failure.
	Banner(ctx context.Context, message, diag string)
}

// Console is the sink shipped with the watchdog binary: banner to stderr,
// terminal bell for the audible cue when stderr is a TTY.
type Console struct {
	out *os.File
}

func NewConsole() *Console {
	return &Console{out: os.Stderr}
}

func (c *Console) Play(ctx context.Context, category string) {
	if isatty.IsTerminal(c.out.Fd()) || isatty.IsCygwinTerminal(c.out.Fd()) {
		fmt.Fprint(c.out, "\a")
	}
}

func (c *Console) Banner(ctx context.Context, message, diag string) {
	fmt.Fprintf(c.out, "*** %s [%s] ***\n", message, diag)
}

// Nop discards every notification. Used in tests and when alerting is
// disabled outright.
type Nop struct{}

func (Nop) Play(ctx context.Context, category string)        {}
func (Nop) Banner(ctx context.Context, message, diag string) {}

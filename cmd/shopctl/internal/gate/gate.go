package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/pkg/guard"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

var (
	// ErrDenied is wrapped by every denial; the message was already shown.
	ErrDenied = errors.New("access denied")
	// ErrLoginRequired means the visitor is not logged in.
	ErrLoginRequired = fmt.Errorf("%w: login required", ErrDenied)
	// ErrForbidden means the visitor is logged in without the required role.
	ErrForbidden = fmt.Errorf("%w: forbidden", ErrDenied)
)

// Gate applies the route guard to CLI commands.
type Gate struct {
	Out io.Writer
	// Interactive shows a spinner while the session loads.
	Interactive bool
}

func New(out io.Writer, interactive bool) *Gate {
	if out == nil {
		out = os.Stdout
	}
	return &Gate{Out: out, Interactive: interactive}
}

// Require bootstraps the session (showing only a spinner until it is ready)
// and checks it against role. from is the command line to resume after login.
func (g *Gate) Require(ctx context.Context, seq *session.Sequencer, role sdk.Role, from string) (session.Snapshot, error) {
	snap, err := g.Wait(ctx, seq)
	if err != nil {
		return snap, err
	}

	d := guard.Evaluate(snap, role, from)
	switch d.Outcome {
	case guard.OutcomeAllow:
		return snap, nil
	case guard.OutcomeLoginRequired:
		pterm.Error.WithWriter(g.Out).Println("You must be logged in to run this command.")
		if from != "" {
			pterm.Info.WithWriter(g.Out).Printf("Run `shopctl auth login --return-to %q` to log in and continue.\n", from)
		} else {
			pterm.Info.WithWriter(g.Out).Println("Run `shopctl auth login` to log in.")
		}
		return snap, ErrLoginRequired
	case guard.OutcomeForbidden:
		pterm.Error.WithWriter(g.Out).Printf("Sorry, you are not authorized to run this command (requires role %q).\n", role.String())
		pterm.Info.WithWriter(g.Out).Println("Run `shopctl home` to go back to the home menu.")
		return snap, ErrForbidden
	default:
		// Wait only returns settled snapshots
		return snap, fmt.Errorf("session not ready")
	}
}

// Wait runs bootstrap to completion.
func (g *Gate) Wait(ctx context.Context, seq *session.Sequencer) (session.Snapshot, error) {
	if seq.Ready() {
		return seq.Manager().Snapshot(), nil
	}

	var spinner *pterm.SpinnerPrinter
	if g.Interactive {
		spinner, _ = pterm.DefaultSpinner.WithWriter(g.Out).WithRemoveWhenDone(true).Start("Loading session...")
	}
	snap, err := seq.Run(ctx)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return snap, fmt.Errorf("session bootstrap interrupted: %w", err)
	}
	return snap, nil
}

// From renders the invoked command line, used as the location to resume
// after login.
func From(cmd *cobra.Command, args []string) string {
	parts := append([]string{cmd.CommandPath()}, args...)
	return strings.Join(parts, " ")
}

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/aretw0/graphnav"
	"github.com/aretw0/graphnav/internal/presentation/tui"
)

// ShellOptions configures RunShell.
type ShellOptions struct {
	Input  io.Reader
	Output io.Writer
	// Headless drops the banner, prompts and markdown styling.
	Headless bool
}

// RunShell drives s with line commands until EOF, quit or a signal.
func RunShell(ctx context.Context, s *Session, opts ShellOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if !opts.Headless {
		if f, ok := opts.Input.(*os.File); ok && !isTerminal(f) {
			opts.Headless = true
		}
	}

	r := graphnav.NewRunner(opts.Input, opts.Output)
	r.Headless = opts.Headless
	if !opts.Headless {
		tui.PrintBanner(opts.Output, strings.TrimSpace(graphnav.Version))
		width := 80
		if f, ok := opts.Output.(*os.File); ok {
			width = terminalWidth(int(f.Fd()))
		}
		r.Renderer = tui.NewRenderer(width)
	}

	s.Logger.Debug("shell started", "headless", opts.Headless)
	err := r.Run(ctx, s.Editor)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

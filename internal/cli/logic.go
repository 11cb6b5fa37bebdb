package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dups/internal/dups"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func (c CLI) logic(options dups.Options) (err error) {
	log := NewLogger(Name, c.stderr, options.Debug)
	options.Logger = log

	enableProgress := strings.ToLower(options.Output) == "text" &&
		!options.Debug &&
		isTerminal(c.stderr)

	ctx := context.Background()

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(c.stderr, "\033[?25l")
		defer fmt.Fprint(c.stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(c.stderr, "\r\033[2K%s\r", msg)
		}
	}

	out := bufio.NewWriter(c.stdout)
	defer func() { err = errors.Join(err, out.Flush()) }()

	var reporter dups.Reporter

	switch strings.ToLower(options.Output) {
	case "json":
		reporter = NewJSONReporter(out)
	case "text":
		reporter = dups.NewTextReporter(out)
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}

	stats, err := dups.Run(ctx, options, reporter, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(c.stderr, "\r\033[2K\r")
	}

	if options.ShowStats && stats != nil {
		if err := PrintStats(stats, c.stderr); err != nil {
			return err
		}
	}

	return err
}

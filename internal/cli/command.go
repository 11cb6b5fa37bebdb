package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/idelchi/dups/internal/dups"
	"github.com/idelchi/dups/internal/integration"
)

// Name is the program name used to prefix diagnostics.
const Name = "dups"

// ErrUsage is returned when the command line is invalid.
var ErrUsage = errors.New("usage: " + Name + " directory [directory...]")

// CLI represents the command-line interface.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version, stdout: os.Stdout, stderr: os.Stderr}
}

func help() string {
	return heredoc.Doc(`
		dups finds sets of byte-identical regular files.

		Usage:

			dups [flags] directory [directory...]

		Positional Arguments:
		  directory              One or more directories to scan. Symbolic links are never followed.

		Output:
		  Each duplicate set is printed one path per line; sets are separated by a blank line.
		  Files are compared window by window, never hashed.

		Flags:
	`)
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.run(os.Args[1:])
}

// run parses args and executes the command. Any returned error has already
// been reported on stderr.
//
//nolint:funlen // Flag definitions
func (c CLI) run(args []string) error {
	var (
		options      dups.Options
		blockSizeStr string
		minSizeStr   string
		hardLinksStr string
	)

	allowedOutputs := []string{"text", "json"}

	cmd := &cobra.Command{
		Use:           Name + " [flags] directory [directory...]",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if options.Version {
				fmt.Fprintln(c.stdout, c.version)

				return nil
			}

			if options.Integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(c.stdout, rendered)

				return nil
			}

			if len(args) == 0 {
				return ErrUsage
			}

			options.Roots = args

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if options.Workers < 0 {
				return errors.New("workers cannot be negative")
			}

			size, err := humanize.ParseBytes(blockSizeStr)
			if err != nil {
				return fmt.Errorf("invalid block-size: %w", err)
			}

			if size == 0 {
				return errors.New("block-size must be positive")
			}

			options.BlockSize = int64(size) //nolint:gosec // Size conversion from humanize is safe

			if minSizeStr != "" {
				size, err := humanize.ParseBytes(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid min-size: %w", err)
				}

				options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
			}

			if options.HardLinks, err = dups.ParseHardLinkPolicy(hardLinksStr); err != nil {
				return err
			}

			return c.logic(options)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&blockSizeStr, "block-size", "8KiB", "Comparison window size (e.g., 64KiB)")
	flags.IntVarP(&options.Workers, "workers", "w", 0, "Directory walker goroutines (0=default)")
	flags.IntVarP(&options.Jobs, "jobs", "j", 1, "Size classes compared concurrently")
	flags.StringVar(&hardLinksStr, "hardlinks", string(dups.HardLinksAbort),
		"What to do when a file is reached twice: abort or skip")
	flags.StringSliceVarP(&options.Excludes, "exclude", "e", []string{}, "Regex patterns to exclude")
	flags.StringVar(&minSizeStr, "min-size", "0B", "Minimum file size (e.g., 1KB)")
	flags.StringVarP(&options.Output, "output", "o", "text", "Output format: text or json")
	flags.BoolVar(&options.ShowStats, "stats", false, "Print a summary to stderr")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")
	flags.BoolVarP(&options.Integration, "init", "i", false, "Output init script for shell usage")
	flags.SortFlags = false

	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), help())
		fmt.Fprint(cmd.OutOrStdout(), cmd.Flags().FlagUsages())
	})
	// cobra falls back to os.Args on a nil slice.
	if args == nil {
		args = []string{}
	}

	cmd.SetArgs(args)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	if err := cmd.Execute(); err != nil {
		NewLogger(Name, c.stderr, false).Error(err.Error())

		return err
	}

	return nil
}

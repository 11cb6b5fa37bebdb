package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/idelchi/dups/internal/dups"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// JSONReporter writes each duplicate set as one JSON object per line.
type JSONReporter struct {
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

// Report encodes set as a single line.
func (j *JSONReporter) Report(set dups.DuplicateSet) error {
	if err := j.enc.Encode(set); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

// ibytes formats a byte count in IEC units.
func ibytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

// PrintStats outputs run statistics in human-readable table format.
func PrintStats(stats *dups.Stats, writer io.Writer) error {
	if _, err := color.New(color.Bold).Fprintln(writer, "\nStats:"); err != nil {
		return err
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Files scanned:\t%d\n", stats.Files)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", ibytes(stats.Bytes), stats.Bytes)
	fmt.Fprintf(w, "Size classes:\t%d\n", stats.SizeClasses)
	fmt.Fprintf(w, "Candidates:\t%d\n", stats.Candidates)
	fmt.Fprintf(w, "Duplicate sets:\t%d (%d files)\n", stats.Sets, stats.Duplicates)
	fmt.Fprintf(w, "Reclaimable:\t%s\n", ibytes(stats.Reclaimable))
	fmt.Fprintf(w, "Bytes compared:\t%s\n", ibytes(stats.BytesRead))
	fmt.Fprintf(w, "Warnings:\t%d\n", stats.Warnings)

	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}

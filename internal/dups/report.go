package dups

import (
	"fmt"
	"io"
	"sync"
)

// DuplicateSet is one emitted set of byte-identical files.
type DuplicateSet struct {
	// Size is the size in bytes of every member.
	Size int64 `json:"size"`
	// Paths lists the members in ascending (device, inode) order.
	Paths []string `json:"paths"`
}

// Reporter accepts resolved duplicate sets. Sets always have two or more members.
type Reporter interface {
	Report(set DuplicateSet) error
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(set DuplicateSet) error

// Report calls f(set).
func (f ReporterFunc) Report(set DuplicateSet) error {
	return f(set)
}

// TextReporter writes one path per line and separates sets with a single blank line.
type TextReporter struct {
	w       io.Writer
	written bool
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// Report writes set to the underlying writer.
func (t *TextReporter) Report(set DuplicateSet) error {
	if len(set.Paths) < 2 {
		return nil
	}

	if t.written {
		if _, err := fmt.Fprintln(t.w); err != nil {
			return err
		}
	}

	t.written = true

	for _, path := range set.Paths {
		if _, err := fmt.Fprintln(t.w, path); err != nil {
			return err
		}
	}

	return nil
}

// lockedReporter serializes calls from concurrent refiners.
type lockedReporter struct {
	mu       sync.Mutex
	reporter Reporter
}

func (l *lockedReporter) Report(set DuplicateSet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.reporter.Report(set)
}

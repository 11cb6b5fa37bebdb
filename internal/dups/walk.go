package dups

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// Walker enumerates regular files under a root and hands them to a Classifier.
type Walker struct {
	// Workers is the number of fastwalk goroutines (0 = fastwalk default).
	Workers int
	// Excludes skips paths matching any pattern; matched directories are not entered.
	Excludes []*regexp.Regexp
	// MinSize skips files smaller than this many bytes.
	MinSize int64

	classifier *Classifier
	stats      *collector
	log        logrus.FieldLogger
}

// NewWalker creates a walker feeding classifier.
func NewWalker(classifier *Classifier, log logrus.FieldLogger) *Walker {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Walker{
		classifier: classifier,
		stats:      classifier.stats,
		log:        log,
	}
}

// shouldExclude returns the first pattern matching path, if any.
func shouldExclude(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// Walk visits every entry under root without following symbolic links below
// it. A root that is itself a symbolic link is resolved, and a root that is a
// regular file is classified on its own.
//
// A root or directory that cannot be listed is reported as a TraversalError
// and skipped. A failed type or identity query aborts the walk with a
// StatError, as does any error from the classifier.
func (w *Walker) Walk(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		w.warn(&TraversalError{Path: root, Err: err})

		return nil
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() || shouldExclude(root, w.Excludes) != nil {
			return nil
		}

		return w.classify(root, info)
	}

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.Workers,
	}

	var (
		mu    sync.Mutex
		fatal error
	)

	err = fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		err = w.visit(ctx, path, d, err)
		if err != nil && !errors.Is(err, filepath.SkipDir) {
			mu.Lock()
			if fatal == nil {
				fatal = err
			}
			mu.Unlock()
		}

		return err
	})
	if fatal != nil {
		return fatal
	}

	return err
}

// visit handles a single fastwalk callback.
//
// fastwalk hands an error returned for a file back to the callback together
// with the parent directory, so errors raised here are passed through
// unchanged. Only listing failures become warnings.
//
//nolint:varnamelen // d is standard for DirEntry
func (w *Walker) visit(ctx context.Context, path string, d fs.DirEntry, err error) error {
	if err != nil {
		if isWalkFatal(err) {
			return err
		}

		w.warn(&TraversalError{Path: path, Err: err})

		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if re := shouldExclude(path, w.Excludes); re != nil {
		w.log.Debugf("excluding %s: matched %s", filepath.ToSlash(path), re)

		if d.IsDir() {
			return filepath.SkipDir
		}

		return nil
	}

	if d.IsDir() || !d.Type().IsRegular() {
		return nil
	}

	info, err := d.Info()
	if err != nil {
		return &StatError{Path: path, Err: err}
	}

	return w.classify(path, info)
}

// classify hands a regular file to the classifier unless it is below MinSize.
func (w *Walker) classify(path string, info fs.FileInfo) error {
	id, err := identityOf(path, info)
	if err != nil {
		return &StatError{Path: path, Err: err}
	}

	if info.Size() < w.MinSize {
		return nil
	}

	return w.classifier.Classify(NewFileRecord(path, id, info.Size()))
}

func (w *Walker) warn(err error) {
	w.log.Warn(err.Error())
	w.stats.addWarning()
}

// isWalkFatal reports whether err was raised by the walker itself rather than
// by a directory listing.
func isWalkFatal(err error) bool {
	var (
		statErr  *StatError
		readErr  *ReadError
		conflict *IdentityConflictError
	)

	return errors.As(err, &statErr) ||
		errors.As(err, &readErr) ||
		errors.As(err, &conflict) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

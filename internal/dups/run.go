package dups

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Options configures a run and CLI behavior.
type Options struct {
	// Roots are the directories to scan.
	Roots []string
	// BlockSize is the comparison window size in bytes (0 = DefaultBlockSize).
	BlockSize int64
	// Workers is the number of directory walker goroutines (0 = fastwalk default).
	Workers int
	// Jobs is the number of size classes refined concurrently (<= 1 = one at a time).
	Jobs int
	// HardLinks decides what happens when one file is reached twice.
	HardLinks HardLinkPolicy
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives warnings and debug output (nil = logrus standard logger).
	Logger logrus.FieldLogger
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (text or json).
	Output string
	// ShowStats indicates whether to print a summary after the run.
	ShowStats bool
	// Version indicates whether to show version and exit.
	Version bool
	// Integration indicates whether to output integration script.
	Integration bool
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run scans opt.Roots and reports every duplicate set to reporter.
//
// All roots are walked first, feeding one shared Classifier. Every size class
// with two or more members is then refined, one at a time unless opt.Jobs > 1.
// Non-fatal conditions are logged and counted; the first fatal error stops the
// run and is returned together with the statistics gathered so far. Sets
// reported before the failure remain valid.
//
// Progress updates during the walk are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, reporter Reporter, progressHook func(int64, int64)) (*Stats, error) {
	log := opt.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	if len(opt.Roots) == 0 {
		return nil, ErrNoRoots
	}

	if opt.BlockSize < 0 {
		return nil, fmt.Errorf("block size cannot be negative: %d", opt.BlockSize)
	}

	policy, err := ParseHardLinkPolicy(string(opt.HardLinks))
	if err != nil {
		return nil, err
	}

	excludes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	collector := newCollector()

	// Create child context to ensure progress reporter cleanup
	walkCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()

	startProgressReporter(walkCtx, collector, progressHook, opt.ProgressInterval)

	start := time.Now()

	classifier := newClassifier(policy, collector, log)

	walker := NewWalker(classifier, log)
	walker.Workers = opt.Workers
	walker.Excludes = excludes
	walker.MinSize = opt.MinSize

	finish := func(err error) (*Stats, error) {
		stats := collector.finalize()
		stats.Elapsed = time.Since(start)

		return stats, err
	}

	for _, root := range opt.Roots {
		log.Debugf("scanning %s", root)

		if err := walker.Walk(ctx, root); err != nil {
			return finish(err)
		}
	}

	stopProgress()

	groups := classifier.Groups()

	log.Debugf("%d size classes, %d need comparing", classifier.Len(), len(groups))

	return finish(refineAll(ctx, groups, opt, reporter, collector, log))
}

// refineAll refines every group, concurrently when opt.Jobs > 1.
func refineAll(
	ctx context.Context,
	groups []*Group,
	opt Options,
	reporter Reporter,
	stats *collector,
	log logrus.FieldLogger,
) error {
	if opt.Jobs <= 1 {
		refiner := newRefiner(opt.BlockSize, reporter, stats, log)

		for _, group := range groups {
			if err := refiner.Refine(ctx, group); err != nil {
				return err
			}
		}

		return nil
	}

	refiner := newRefiner(opt.BlockSize, &lockedReporter{reporter: reporter}, stats, log)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Jobs)

	for _, group := range groups {
		g.Go(func() error {
			return refiner.Refine(ctx, group)
		})
	}

	return g.Wait()
}

package dups

import (
	"bytes"
	"context"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// DefaultBlockSize is the default comparison window size.
const DefaultBlockSize = 8 * 1024

// Refiner resolves same-size groups into sets of byte-identical files.
type Refiner struct {
	blockSize int64
	reporter  Reporter
	stats     *collector
	log       logrus.FieldLogger
}

// NewRefiner creates a refiner reading windows of blockSize bytes and
// announcing resolved sets to reporter.
func NewRefiner(blockSize int64, reporter Reporter, log logrus.FieldLogger) *Refiner {
	return newRefiner(blockSize, reporter, newCollector(), log)
}

func newRefiner(blockSize int64, reporter Reporter, stats *collector, log logrus.FieldLogger) *Refiner {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Refiner{
		blockSize: blockSize,
		reporter:  reporter,
		stats:     stats,
		log:       log,
	}
}

// Refine narrows a size class down to its duplicate sets.
//
// Every member handle opened here is closed before Refine returns, whatever
// the outcome. Zero-length groups are emitted without reading anything.
func (r *Refiner) Refine(ctx context.Context, group *Group) error {
	defer group.release()

	if group.Len() < 2 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.log.Debugf("refining size class %s: %d files", humanize.IBytes(uint64(group.Size)), group.Len()) //nolint:gosec // sizes are never negative

	if group.remaining == 0 {
		return r.emit(group)
	}

	// Depth-first over refinement levels, one window per level.
	pending := []*Group{group}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		subs, err := r.split(current)
		if err != nil {
			return err
		}

		var next []*Group

		for _, sub := range subs {
			switch {
			case sub.Len() < 2:
				sub.release()
			case sub.remaining == 0:
				if err := r.emit(sub); err != nil {
					return err
				}
			default:
				next = append(next, sub)
			}
		}

		slices.Reverse(next)
		pending = append(pending, next...)
	}

	return nil
}

// split runs one refinement level: it opens members that are not yet open,
// reads the next window from each and partitions them by window equality.
// Members that cannot be opened are dropped with a warning.
func (r *Refiner) split(group *Group) ([]*Group, error) {
	members := make([]*FileRecord, 0, group.Len())

	for _, rec := range group.members {
		if err := rec.open(r.blockSize); err != nil {
			r.log.Warn(err.Error())
			r.stats.addWarning()
			rec.release()

			continue
		}

		members = append(members, rec)
	}

	if len(members) < 2 {
		for _, rec := range members {
			rec.release()
		}

		return nil, nil
	}

	n := min(r.blockSize, group.remaining)

	for _, rec := range members {
		if err := rec.readWindow(n); err != nil {
			return nil, err
		}
	}

	r.stats.addRead(n * int64(len(members)))

	// Members are visited in identity order and appended in that order, so
	// every sub-group stays sorted.
	var subs []*Group

	for _, rec := range members {
		idx := slices.IndexFunc(subs, func(sub *Group) bool {
			return bytes.Equal(sub.members[0].window, rec.window)
		})
		if idx < 0 {
			subs = append(subs, &Group{Size: group.Size, remaining: group.remaining - n})
			idx = len(subs) - 1
		}

		subs[idx].members = append(subs[idx].members, rec)
	}

	return subs, nil
}

// emit reports a resolved group and releases its members.
func (r *Refiner) emit(group *Group) error {
	defer group.release()

	set := DuplicateSet{Size: group.Size, Paths: group.Paths()}
	if err := r.reporter.Report(set); err != nil {
		return err
	}

	r.stats.addSet(group.Size, group.Len())

	return nil
}

package dups

import (
	"cmp"
	"fmt"
	"sync"
	"unsafe"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
	"github.com/sirupsen/logrus"
)

// HardLinkPolicy decides what happens when one physical file is reached twice.
type HardLinkPolicy string

const (
	// HardLinksAbort treats a repeated identity as a fatal IdentityConflictError.
	HardLinksAbort HardLinkPolicy = "abort"
	// HardLinksSkip keeps the first path seen and drops the repeat with a warning.
	HardLinksSkip HardLinkPolicy = "skip"
)

// ParseHardLinkPolicy validates a policy name.
func ParseHardLinkPolicy(s string) (HardLinkPolicy, error) {
	switch p := HardLinkPolicy(s); p {
	case HardLinksAbort, HardLinksSkip:
		return p, nil
	case "":
		return HardLinksAbort, nil
	default:
		return "", fmt.Errorf("invalid hard link policy %q: must be one of [%s %s]", s, HardLinksAbort, HardLinksSkip)
	}
}

// sizeClass is the skiplist item: one Group per declared size.
type sizeClass struct {
	size  int64
	group *Group
}

// sizeContext is the skiplist context attached to every size class.
const sizeContext = "size"

// skiplistLevels bounds the height of the size skiplist.
const skiplistLevels = 24

// Classifier groups records by declared size.
//
// The size classes live in a skiplist ordered by size. Classify is safe for
// concurrent use, since fastwalk calls back from multiple goroutines.
type Classifier struct {
	mu        sync.Mutex
	classes   *zcsl.ZeroCopySkiplist[sizeClass, int64, string]
	hardLinks HardLinkPolicy
	stats     *collector
	log       logrus.FieldLogger
}

// NewClassifier creates an empty classifier.
func NewClassifier(policy HardLinkPolicy, log logrus.FieldLogger) *Classifier {
	return newClassifier(policy, newCollector(), log)
}

func newClassifier(policy HardLinkPolicy, stats *collector, log logrus.FieldLogger) *Classifier {
	if log == nil {
		log = logrus.StandardLogger()
	}

	if policy == "" {
		policy = HardLinksAbort
	}

	classes := zcsl.MakeZeroCopySkiplist[sizeClass, int64, string](
		skiplistLevels,
		func(c *sizeClass) int64 { return c.size },
		func(*sizeClass) int { return int(unsafe.Sizeof(sizeClass{})) },
		cmp.Compare[int64],
	)

	return &Classifier{
		classes:   classes,
		hardLinks: policy,
		stats:     stats,
		log:       log,
	}
}

// Classify inserts rec into the group for its size, creating the group if needed.
// Reaching an identity already present in the group is an IdentityConflictError,
// unless the classifier skips hard links.
func (c *Classifier) Classify(rec *FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	group := c.lookup(rec.Size)

	if existing := group.insert(rec); existing != nil {
		conflict := &IdentityConflictError{
			Identity: rec.Identity,
			Path:     rec.Path,
			Existing: existing.Path,
		}

		if c.hardLinks != HardLinksSkip {
			return conflict
		}

		c.log.Warnf("skipping %s", conflict)
		c.stats.addWarning()

		return nil
	}

	c.stats.addFile(rec.Size)

	return nil
}

// lookup returns the group for size, creating it on first sight.
func (c *Classifier) lookup(size int64) *Group {
	if found, _ := c.classes.Find(size); found != nil {
		return found.Item().group
	}

	class := &sizeClass{size: size, group: newGroup(size)}
	c.classes.Insert(class, sizeContext)

	return class.group
}

// Len returns the number of distinct sizes seen.
func (c *Classifier) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.classes.Length()
}

// Groups finishes classification. It returns, in ascending size order, every
// size class with at least two members; singleton classes are discarded.
func (c *Classifier) Groups() []*Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		groups     []*Group
		candidates int64
	)

	for node := c.classes.First(); node != nil; node = node.Next() {
		group := node.Item().group
		if group.Len() < 2 {
			group.release()

			continue
		}

		candidates += int64(group.Len())
		groups = append(groups, group)
	}

	c.stats.addClasses(c.classes.Length(), candidates)

	return groups
}

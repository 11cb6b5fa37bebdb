package dups

import (
	"sync"
	"time"
)

// Stats holds aggregate statistics for a run.
type Stats struct {
	// Files is the number of regular files classified.
	Files int64 `json:"files"`
	// Bytes is the cumulative declared size of all classified files.
	Bytes int64 `json:"bytes"`
	// SizeClasses is the number of distinct sizes seen.
	SizeClasses int `json:"size_classes"`
	// Candidates is the number of files sharing their size with at least one other file.
	Candidates int64 `json:"candidates"`
	// Sets is the number of duplicate sets emitted.
	Sets int64 `json:"sets"`
	// Duplicates is the number of files across all emitted sets.
	Duplicates int64 `json:"duplicates"`
	// Reclaimable is the number of bytes held by all but one member of each set.
	Reclaimable int64 `json:"reclaimable"`
	// BytesRead is the number of bytes read while comparing.
	BytesRead int64 `json:"bytes_read"`
	// Warnings is the number of non-fatal errors encountered.
	Warnings int64 `json:"warnings"`
	// Elapsed is the total time taken.
	Elapsed time.Duration `json:"elapsed"`
}

// collector aggregates counters from concurrent walker callbacks and refiners using a mutex.
type collector struct {
	mu          sync.Mutex
	files       int64
	bytes       int64
	sizeClasses int
	candidates  int64
	sets        int64
	duplicates  int64
	reclaimable int64
	bytesRead   int64
	warnings    int64
}

func newCollector() *collector {
	return &collector{}
}

// addFile records a classified file.
func (c *collector) addFile(size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files++
	c.bytes += size
}

// addWarning increments the warning counter.
func (c *collector) addWarning() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warnings++
}

// addClasses records the outcome of classification.
func (c *collector) addClasses(classes int, candidates int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sizeClasses += classes
	c.candidates += candidates
}

// addRead records bytes consumed by one refinement level.
func (c *collector) addRead(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bytesRead += n
}

// addSet records an emitted duplicate set.
func (c *collector) addSet(size int64, members int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	c.duplicates += int64(members)
	c.reclaimable += size * int64(members-1)
}

// progress returns the walk counters.
func (c *collector) progress() (files, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.files, c.bytes
}

// finalize produces the final Stats from the collected data.
func (c *collector) finalize() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Stats{
		Files:       c.files,
		Bytes:       c.bytes,
		SizeClasses: c.sizeClasses,
		Candidates:  c.candidates,
		Sets:        c.sets,
		Duplicates:  c.duplicates,
		Reclaimable: c.reclaimable,
		BytesRead:   c.bytesRead,
		Warnings:    c.warnings,
	}
}

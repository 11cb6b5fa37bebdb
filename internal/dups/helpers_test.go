package dups

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// writeFile creates root/rel with content, creating parent directories.
func writeFile(t *testing.T, root, rel string, content []byte) string {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))

	return path
}

// recordFor builds a FileRecord from the file at path.
func recordFor(t *testing.T, path string) *FileRecord {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err)

	id, err := identityOf(path, info)
	require.NoError(t, err)

	return NewFileRecord(path, id, info.Size())
}

// groupOf classifies paths and returns the only resulting group.
func groupOf(t *testing.T, paths ...string) *Group {
	t.Helper()

	c := NewClassifier(HardLinksAbort, quietLogger())
	for _, p := range paths {
		require.NoError(t, c.Classify(recordFor(t, p)))
	}

	groups := c.Groups()
	require.Len(t, groups, 1)

	return groups[0]
}

// quietLogger discards all output.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	return log
}

// bufferLogger captures output in buf.
func bufferLogger(buf *bytes.Buffer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(buf)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	return log
}

// recorder collects reported sets.
type recorder struct {
	sets []DuplicateSet
}

func (r *recorder) Report(set DuplicateSet) error {
	r.sets = append(r.sets, set)

	return nil
}

// normalized returns the recorded path sets, each sorted, sorted as a whole.
func (r *recorder) normalized() [][]string {
	return normalize(r.sets)
}

func normalize(sets []DuplicateSet) [][]string {
	out := make([][]string, 0, len(sets))

	for _, set := range sets {
		paths := slices.Clone(set.Paths)
		slices.Sort(paths)
		out = append(out, paths)
	}

	slices.SortFunc(out, func(a, b []string) int {
		return slices.Compare(a, b)
	})

	return out
}

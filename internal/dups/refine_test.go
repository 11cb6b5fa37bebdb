//go:build unix

package dups

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefineEmitsIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	x := writeFile(t, dir, "dirA/x.txt", []byte("hello"))
	y := writeFile(t, dir, "dirA/y.txt", []byte("hello"))

	rec := &recorder{}
	r := NewRefiner(DefaultBlockSize, rec, quietLogger())

	require.NoError(t, r.Refine(context.Background(), groupOf(t, x, y)))

	assert.Equal(t, [][]string{{x, y}}, rec.normalized())
	assert.Equal(t, int64(5), rec.sets[0].Size)
}

func TestRefineDropsDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("hello"))
	b := writeFile(t, dir, "b", []byte("world"))

	rec := &recorder{}
	r := NewRefiner(DefaultBlockSize, rec, quietLogger())

	require.NoError(t, r.Refine(context.Background(), groupOf(t, a, b)))
	assert.Empty(t, rec.sets)
}

func TestRefineSplitsBeyondFirstWindow(t *testing.T) {
	const size = 20000

	dir := t.TempDir()
	content := bytes.Repeat([]byte{'x'}, size)

	different := bytes.Clone(content)
	different[10000] = 'y'

	a := writeFile(t, dir, "a", content)
	b := writeFile(t, dir, "b", content)
	c := writeFile(t, dir, "c", different)

	stats := newCollector()
	rec := &recorder{}
	r := newRefiner(DefaultBlockSize, rec, stats, quietLogger())

	require.NoError(t, r.Refine(context.Background(), groupOf(t, a, b, c)))

	assert.Equal(t, [][]string{{a, b}}, rec.normalized())

	// Two full windows for all three files, then the tail for the surviving pair.
	assert.Equal(t, int64(6*DefaultBlockSize+2*(size-2*DefaultBlockSize)), stats.finalize().BytesRead)
}

func TestRefineSeparatesSeveralSets(t *testing.T) {
	dir := t.TempDir()
	a1 := writeFile(t, dir, "a1", []byte("aaaaaaaaaaaa"))
	a2 := writeFile(t, dir, "a2", []byte("aaaaaaaaaaaa"))
	b1 := writeFile(t, dir, "b1", []byte("aaaaaaaaaaab"))
	b2 := writeFile(t, dir, "sub/b2", []byte("aaaaaaaaaaab"))
	c1 := writeFile(t, dir, "c1", []byte("caaaaaaaaaaa"))

	rec := &recorder{}
	r := NewRefiner(4, rec, quietLogger())

	require.NoError(t, r.Refine(context.Background(), groupOf(t, a1, a2, b1, b2, c1)))

	assert.Equal(t, [][]string{{a1, a2}, {b1, b2}}, rec.normalized())
}

func TestRefineKeepsIdentityOrder(t *testing.T) {
	dir := t.TempDir()

	var paths []string
	for _, name := range []string{"d", "b", "a", "c"} {
		paths = append(paths, writeFile(t, dir, name, []byte("same")))
	}

	group := groupOf(t, paths...)
	want := group.Paths()

	rec := &recorder{}
	require.NoError(t, NewRefiner(2, rec, quietLogger()).Refine(context.Background(), group))

	require.Len(t, rec.sets, 1)
	assert.Equal(t, want, rec.sets[0].Paths)
}

func TestRefineZeroLengthReadsNothing(t *testing.T) {
	dir := t.TempDir()
	e1 := writeFile(t, dir, "e1", nil)
	e2 := writeFile(t, dir, "e2", nil)

	group := groupOf(t, e1, e2)

	// Opening either file would now fail.
	require.NoError(t, os.Remove(e1))
	require.NoError(t, os.Remove(e2))

	stats := newCollector()
	rec := &recorder{}
	r := newRefiner(DefaultBlockSize, rec, stats, quietLogger())

	require.NoError(t, r.Refine(context.Background(), group))

	assert.Equal(t, [][]string{{e1, e2}}, rec.normalized())
	assert.Zero(t, stats.finalize().BytesRead)
	assert.Zero(t, stats.finalize().Warnings)
}

func TestRefineTruncatedFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("abc"))
	b := writeFile(t, dir, "b", []byte("abc"))

	c := NewClassifier(HardLinksAbort, quietLogger())

	var records []*FileRecord

	for _, p := range []string{a, b} {
		rec := recordFor(t, p)
		// Pretend the files shrank after they were classified.
		rec.Size, rec.remaining = 10, 10
		records = append(records, rec)
		require.NoError(t, c.Classify(rec))
	}

	groups := c.Groups()
	require.Len(t, groups, 1)

	rec := &recorder{}
	err := NewRefiner(DefaultBlockSize, rec, quietLogger()).Refine(context.Background(), groups[0])
	require.Error(t, err)

	var truncated *TruncationError
	require.True(t, errors.As(err, &truncated))
	assert.Equal(t, int64(10), truncated.Want)
	assert.Equal(t, 3, truncated.Got)
	assert.True(t, IsFatal(err))
	assert.Empty(t, rec.sets)

	for _, r := range records {
		assert.Nil(t, r.file, "handle of %s left open", r.Path)
	}
}

func TestRefineDropsUnopenableFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("same content"))
	b := writeFile(t, dir, "b", []byte("same content"))
	gone := writeFile(t, dir, "gone", []byte("same content"))

	group := groupOf(t, a, b, gone)
	require.NoError(t, os.Remove(gone))

	var logs bytes.Buffer

	stats := newCollector()
	rec := &recorder{}
	r := newRefiner(DefaultBlockSize, rec, stats, bufferLogger(&logs))

	require.NoError(t, r.Refine(context.Background(), group))

	assert.Equal(t, [][]string{{a, b}}, rec.normalized())
	assert.Equal(t, int64(1), stats.finalize().Warnings)
	assert.Contains(t, logs.String(), "open: "+gone)
}

func TestRefineDiscardsGroupLeftWithOneFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("same"))
	gone := writeFile(t, dir, "gone", []byte("same"))

	group := groupOf(t, a, gone)
	require.NoError(t, os.Remove(gone))

	rec := &recorder{}
	require.NoError(t, NewRefiner(DefaultBlockSize, rec, quietLogger()).Refine(context.Background(), group))

	assert.Empty(t, rec.sets)

	for _, m := range group.Members() {
		assert.Nil(t, m.file)
	}
}

func TestSplitKeepsRemainingUniform(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("0123456789"))
	b := writeFile(t, dir, "b", []byte("0123456789"))
	c := writeFile(t, dir, "c", []byte("0123xxxxxx"))

	group := groupOf(t, a, b, c)
	defer group.release()

	r := NewRefiner(4, &recorder{}, quietLogger())

	subs, err := r.split(group)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 3, subs[0].Len())
	assert.Equal(t, int64(6), subs[0].Remaining())

	subs, err = r.split(subs[0])
	require.NoError(t, err)
	require.Len(t, subs, 2)

	for _, sub := range subs {
		assert.Equal(t, int64(2), sub.Remaining())

		for _, m := range sub.Members() {
			assert.Equal(t, sub.Remaining(), m.Remaining())
		}
	}
}

func TestRefineReporterErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("x"))
	b := writeFile(t, filepath.Join(dir, "nested"), "b", []byte("x"))

	boom := errors.New("boom")
	r := NewRefiner(DefaultBlockSize, ReporterFunc(func(DuplicateSet) error { return boom }), quietLogger())

	assert.ErrorIs(t, r.Refine(context.Background(), groupOf(t, a, b)), boom)
}

func TestRefineStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("x"))
	b := writeFile(t, dir, "b", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	err := NewRefiner(DefaultBlockSize, rec, quietLogger()).Refine(ctx, groupOf(t, a, b))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.sets)
}

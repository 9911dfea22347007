package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgecache/cachereport/internal/testutil"
)

func TestWalkYieldsOnlyCinfoFiles(t *testing.T) {
	root := t.TempDir()
	c1 := testutil.CreateCachedObject(t, root, "atlas/run1/a.root", []byte("a"))
	c2 := testutil.CreateCachedObject(t, root, "atlas/run2/b.root", []byte("b"))
	testutil.CreateOrphanCinfo(t, root, "cms/c.root")

	var found []string
	err := New(root).Walk(context.Background(), func(cinfoPath string) error {
		found = append(found, cinfoPath)
		return nil
	})
	require.NoError(t, err)

	// Both sidecars and the orphan are yielded; data files are not. Whether
	// an orphan is reportable is the inspector's call, not the scanner's.
	assert.Len(t, found, 3)
	assert.Contains(t, found, c1)
	assert.Contains(t, found, c2)
}

func TestWalkEmptyTree(t *testing.T) {
	count := 0
	err := New(t.TempDir()).Walk(context.Background(), func(string) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWalkCallbackErrorStopsScan(t *testing.T) {
	root := t.TempDir()
	testutil.CreateCachedObject(t, root, "a.root", []byte("a"))
	testutil.CreateCachedObject(t, root, "b.root", []byte("b"))

	sentinel := errors.New("stop here")
	count := 0
	err := New(root).Walk(context.Background(), func(string) error {
		count++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, count)
}

func TestWalkContextCancellation(t *testing.T) {
	root := t.TempDir()
	testutil.CreateCachedObject(t, root, "a.root", []byte("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(root).Walk(ctx, func(string) error {
		t.Fatal("callback must not fire after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkMissingRoot(t *testing.T) {
	// An unreadable root is logged and skipped, not escalated
	count := 0
	err := New("/nonexistent/cache/root").Walk(context.Background(), func(string) error {
		count++
		return nil
	})
	assert.NoError(t, err)
	assert.Zero(t, count)
}

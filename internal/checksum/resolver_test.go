package checksum

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgecache/cachereport/internal/catalog"
	"github.com/edgecache/cachereport/internal/domain"
	"github.com/edgecache/cachereport/internal/testutil"
)

func TestLocalResolverInProcess(t *testing.T) {
	root := t.TempDir()
	content := []byte("some cached payload")
	cinfo := testutil.CreateCachedObject(t, root, "atlas/file.root", content)

	obj := domain.NewCacheObject(root, cinfo)
	resolver := NewLocalResolver("")

	require.NoError(t, resolver.Resolve(context.Background(), obj))
	assert.Equal(t, testutil.Adler32Hex(content), obj.Checksum)
	assert.Nil(t, obj.CatalogMetadata)
}

func TestLocalResolverMissingFile(t *testing.T) {
	obj := domain.NewCacheObject("/cache", "/cache/gone.cinfo")
	resolver := NewLocalResolver("")

	err := resolver.Resolve(context.Background(), obj)
	assert.Error(t, err)
	assert.Empty(t, obj.Checksum)
}

func TestLocalResolverExternalCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	root := t.TempDir()
	cinfo := testutil.CreateCachedObject(t, root, "file.root", []byte("data"))

	// Fake checksum tool printing "<digest>  <path>" like cksum-style tools do
	script := filepath.Join(t.TempDir(), "fakesum")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho deadbeef \"$1\"\n"), 0o755))

	obj := domain.NewCacheObject(root, cinfo)
	resolver := NewLocalResolver(script)

	require.NoError(t, resolver.Resolve(context.Background(), obj))
	assert.Equal(t, "deadbeef", obj.Checksum)
}

func TestLocalResolverCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	root := t.TempDir()
	cinfo := testutil.CreateCachedObject(t, root, "file.root", []byte("data"))

	script := filepath.Join(t.TempDir(), "failsum")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755))

	obj := domain.NewCacheObject(root, cinfo)
	resolver := NewLocalResolver(script)

	assert.Error(t, resolver.Resolve(context.Background(), obj))
}

func TestCatalogResolver(t *testing.T) {
	client := catalog.NewMemoryClient()
	client.PutMetadata("cms", "/store/file.root", map[string]any{
		catalog.MetaAdler32: "01020304",
		catalog.MetaBytes:   int64(42),
	})

	obj := domain.NewCacheObject("/cache", "/cache/store/file.root.cinfo")
	resolver := NewCatalogResolver(client, "cms")

	require.NoError(t, resolver.Resolve(context.Background(), obj))
	assert.Equal(t, "01020304", obj.Checksum)

	// The metadata is cached on the descriptor so validation can reuse it
	require.NotNil(t, obj.CatalogMetadata)
	assert.Equal(t, int64(42), obj.CatalogMetadata[catalog.MetaBytes])
}

func TestCatalogResolverNotRegistered(t *testing.T) {
	client := catalog.NewMemoryClient()

	obj := domain.NewCacheObject("/cache", "/cache/unknown.cinfo")
	resolver := NewCatalogResolver(client, "cms")

	err := resolver.Resolve(context.Background(), obj)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestCatalogResolverMissingChecksumField(t *testing.T) {
	client := catalog.NewMemoryClient()
	client.PutMetadata("cms", "/file", map[string]any{catalog.MetaBytes: int64(1)})

	obj := domain.NewCacheObject("/cache", "/cache/file.cinfo")
	resolver := NewCatalogResolver(client, "cms")

	err := resolver.Resolve(context.Background(), obj)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotRegistered)
}

func TestDryRunResolver(t *testing.T) {
	obj := domain.NewCacheObject("/cache", "/cache/anything.cinfo")
	resolver := NewDryRunResolver()

	require.NoError(t, resolver.Resolve(context.Background(), obj))
	assert.Equal(t, DryRunChecksum, obj.Checksum)
}

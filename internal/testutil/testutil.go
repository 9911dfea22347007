// Package testutil builds cache trees for tests.
package testutil

import (
	"fmt"
	"hash/adler32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgecache/cachereport/internal/domain"
)

// CreateCachedObject writes a data file and its metadata side-car under root
// and returns the metadata path. relName uses forward slashes.
func CreateCachedObject(t *testing.T, root, relName string, content []byte) string {
	t.Helper()

	dataPath := filepath.Join(root, filepath.FromSlash(relName))
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		t.Fatalf("failed to create object directory: %v", err)
	}
	if err := os.WriteFile(dataPath, content, 0o644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}

	cinfoPath := dataPath + domain.CinfoSuffix
	if err := os.WriteFile(cinfoPath, []byte("cinfo"), 0o644); err != nil {
		t.Fatalf("failed to write cinfo file: %v", err)
	}

	return cinfoPath
}

// CreateOrphanCinfo writes a metadata side-car with no data file
func CreateOrphanCinfo(t *testing.T, root, relName string) string {
	t.Helper()

	cinfoPath := filepath.Join(root, filepath.FromSlash(relName)) + domain.CinfoSuffix
	if err := os.MkdirAll(filepath.Dir(cinfoPath), 0o755); err != nil {
		t.Fatalf("failed to create object directory: %v", err)
	}
	if err := os.WriteFile(cinfoPath, []byte("cinfo"), 0o644); err != nil {
		t.Fatalf("failed to write cinfo file: %v", err)
	}

	return cinfoPath
}

// Adler32Hex returns the digest the local resolver would compute for content
func Adler32Hex(content []byte) string {
	return fmt.Sprintf("%08x", adler32.Checksum(content))
}

// WaitForCondition waits for a condition to become true within timeout
func WaitForCondition(timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		<-ticker.C
	}
}

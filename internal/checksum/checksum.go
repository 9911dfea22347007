// Package checksum resolves a checksum for a discovered cache object. Two
// interchangeable strategies exist, selected once per run: local computation
// and catalog-sourced lookup.
package checksum

import (
	"context"
	"fmt"
	"hash/adler32"
	"io"
	"os"

	"github.com/edgecache/cachereport/internal/domain"
)

// Resolver sets the checksum on a descriptor. SizeBytes must already be
// populated when Resolve is called.
type Resolver interface {
	Resolve(ctx context.Context, obj *domain.CacheObject) error
}

// Options configures the in-process calculator
type Options struct {
	// BufferSize for streaming reads
	BufferSize int
}

// DefaultOptions returns the recommended default options
func DefaultOptions() Options {
	return Options{BufferSize: 64 * 1024}
}

// Adler32 streams a reader through the adler32 hash and returns the
// zero-padded lowercase hex digest
func Adler32(ctx context.Context, reader io.Reader, opts Options) (string, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}

	h := adler32.New()
	buffer := make([]byte, opts.BufferSize)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			if _, hashErr := h.Write(buffer[:n]); hashErr != nil {
				return "", fmt.Errorf("hash write error: %w", hashErr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read error: %w", err)
		}
	}

	return fmt.Sprintf("%08x", h.Sum32()), nil
}

// Adler32File computes the adler32 digest of a file on disk
func Adler32File(ctx context.Context, path string, opts Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return Adler32(ctx, f, opts)
}

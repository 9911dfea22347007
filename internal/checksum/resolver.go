package checksum

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/edgecache/cachereport/internal/catalog"
	"github.com/edgecache/cachereport/internal/domain"
	"github.com/edgecache/cachereport/internal/logger"
)

// LocalResolver computes the checksum from the data file on disk. When a
// command is configured it is invoked as `<command> <datafile>` and the first
// whitespace-delimited token of its output is taken; otherwise the digest is
// computed in-process.
type LocalResolver struct {
	command string
	opts    Options
}

// NewLocalResolver creates the local strategy. command may be empty.
func NewLocalResolver(command string) *LocalResolver {
	return &LocalResolver{
		command: command,
		opts:    DefaultOptions(),
	}
}

// Resolve implements Resolver
func (r *LocalResolver) Resolve(ctx context.Context, obj *domain.CacheObject) error {
	if r.command == "" {
		sum, err := Adler32File(ctx, obj.DataPath, r.opts)
		if err != nil {
			return fmt.Errorf("computing checksum for %s: %w", obj.DataPath, err)
		}
		obj.Checksum = sum
		return nil
	}

	out, err := exec.CommandContext(ctx, r.command, obj.DataPath).Output()
	if err != nil {
		return fmt.Errorf("checksum command failed for %s: %w", obj.DataPath, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return fmt.Errorf("checksum command produced no output for %s", obj.DataPath)
	}
	obj.Checksum = fields[0]
	return nil
}

// CatalogResolver takes the checksum the catalog already knows for the
// logical name and caches the full metadata mapping on the descriptor so
// validation does not need a second round-trip.
type CatalogResolver struct {
	client catalog.Client
	scope  string
}

// NewCatalogResolver creates the catalog-sourced strategy
func NewCatalogResolver(client catalog.Client, scope string) *CatalogResolver {
	return &CatalogResolver{client: client, scope: scope}
}

// Resolve implements Resolver. A not-registered result propagates to the
// caller: the driver removes the object from the pass rather than logging it
// as BAD.
func (r *CatalogResolver) Resolve(ctx context.Context, obj *domain.CacheObject) error {
	meta, err := r.client.GetMetadata(ctx, r.scope, obj.LogicalName)
	if err != nil {
		return err
	}

	sum, ok := meta[catalog.MetaAdler32].(string)
	if !ok {
		return fmt.Errorf("catalog metadata for %s has no %s field", obj.LogicalName, catalog.MetaAdler32)
	}

	obj.Checksum = sum
	obj.CatalogMetadata = meta
	return nil
}

// DryRunResolver returns a fixed checksum without touching the data file or
// the catalog
type DryRunResolver struct {
	log logger.Logger
}

// DryRunChecksum is the placeholder digest used in dry-run mode
const DryRunChecksum = "00000001"

// NewDryRunResolver creates the dry-run strategy
func NewDryRunResolver() *DryRunResolver {
	return &DryRunResolver{log: logger.With("component", "checksum")}
}

// Resolve implements Resolver
func (r *DryRunResolver) Resolve(_ context.Context, obj *domain.CacheObject) error {
	r.log.Debug("dry-run: substituting checksum", "name", obj.LogicalName, "checksum", DryRunChecksum)
	obj.Checksum = DryRunChecksum
	return nil
}

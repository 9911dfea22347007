// Package validator compares discovered cache objects against catalog-known
// truth and guards the outbound payload contract.
package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgecache/cachereport/internal/catalog"
	"github.com/edgecache/cachereport/internal/domain"
	"github.com/edgecache/cachereport/internal/logger"
)

// Validator performs the catalog-facing checks of a flush
type Validator interface {
	// ValidateObjects classifies each descriptor GOOD or BAD in place and
	// returns the GOOD ones in their original order
	ValidateObjects(ctx context.Context, objs []*domain.CacheObject) []*domain.CacheObject

	// CheckRSE confirms the target endpoint is flagged volatile by the
	// catalog. A non-volatile endpoint is fatal for the whole run.
	CheckRSE(ctx context.Context, rse string) error
}

// CatalogValidator validates against a live catalog client
type CatalogValidator struct {
	client catalog.Client
	scope  string
	log    logger.Logger
}

// New creates a validator backed by the given catalog client
func New(client catalog.Client, scope string) *CatalogValidator {
	return &CatalogValidator{
		client: client,
		scope:  scope,
		log:    logger.With("component", "validator"),
	}
}

// ValidateObjects implements Validator. Descriptors that already carry
// catalog metadata (catalog-sourced checksum strategy) are validated without
// a fresh lookup.
func (v *CatalogValidator) ValidateObjects(ctx context.Context, objs []*domain.CacheObject) []*domain.CacheObject {
	good := make([]*domain.CacheObject, 0, len(objs))
	for _, obj := range objs {
		v.validateOne(ctx, obj)
		if obj.Class == domain.ClassGood {
			good = append(good, obj)
		} else {
			v.log.Warn("object classified BAD", "name", obj.LogicalName, "reason", obj.ErrorMessage)
		}
	}
	return good
}

func (v *CatalogValidator) validateOne(ctx context.Context, obj *domain.CacheObject) {
	meta := obj.CatalogMetadata
	if meta == nil {
		var err error
		meta, err = v.client.GetMetadata(ctx, v.scope, obj.LogicalName)
		if err != nil {
			if errors.Is(err, domain.ErrNotRegistered) {
				obj.Class = domain.ClassBad
				obj.ErrorMessage = fmt.Sprintf("no catalog entry for %s:%s", v.scope, obj.LogicalName)
				return
			}
			obj.Class = domain.ClassBad
			obj.ErrorMessage = fmt.Sprintf("catalog lookup failed: %v", err)
			return
		}
	}

	catalogBytes, ok := toInt64(meta[catalog.MetaBytes])
	if !ok {
		obj.Class = domain.ClassBad
		obj.ErrorMessage = "catalog metadata has no size"
		return
	}
	catalogSum, ok := meta[catalog.MetaAdler32].(string)
	if !ok {
		obj.Class = domain.ClassBad
		obj.ErrorMessage = "catalog metadata has no checksum"
		return
	}

	if catalogBytes != obj.SizeBytes {
		obj.Class = domain.ClassBad
		obj.ErrorMessage = fmt.Sprintf("size mismatch: local=%d catalog=%d", obj.SizeBytes, catalogBytes)
		return
	}
	if catalogSum != obj.Checksum {
		obj.Class = domain.ClassBad
		obj.ErrorMessage = fmt.Sprintf("checksum mismatch: local=%s catalog=%s", obj.Checksum, catalogSum)
		return
	}

	obj.Class = domain.ClassGood
}

// CheckRSE implements Validator
func (v *CatalogValidator) CheckRSE(ctx context.Context, rse string) error {
	attrs, err := v.client.GetRSEAttributes(ctx, rse)
	if err != nil {
		return err
	}
	if !attrBool(attrs[catalog.AttrVolatile]) {
		return fmt.Errorf("%w: %s", domain.ErrRSENotVolatile, rse)
	}
	return nil
}

// toInt64 normalizes the numeric representations a catalog response may carry
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func attrBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "True" || b == "1"
	default:
		return false
	}
}

// DryRunValidator classifies every descriptor GOOD without any catalog read,
// so a dry run exercises the full flush path with zero side effects
type DryRunValidator struct {
	log logger.Logger
}

// NewDryRun creates the dry-run validator
func NewDryRun() *DryRunValidator {
	return &DryRunValidator{log: logger.With("component", "validator")}
}

// ValidateObjects implements Validator
func (v *DryRunValidator) ValidateObjects(_ context.Context, objs []*domain.CacheObject) []*domain.CacheObject {
	for _, obj := range objs {
		obj.Class = domain.ClassGood
		v.log.Debug("dry-run: would validate", "name", obj.LogicalName, "bytes", obj.SizeBytes, "checksum", obj.Checksum)
	}
	return objs
}

// CheckRSE implements Validator
func (v *DryRunValidator) CheckRSE(_ context.Context, rse string) error {
	v.log.Debug("dry-run: skipping rse volatility check", "rse", rse)
	return nil
}

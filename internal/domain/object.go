package domain

import (
	"path/filepath"
	"strings"
)

// CinfoSuffix identifies a cache metadata side-car file. The data file is the
// same path with the suffix stripped.
const CinfoSuffix = ".cinfo"

// Classification is the validator's verdict on a discovered object
type Classification int

const (
	// ClassUnknown means the object has not been validated yet
	ClassUnknown Classification = iota

	// ClassGood means catalog-known size and checksum match the local ones
	ClassGood

	// ClassBad means the catalog disagrees with the local object, or the
	// catalog entry is missing required fields
	ClassBad
)

// String returns the string representation of the classification
func (c Classification) String() string {
	switch c {
	case ClassGood:
		return "GOOD"
	case ClassBad:
		return "BAD"
	default:
		return "UNKNOWN"
	}
}

// CacheObject describes one object discovered in the cache. It is created at
// discovery and mutated through the inspection, resolution and validation
// stages until its batch is flushed or it is classified BAD.
type CacheObject struct {
	// CinfoPath is the path to the side-car metadata file. Its existence is
	// the source of truth for the object's existence.
	CinfoPath string

	// DataPath is the path to the cached data file (CinfoPath with the
	// metadata suffix stripped)
	DataPath string

	// LogicalName is the catalog-facing identifier: CinfoPath with the scan
	// root prefix removed and the metadata suffix stripped
	LogicalName string

	// SizeBytes is populated from introspection (file_size). It must be set
	// before checksum resolution is attempted.
	SizeBytes int64

	// Checksum is populated by the checksum resolver
	Checksum string

	// CatalogMetadata is present only when the resolver used the
	// catalog-sourced strategy; it saves a second catalog round-trip during
	// validation
	CatalogMetadata map[string]any

	// Usable is true only if both the metadata file and the data file exist
	// and introspection succeeded with all required fields
	Usable bool

	// Complete is true only if introspection reports 100% completion
	Complete bool

	// Class is the validator's verdict
	Class Classification

	// ErrorMessage is set when the object is classified BAD
	ErrorMessage string
}

// Eligible reports whether the object may enter a batch
func (o *CacheObject) Eligible() bool {
	return o.Usable && o.Complete
}

// NewCacheObject builds a descriptor for a discovered metadata file. root is
// the effective scan root the logical name is computed against.
func NewCacheObject(root, cinfoPath string) *CacheObject {
	return &CacheObject{
		CinfoPath:   cinfoPath,
		DataPath:    strings.TrimSuffix(cinfoPath, CinfoSuffix),
		LogicalName: LogicalName(root, cinfoPath),
	}
}

// LogicalName derives the catalog-facing name from a metadata file path:
// the root prefix is removed and the metadata suffix stripped. The result
// always uses forward slashes and keeps its leading slash.
func LogicalName(root, cinfoPath string) string {
	name := strings.TrimSuffix(cinfoPath, CinfoSuffix)
	root = strings.TrimRight(root, string(filepath.Separator))
	name = strings.TrimPrefix(name, root)
	name = filepath.ToSlash(name)
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

package domain

import "errors"

// Catalog errors
var (
	// ErrNotRegistered indicates the logical name is absent from the catalog.
	// The object is physically cached but not yet catalog-registered, so it
	// is simply not reportable this pass.
	ErrNotRegistered = errors.New("replica not registered in catalog")

	// ErrRSENotVolatile indicates the target endpoint is not flagged volatile
	// by the catalog. Reporting non-cache storage as ephemeral would corrupt
	// the catalog, so this aborts the whole run.
	ErrRSENotVolatile = errors.New("rse is not volatile")

	// ErrRSENotFound indicates the target endpoint is unknown to the catalog
	ErrRSENotFound = errors.New("rse not found in catalog")
)

// Pipeline errors
var (
	// ErrObjectUnusable indicates the object failed inspection and was
	// skipped
	ErrObjectUnusable = errors.New("cache object unusable")

	// ErrInvalidPayload indicates the outbound payload violates the report
	// schema. This is a contract defect, fatal for the batch.
	ErrInvalidPayload = errors.New("invalid report payload")

	// ErrPassInProgress indicates another scan pass already holds the lock
	ErrPassInProgress = errors.New("scan pass already in progress")
)

// Config errors
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed or fails validation
	ErrConfigInvalid = errors.New("invalid config")
)

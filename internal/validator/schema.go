package validator

import (
	"fmt"

	"github.com/edgecache/cachereport/internal/domain"
)

// ValidatePayload checks the outbound payload against the report contract:
// the operation-generic shape plus the operation-specific rules. A violation
// indicates a programming or contract defect, so the batch must abort rather
// than transmit.
func ValidatePayload(p *domain.ReportPayload) error {
	if p == nil {
		return fmt.Errorf("%w: payload is nil", domain.ErrInvalidPayload)
	}
	if !p.Operation.IsValid() {
		return fmt.Errorf("%w: unknown operation %q", domain.ErrInvalidPayload, p.Operation)
	}
	if p.RSE == "" {
		return fmt.Errorf("%w: rse is empty", domain.ErrInvalidPayload)
	}
	if len(p.Files) == 0 {
		return fmt.Errorf("%w: no file entries", domain.ErrInvalidPayload)
	}

	for i, f := range p.Files {
		if f.Scope == "" {
			return fmt.Errorf("%w: files[%d] has no scope", domain.ErrInvalidPayload, i)
		}
		if f.Name == "" {
			return fmt.Errorf("%w: files[%d] has no name", domain.ErrInvalidPayload, i)
		}
	}

	switch p.Operation {
	case domain.OperationAdd:
		if p.Lifetime <= 0 {
			return fmt.Errorf("%w: add_replicas requires a positive lifetime", domain.ErrInvalidPayload)
		}
		for i, f := range p.Files {
			if f.Bytes < 0 {
				return fmt.Errorf("%w: files[%d] has negative size", domain.ErrInvalidPayload, i)
			}
			if f.Adler32 == "" {
				return fmt.Errorf("%w: files[%d] has no checksum", domain.ErrInvalidPayload, i)
			}
		}
	case domain.OperationDelete:
		// Deletion identifies replicas by scope and name alone; size and
		// checksum are not part of the contract.
	}

	return nil
}

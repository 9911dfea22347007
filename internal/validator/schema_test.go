package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgecache/cachereport/internal/domain"
)

func validAddPayload() *domain.ReportPayload {
	return &domain.ReportPayload{
		Files: []domain.FileEntry{
			{Scope: "atlas", Name: "/data/file.root", Bytes: 100, Adler32: "0a0b0c0d"},
		},
		RSE:       "EDGE_CACHE",
		Lifetime:  86400,
		Operation: domain.OperationAdd,
	}
}

func TestValidatePayloadAdd(t *testing.T) {
	assert.NoError(t, ValidatePayload(validAddPayload()))
}

func TestValidatePayloadDelete(t *testing.T) {
	p := &domain.ReportPayload{
		Files:     []domain.FileEntry{{Scope: "atlas", Name: "/data/file.root"}},
		RSE:       "EDGE_CACHE",
		Operation: domain.OperationDelete,
	}
	assert.NoError(t, ValidatePayload(p))
}

func TestValidatePayloadRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ReportPayload)
	}{
		{"unknown operation", func(p *domain.ReportPayload) { p.Operation = "move_replicas" }},
		{"empty operation", func(p *domain.ReportPayload) { p.Operation = "" }},
		{"empty rse", func(p *domain.ReportPayload) { p.RSE = "" }},
		{"no files", func(p *domain.ReportPayload) { p.Files = nil }},
		{"file without scope", func(p *domain.ReportPayload) { p.Files[0].Scope = "" }},
		{"file without name", func(p *domain.ReportPayload) { p.Files[0].Name = "" }},
		{"add without lifetime", func(p *domain.ReportPayload) { p.Lifetime = 0 }},
		{"add with negative size", func(p *domain.ReportPayload) { p.Files[0].Bytes = -1 }},
		{"add without checksum", func(p *domain.ReportPayload) { p.Files[0].Adler32 = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validAddPayload()
			tt.mutate(p)
			assert.ErrorIs(t, ValidatePayload(p), domain.ErrInvalidPayload)
		})
	}
}

func TestValidatePayloadNil(t *testing.T) {
	assert.ErrorIs(t, ValidatePayload(nil), domain.ErrInvalidPayload)
}

func TestValidatePayloadDeleteSkipsAddRules(t *testing.T) {
	// Deletion carries no lifetime or checksum; those rules bind the add
	// operation only
	p := &domain.ReportPayload{
		Files:     []domain.FileEntry{{Scope: "atlas", Name: "/f", Bytes: 0, Adler32: ""}},
		RSE:       "EDGE_CACHE",
		Lifetime:  0,
		Operation: domain.OperationDelete,
	}
	assert.NoError(t, ValidatePayload(p))
}

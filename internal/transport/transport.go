// Package transport delivers validated report payloads to the remote
// reporting endpoint over a mutually authenticated connection.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edgecache/cachereport/internal/domain"
	"github.com/edgecache/cachereport/internal/logger"
)

// Reporter sends one batch as a single request. It never retries; the next
// scheduled pass rediscovers anything a failed flush dropped.
type Reporter interface {
	Send(ctx context.Context, payloads []*domain.ReportPayload) error
}

// Config for the HTTPS reporter
type Config struct {
	Endpoint    string
	Port        int
	Destination string
	CertFile    string
	KeyFile     string
	Timeout     time.Duration
}

// HTTPSReporter posts line-delimited JSON payloads over mutual TLS
type HTTPSReporter struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// NewHTTPSReporter loads the client certificate pair and builds the reporter
func NewHTTPSReporter(cfg Config) (*HTTPSReporter, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading client certificate: %w", err)
	}

	return &HTTPSReporter{
		url: fmt.Sprintf("https://%s:%d%s", cfg.Endpoint, cfg.Port, cfg.Destination),
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{cert},
				},
			},
		},
		log: logger.With("component", "transport"),
	}, nil
}

// Send implements Reporter. The body is one JSON object per line, delivered
// in a single POST.
func (r *HTTPSReporter) Send(ctx context.Context, payloads []*domain.ReportPayload) error {
	body, err := Encode(payloads)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("report delivery failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	reason, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("report rejected: %s: %s", resp.Status, bytes.TrimSpace(reason))
	}

	r.log.Debug("report delivered", "status", resp.Status, "bytes", len(body))
	return nil
}

// Encode serializes payloads as line-delimited JSON
func Encode(payloads []*domain.ReportPayload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range payloads {
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DryRunReporter logs the would-be body and returns immediately
type DryRunReporter struct {
	log logger.Logger
}

// NewDryRunReporter creates the dry-run reporter
func NewDryRunReporter() *DryRunReporter {
	return &DryRunReporter{log: logger.With("component", "transport")}
}

// Send implements Reporter with zero side effects
func (r *DryRunReporter) Send(_ context.Context, payloads []*domain.ReportPayload) error {
	body, err := Encode(payloads)
	if err != nil {
		return err
	}
	r.log.Debug("dry-run: would send report", "body", string(body))
	return nil
}

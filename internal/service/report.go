package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edgecache/cachereport/internal/batch"
	"github.com/edgecache/cachereport/internal/catalog"
	"github.com/edgecache/cachereport/internal/checksum"
	"github.com/edgecache/cachereport/internal/config"
	"github.com/edgecache/cachereport/internal/domain"
	"github.com/edgecache/cachereport/internal/inspect"
	"github.com/edgecache/cachereport/internal/logger"
	"github.com/edgecache/cachereport/internal/metrics"
	"github.com/edgecache/cachereport/internal/progress"
	"github.com/edgecache/cachereport/internal/scanner"
	"github.com/edgecache/cachereport/internal/transport"
	"github.com/edgecache/cachereport/internal/validator"
)

// ReportService drives one scan pass: scan, inspect, resolve, accumulate,
// validate, flush. The accumulator is owned here and mutated nowhere else.
type ReportService struct {
	cfg       *config.Config
	inspector inspect.Inspector
	resolver  checksum.Resolver
	validator validator.Validator
	reporter  transport.Reporter
	prog      progress.Reporter
}

// NewReportService wires the pipeline capabilities from the configuration.
// In dry-run mode every externally-effectful capability is replaced by its
// no-side-effect twin; no other code path checks the flag.
func NewReportService(cfg *config.Config, client catalog.Client) (*ReportService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.DryRun {
		return &ReportService{
			cfg:       cfg,
			inspector: inspect.NewStatInspector(),
			resolver:  checksum.NewDryRunResolver(),
			validator: validator.NewDryRun(),
			reporter:  transport.NewDryRunReporter(),
			prog:      progress.NullReporter{},
		}, nil
	}

	var resolver checksum.Resolver
	switch cfg.Adler {
	case config.AdlerCatalog:
		resolver = checksum.NewCatalogResolver(client, cfg.VO)
	default:
		resolver = checksum.NewLocalResolver(cfg.Scan.ChecksumCommand)
	}

	reporter, err := transport.NewHTTPSReporter(transport.Config{
		Endpoint:    cfg.Report.Endpoint,
		Port:        cfg.Report.Port,
		Destination: cfg.Report.Destination,
		CertFile:    cfg.Report.SSLCertFile,
		KeyFile:     cfg.Report.SSLKeyFile,
		Timeout:     time.Duration(cfg.Report.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reporter: %w", err)
	}

	inspectTimeout := time.Duration(cfg.Scan.InspectTimeoutSeconds) * time.Second

	return &ReportService{
		cfg:       cfg,
		inspector: inspect.NewExecInspector(cfg.Scan.InspectCommand, inspectTimeout),
		resolver:  resolver,
		validator: validator.New(client, cfg.VO),
		reporter:  reporter,
		prog:      progress.NullReporter{},
	}, nil
}

// NewReportServiceWith assembles a service from explicit capabilities
func NewReportServiceWith(cfg *config.Config, inspector inspect.Inspector, resolver checksum.Resolver, val validator.Validator, reporter transport.Reporter) *ReportService {
	return &ReportService{
		cfg:       cfg,
		inspector: inspector,
		resolver:  resolver,
		validator: val,
		reporter:  reporter,
		prog:      progress.NullReporter{},
	}
}

// SetProgressReporter sets the progress reporter for subsequent passes
func (s *ReportService) SetProgressReporter(reporter progress.Reporter) {
	if reporter == nil {
		reporter = progress.NullReporter{}
	}
	s.prog = reporter
}

// RunPass executes one complete scan pass and returns its cumulative
// counters. The endpoint volatility check runs before any scanning; a
// non-volatile RSE aborts the whole run.
func (s *ReportService) RunPass(ctx context.Context) (*domain.PassStats, error) {
	runID := uuid.NewString()
	log := logger.With("run_id", runID, "rse", s.cfg.RSE)
	start := time.Now()

	if err := s.validator.CheckRSE(ctx, s.cfg.RSE); err != nil {
		log.Error("endpoint validation failed", "error", err)
		return nil, err
	}

	root := s.cfg.EffectiveScanRoot()
	scan := scanner.New(root)
	acc := batch.New(s.cfg.FilePerReport)
	stats := &domain.PassStats{RunID: runID}

	log.Info("scan pass starting", "root", root, "adler", s.cfg.Adler, "dryrun", s.cfg.DryRun)
	s.prog.PassStarted(root)

	walkErr := scan.Walk(ctx, func(cinfoPath string) error {
		stats.Scanned++
		metrics.ObjectsScanned.Inc()

		obj := domain.NewCacheObject(root, cinfoPath)
		if err := s.process(ctx, log, obj, stats); err != nil {
			return err
		}

		if !obj.Eligible() || obj.Checksum == "" {
			return nil
		}

		if acc.Add(obj) {
			return s.flush(ctx, log, acc, stats)
		}
		return nil
	})
	if walkErr != nil {
		return stats, walkErr
	}

	// Final partial flush
	if acc.Len() > 0 {
		if err := s.flush(ctx, log, acc, stats); err != nil {
			return stats, err
		}
	}

	metrics.PassDuration.Observe(time.Since(start).Seconds())
	log.Info("scan pass done",
		"scanned", stats.Scanned,
		"reported", stats.Reported,
		"bad", stats.Bad,
		"unusable", stats.Unusable,
		"incomplete", stats.Incomplete,
		"unregistered", stats.Unregistered,
		"flushes", stats.Flushes,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	s.prog.PassCompleted(*stats)

	return stats, nil
}

// process takes one discovered object through inspection and checksum
// resolution. Failures are recovered at object granularity.
func (s *ReportService) process(ctx context.Context, log logger.Logger, obj *domain.CacheObject, stats *domain.PassStats) error {
	if err := s.inspector.Inspect(ctx, obj); err != nil {
		return err
	}

	if !obj.Usable {
		stats.Unusable++
		metrics.ObjectsSkipped.WithLabelValues(metrics.ReasonUnusable).Inc()
		log.Debug("skipping unusable object", "name", obj.LogicalName)
		return nil
	}
	if !obj.Complete {
		stats.Incomplete++
		metrics.ObjectsSkipped.WithLabelValues(metrics.ReasonIncomplete).Inc()
		log.Debug("skipping incomplete object", "name", obj.LogicalName)
		return nil
	}

	if err := s.resolver.Resolve(ctx, obj); err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			// Cached but not yet catalog-registered: not reportable this
			// pass, and not an operator-facing error
			stats.Unregistered++
			metrics.ObjectsSkipped.WithLabelValues(metrics.ReasonUnregistered).Inc()
			log.Debug("object not registered in catalog", "name", obj.LogicalName)
			obj.Usable = false
			return nil
		}
		stats.Unusable++
		metrics.ObjectsSkipped.WithLabelValues(metrics.ReasonUnusable).Inc()
		log.Warn("checksum resolution failed", "name", obj.LogicalName, "error", err)
		obj.Usable = false
		return nil
	}

	return nil
}

// flush validates the in-flight batch and delivers the GOOD entries as one
// payload. A schema violation aborts the run; a transport failure is logged
// and the pass continues, since dropped objects are rediscovered next pass.
func (s *ReportService) flush(ctx context.Context, log logger.Logger, acc *batch.Accumulator, stats *domain.PassStats) error {
	objs := acc.Drain()
	good := s.validator.ValidateObjects(ctx, objs)

	bad := len(objs) - len(good)
	stats.Bad += bad
	if bad > 0 {
		metrics.ObjectsBad.Add(float64(bad))
	}

	if len(good) == 0 {
		log.Debug("batch has no GOOD objects, skipping delivery", "dropped", bad)
		return nil
	}

	files := make([]domain.FileEntry, 0, len(good))
	for _, obj := range good {
		files = append(files, domain.FileEntry{
			Scope:   s.cfg.VO,
			Name:    obj.LogicalName,
			Bytes:   obj.SizeBytes,
			Adler32: obj.Checksum,
		})
	}

	payload := &domain.ReportPayload{
		Files:     files,
		RSE:       s.cfg.RSE,
		Lifetime:  s.cfg.Lifetime,
		Operation: domain.OperationAdd,
	}

	if err := validator.ValidatePayload(payload); err != nil {
		// Contract defect, not a transient condition
		log.Error("payload failed schema validation", "error", err)
		return err
	}

	if err := s.reporter.Send(ctx, []*domain.ReportPayload{payload}); err != nil {
		metrics.TransportFailures.Inc()
		log.Error("report delivery failed, objects will be rediscovered next pass",
			"files", len(files), "error", err)
		return nil
	}

	stats.Reported += len(files)
	stats.Flushes++
	metrics.BatchesFlushed.Inc()
	metrics.ObjectsReported.Add(float64(len(files)))
	log.Info("batch flushed", "files", len(files), "total_reported", stats.Reported)
	s.prog.BatchFlushed(len(files), stats.Reported)

	return nil
}

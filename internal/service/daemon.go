package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edgecache/cachereport/internal/config"
	"github.com/edgecache/cachereport/internal/lock"
	"github.com/edgecache/cachereport/internal/logger"
	"github.com/edgecache/cachereport/internal/metrics"
	"github.com/edgecache/cachereport/internal/scheduler"
	"github.com/edgecache/cachereport/internal/state"
)

// DaemonService repeats scan passes on the configured interval, guarding
// each pass with the file lock and recording it in the pass history.
type DaemonService struct {
	mu        sync.RWMutex
	cfg       *config.Config
	reportSvc *ReportService
	stateMgr  *state.Manager
	passLock  *lock.FileLock
	scheduler scheduler.Scheduler
}

// DaemonStatus represents the current daemon status
type DaemonStatus struct {
	Running        bool
	SchedulerStats *scheduler.Status
	LastPass       *state.PassRecord
}

// NewDaemonService creates a daemon around an assembled report service
func NewDaemonService(cfg *config.Config, reportSvc *ReportService) (*DaemonService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if reportSvc == nil {
		return nil, fmt.Errorf("report service cannot be nil")
	}

	stateMgr, err := state.NewManager(cfg.StateDir())
	if err != nil {
		return nil, fmt.Errorf("failed to create state manager: %w", err)
	}

	passLock, err := lock.NewFileLock(cfg.StateDir())
	if err != nil {
		stateMgr.Close()
		return nil, fmt.Errorf("failed to create pass lock: %w", err)
	}

	return &DaemonService{
		cfg:       cfg,
		reportSvc: reportSvc,
		stateMgr:  stateMgr,
		passLock:  passLock,
	}, nil
}

// Start starts the pass loop and, when configured, the metrics listener
func (d *DaemonService) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler != nil {
		return fmt.Errorf("daemon is already running")
	}

	if addr := d.cfg.Daemon.MetricsAddr; addr != "" {
		go func() {
			if err := metrics.Serve(addr); err != nil {
				logger.Get().Error("metrics listener failed", "addr", addr, "error", err)
			}
		}()
		logger.Get().Info("metrics listener started", "addr", addr)
	}

	runner := &passRunner{
		cfg:       d.cfg,
		reportSvc: d.reportSvc,
		stateMgr:  d.stateMgr,
		passLock:  d.passLock,
	}

	sched, err := scheduler.NewIntervalScheduler(scheduler.Config{
		Interval:       d.cfg.Interval(),
		RunImmediately: true,
	}, runner)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	d.scheduler = sched
	return nil
}

// Stop stops the daemon and closes the pass history
func (d *DaemonService) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler == nil {
		return fmt.Errorf("daemon is not running")
	}

	if err := d.scheduler.Stop(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	d.scheduler = nil
	return nil
}

// RunOnce executes a single locked, recorded pass without starting the loop
func (d *DaemonService) RunOnce(ctx context.Context) error {
	runner := &passRunner{
		cfg:       d.cfg,
		reportSvc: d.reportSvc,
		stateMgr:  d.stateMgr,
		passLock:  d.passLock,
	}
	return runner.RunPass(ctx)
}

// Close releases resources without requiring the loop to have started
func (d *DaemonService) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			return err
		}
		d.scheduler = nil
	}
	return d.stateMgr.Close()
}

// Status returns the current daemon status
func (d *DaemonService) Status() *DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := &DaemonStatus{}
	if d.scheduler != nil {
		status.Running = true
		status.SchedulerStats = d.scheduler.Status()
	}
	if last, err := d.stateMgr.GetLastSuccess(d.cfg.RSE); err == nil {
		status.LastPass = last
	}
	return status
}

// passRunner executes one locked pass and records its outcome
type passRunner struct {
	cfg       *config.Config
	reportSvc *ReportService
	stateMgr  *state.Manager
	passLock  *lock.FileLock
}

// RunPass implements scheduler.PassRunner
func (r *passRunner) RunPass(ctx context.Context) error {
	if err := r.passLock.Acquire(r.cfg.RSE); err != nil {
		logger.Get().Warn("skipping pass, lock not available", "error", err)
		return err
	}
	defer func() {
		if err := r.passLock.Release(); err != nil {
			logger.Get().Warn("failed to release pass lock", "error", err)
		}
	}()

	start := time.Now()
	stats, err := r.reportSvc.RunPass(ctx)

	record := state.PassRecord{
		RSE:       r.cfg.RSE,
		StartTime: start,
		EndTime:   time.Now(),
		Status:    state.StatusSuccess,
	}
	if stats != nil {
		record.RunID = stats.RunID
		record.Scanned = stats.Scanned
		record.Reported = stats.Reported
		record.Bad = stats.Bad
		record.Unregistered = stats.Unregistered
	}
	if err != nil {
		record.Status = state.StatusFailed
		record.Error = err.Error()
	}

	if saveErr := r.stateMgr.SavePass(record); saveErr != nil {
		logger.Get().Error("failed to record pass", "error", saveErr)
	}

	return err
}

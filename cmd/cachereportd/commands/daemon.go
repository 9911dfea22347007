package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edgecache/cachereport/internal/daemon"
	"github.com/edgecache/cachereport/internal/logger"
	"github.com/edgecache/cachereport/internal/service"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scan passes on a fixed interval",
	Long: `Run the reconciliation loop: a full scan pass, then a fixed sleep, until
terminated. The first pass starts immediately. SIGINT or SIGTERM stops the
loop after the in-flight pass finishes its current object.

Examples:
  cachereportd daemon
  cachereportd daemon --config /etc/cachereport/config.yaml`,
	RunE: runDaemon,
}

func init() {
	addOverrideFlags(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Shutdown()

	pidPath := cfg.Daemon.PIDFile
	if pidPath == "" {
		pidPath, err = daemon.DefaultPIDPath(cfg.StateDir())
		if err != nil {
			return err
		}
	}
	pidFile := daemon.NewPIDFile(pidPath)
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer pidFile.Remove()

	reportSvc, err := newReportService(cfg)
	if err != nil {
		return err
	}

	dmn, err := service.NewDaemonService(cfg, reportSvc)
	if err != nil {
		return err
	}
	defer dmn.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := dmn.Start(ctx); err != nil {
		return err
	}

	logger.Get().Info("daemon started",
		"rse", cfg.RSE,
		"interval", cfg.Interval(),
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)

	logger.Get().Info("shutdown signal received, stopping daemon")
	cancel()

	return dmn.Stop()
}

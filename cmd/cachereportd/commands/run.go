package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgecache/cachereport/internal/catalog"
	"github.com/edgecache/cachereport/internal/config"
	"github.com/edgecache/cachereport/internal/logger"
	"github.com/edgecache/cachereport/internal/progress"
	"github.com/edgecache/cachereport/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a single scan pass",
	Long: `Run one complete scan pass: walk the cache, validate discovered objects
against the catalog and report the confirmed ones, then exit.

Examples:
  # One pass with the configured settings
  cachereportd run

  # See what would be reported without touching anything
  cachereportd run --dryrun --debug DEBUG --logtostdout`,
	RunE: runRun,
}

func init() {
	addOverrideFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Shutdown()

	reportSvc, err := newReportService(cfg)
	if err != nil {
		return err
	}
	reportSvc.SetProgressReporter(progress.NewCallbackReporter(printProgress))

	dmn, err := service.NewDaemonService(cfg, reportSvc)
	if err != nil {
		return err
	}
	defer dmn.Close()

	return dmn.RunOnce(cmd.Context())
}

// newReportService builds the pipeline from the configuration
func newReportService(cfg *config.Config) (*service.ReportService, error) {
	var client catalog.Client
	if !cfg.DryRun {
		client = catalog.NewRESTClient(cfg.Catalog.URL, time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second)
	}
	return service.NewReportService(cfg, client)
}

func printProgress(update progress.Update) {
	switch update.Type {
	case progress.UpdateStart:
		fmt.Printf("scanning %s\n", update.Root)
	case progress.UpdateFlush:
		fmt.Printf("reported %d objects (%d total)\n", update.Delivered, update.Cumulative)
	case progress.UpdateDone:
		s := update.Stats
		fmt.Printf("done: scanned=%d reported=%d bad=%d unusable=%d incomplete=%d unregistered=%d\n",
			s.Scanned, s.Reported, s.Bad, s.Unusable, s.Incomplete, s.Unregistered)
	}
}

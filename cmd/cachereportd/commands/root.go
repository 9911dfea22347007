// Package commands implements the cachereportd CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgecache/cachereport/internal/config"
	"github.com/edgecache/cachereport/internal/logger"
)

var (
	// Version information injected at build time
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags
	cfgFile string

	// Override flags shared by run and daemon
	flagRSE              string
	flagRootDir          string
	flagOnlyFilesFromDir string
	flagAdler            string
	flagFilePerReport    int
	flagLifetime         int64
	flagDebug            string
	flagDryRun           bool
	flagLogToStdout      bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "cachereportd",
	Short: "Report volatile cache contents to the replica catalog",
	Long: `cachereportd reconciles a volatile edge cache with the central replica
catalog. It walks the cache for metadata side-car files, verifies each cached
object's completeness and checksum against catalog-known truth, and reports
confirmed replicas in size-bounded batches so the catalog can track and
expire them.

Use "cachereportd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: searched in ., /etc/cachereport, ~/.cachereport)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagRSE, "rse", "", "storage endpoint to report for")
	cmd.Flags().StringVar(&flagRootDir, "rootdir", "", "cache root directory")
	cmd.Flags().StringVar(&flagOnlyFilesFromDir, "onlyfilesfromdir", "", "restrict the scan to this sub-path of rootdir")
	cmd.Flags().StringVar(&flagAdler, "adler", "", "checksum strategy: local or rucio")
	cmd.Flags().IntVar(&flagFilePerReport, "fileperreport", 0, "files per report batch")
	cmd.Flags().Int64Var(&flagLifetime, "lifetime", 0, "replica lifetime in seconds")
	cmd.Flags().StringVar(&flagDebug, "debug", "", "log level: FATAL, ERROR, WARNING, INFO or DEBUG")
	cmd.Flags().BoolVar(&flagDryRun, "dryrun", false, "log what would be reported without side effects")
	cmd.Flags().BoolVar(&flagLogToStdout, "logtostdout", false, "duplicate log output to stdout")
}

// loadConfig loads the configuration and applies flag overrides. Validation
// runs once, after the overrides, so a mandatory key may come from either the
// config source or its flag. Validation failure aborts before any scanning
// begins.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("rse") {
		cfg.RSE = flagRSE
	}
	if cmd.Flags().Changed("rootdir") {
		cfg.Scan.RootDir = flagRootDir
	}
	if cmd.Flags().Changed("onlyfilesfromdir") {
		cfg.Scan.OnlyFilesFromDir = flagOnlyFilesFromDir
	}
	if cmd.Flags().Changed("adler") {
		cfg.Adler = flagAdler
	}
	if cmd.Flags().Changed("fileperreport") {
		cfg.FilePerReport = flagFilePerReport
	}
	if cmd.Flags().Changed("lifetime") {
		cfg.Lifetime = flagLifetime
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = flagDebug
	}
	if cmd.Flags().Changed("dryrun") {
		cfg.DryRun = flagDryRun
	}
	if cmd.Flags().Changed("logtostdout") {
		cfg.LogToStdout = flagLogToStdout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger configures the global logger from the run configuration
func initLogger(cfg *config.Config) error {
	logCfg := logger.Config{
		Level:    logger.ParseLevel(cfg.Debug),
		Format:   logger.ParseFormat(cfg.Logging.Format),
		ToStdout: cfg.LogToStdout,
	}
	if cfg.Logging.File != "" {
		logCfg.File = logger.FileConfig{
			Enabled:    true,
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		}
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

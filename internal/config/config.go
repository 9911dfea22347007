package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edgecache/cachereport/internal/domain"
)

// Checksum resolution strategies selectable via the adler key
const (
	AdlerLocal   = "local"
	AdlerCatalog = "rucio"
)

var validDebugLevels = map[string]bool{
	"FATAL":   true,
	"ERROR":   true,
	"WARNING": true,
	"INFO":    true,
	"DEBUG":   true,
}

// Report groups everything needed to deliver payloads to the catalog's
// reporting endpoint
type Report struct {
	// Endpoint is the report server host
	Endpoint string `mapstructure:"endpoint"`

	// Port of the report server (1-65535)
	Port int `mapstructure:"port"`

	// Destination is the request path, must start with /
	Destination string `mapstructure:"destination"`

	// SSLCertFile and SSLKeyFile are the client certificate pair for the
	// mutually authenticated transport
	SSLCertFile string `mapstructure:"ssl_cert_file"`
	SSLKeyFile  string `mapstructure:"ssl_key_file"`

	// TimeoutSeconds bounds a single delivery request
	TimeoutSeconds int `mapstructure:"timeout"`
}

// Catalog configures the replica catalog client
type Catalog struct {
	// URL is the base URL of the catalog's REST interface
	URL string `mapstructure:"url"`

	// TimeoutSeconds bounds a single catalog lookup
	TimeoutSeconds int `mapstructure:"timeout"`
}

// Scan configures the cache traversal
type Scan struct {
	// RootDir is the cache root; must exist and be a directory
	RootDir string `mapstructure:"rootdir"`

	// OnlyFilesFromDir restricts the scan to a sub-path under RootDir
	OnlyFilesFromDir string `mapstructure:"onlyfilesfromdir"`

	// InspectCommand is the external introspection tool invoked as
	// `<tool> -j <cinfo>`
	InspectCommand string `mapstructure:"inspect_command"`

	// InspectTimeoutSeconds bounds one introspection call
	InspectTimeoutSeconds int `mapstructure:"inspect_timeout"`

	// ChecksumCommand optionally overrides the in-process adler32
	// computation with an external tool invoked as `<tool> <datafile>`
	ChecksumCommand string `mapstructure:"checksum_command"`
}

// Daemon configures the interval loop
type Daemon struct {
	// IntervalSeconds is the sleep between scan passes
	IntervalSeconds int `mapstructure:"interval"`

	// PIDFile path for daemon mode (empty = default under the state dir)
	PIDFile string `mapstructure:"pidfile"`

	// StateDir holds the lock file and the pass-history database
	StateDir string `mapstructure:"statedir"`

	// MetricsAddr enables the prometheus listener when non-empty,
	// e.g. ":9127"
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Logging configures the log file target
type Logging struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
	Format     string `mapstructure:"format"`
}

// Config is the complete run configuration
type Config struct {
	Report  Report  `mapstructure:"report"`
	Catalog Catalog `mapstructure:"catalog"`
	Scan    Scan    `mapstructure:"scan"`
	Daemon  Daemon  `mapstructure:"daemon"`
	Logging Logging `mapstructure:"logging"`

	// VO is the scope replicas are reported under
	VO string `mapstructure:"vo"`

	// RSE is the storage endpoint being reconciled; mandatory
	RSE string `mapstructure:"rse"`

	// Adler selects the checksum strategy: "local" or "rucio"
	Adler string `mapstructure:"adler"`

	// FilePerReport is the batch flush threshold
	FilePerReport int `mapstructure:"fileperreport"`

	// Lifetime is the requested replica expiration horizon in seconds
	Lifetime int64 `mapstructure:"lifetime"`

	// Debug is the log level: FATAL, ERROR, WARNING, INFO or DEBUG
	Debug string `mapstructure:"debug"`

	// LogToStdout duplicates log output to stdout
	LogToStdout bool `mapstructure:"logtostdout"`

	// DryRun short-circuits every externally-effectful call while keeping
	// the full classification control flow
	DryRun bool `mapstructure:"dryrun"`
}

// Validate checks the configuration is complete and consistent. It runs once
// before any scanning begins; failure aborts the whole run.
func (c *Config) Validate() error {
	if c.Report.Port < 1 || c.Report.Port > 65535 {
		return fmt.Errorf("%w: port must be in 1-65535, got %d", domain.ErrConfigInvalid, c.Report.Port)
	}
	if c.Report.Endpoint == "" {
		return fmt.Errorf("%w: endpoint cannot be empty", domain.ErrConfigInvalid)
	}
	if !strings.HasPrefix(c.Report.Destination, "/") {
		return fmt.Errorf("%w: destination must start with /, got %q", domain.ErrConfigInvalid, c.Report.Destination)
	}
	if c.RSE == "" {
		return fmt.Errorf("%w: rse cannot be empty", domain.ErrConfigInvalid)
	}
	if c.FilePerReport <= 0 {
		return fmt.Errorf("%w: fileperreport must be positive, got %d", domain.ErrConfigInvalid, c.FilePerReport)
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("%w: lifetime must be positive, got %d", domain.ErrConfigInvalid, c.Lifetime)
	}
	if c.Adler != AdlerLocal && c.Adler != AdlerCatalog {
		return fmt.Errorf("%w: adler must be %q or %q, got %q", domain.ErrConfigInvalid, AdlerLocal, AdlerCatalog, c.Adler)
	}
	if !validDebugLevels[strings.ToUpper(c.Debug)] {
		return fmt.Errorf("%w: unknown debug level %q", domain.ErrConfigInvalid, c.Debug)
	}

	info, err := os.Stat(c.Scan.RootDir)
	if err != nil {
		return fmt.Errorf("%w: rootdir %q: %v", domain.ErrConfigInvalid, c.Scan.RootDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: rootdir %q is not a directory", domain.ErrConfigInvalid, c.Scan.RootDir)
	}

	// Cert checks are skipped in dry-run mode since nothing is delivered
	if !c.DryRun {
		for _, f := range []string{c.Report.SSLCertFile, c.Report.SSLKeyFile} {
			if f == "" {
				return fmt.Errorf("%w: ssl_cert_file and ssl_key_file are required", domain.ErrConfigInvalid)
			}
			if _, err := os.Stat(f); err != nil {
				return fmt.Errorf("%w: %q: %v", domain.ErrConfigInvalid, f, err)
			}
		}
	}

	if c.Daemon.IntervalSeconds <= 0 {
		return fmt.Errorf("%w: daemon interval must be positive, got %d", domain.ErrConfigInvalid, c.Daemon.IntervalSeconds)
	}

	return nil
}

// EffectiveScanRoot joins rootdir with the optional sub-path restriction,
// trimming leading and trailing separators before joining
func (c *Config) EffectiveScanRoot() string {
	root := strings.TrimRight(c.Scan.RootDir, "/")
	sub := strings.Trim(c.Scan.OnlyFilesFromDir, "/")
	if sub == "" {
		return root
	}
	return filepath.Join(root, sub)
}

// Interval returns the daemon sleep interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Daemon.IntervalSeconds) * time.Second
}

// StateDir returns the configured state directory or its default
func (c *Config) StateDir() string {
	if c.Daemon.StateDir != "" {
		return c.Daemon.StateDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cachereport"
	}
	return filepath.Join(home, ".cachereport")
}

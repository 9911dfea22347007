package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgecache/cachereport/internal/domain"
)

// writeConfig writes a config file and points the global --config at it for
// the duration of the test
func writeConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })
}

func overrideCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addOverrideFlags(cmd)
	return cmd
}

func TestLoadConfigFlagSuppliesMandatoryKey(t *testing.T) {
	// rse is absent from the file and arrives via the override flag alone
	writeConfig(t, fmt.Sprintf(`
report:
  endpoint: report.example.org
  destination: /collector
scan:
  rootdir: %s
dryrun: true
`, t.TempDir()))

	cmd := overrideCommand()
	require.NoError(t, cmd.Flags().Set("rse", "EDGE_CACHE"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "EDGE_CACHE", cfg.RSE)
}

func TestLoadConfigFlagSuppliesRootDir(t *testing.T) {
	writeConfig(t, `
report:
  endpoint: report.example.org
  destination: /collector
rse: EDGE_CACHE
dryrun: true
`)

	root := t.TempDir()
	cmd := overrideCommand()
	require.NoError(t, cmd.Flags().Set("rootdir", root))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Scan.RootDir)
}

func TestLoadConfigMissingMandatoryKey(t *testing.T) {
	// With neither file key nor flag, validation still aborts the run
	writeConfig(t, fmt.Sprintf(`
report:
  endpoint: report.example.org
  destination: /collector
scan:
  rootdir: %s
dryrun: true
`, t.TempDir()))

	_, err := loadConfig(overrideCommand())
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestLoadConfigFlagOverridesFileValue(t *testing.T) {
	writeConfig(t, fmt.Sprintf(`
report:
  endpoint: report.example.org
  destination: /collector
scan:
  rootdir: %s
rse: FILE_RSE
fileperreport: 100
dryrun: true
`, t.TempDir()))

	cmd := overrideCommand()
	require.NoError(t, cmd.Flags().Set("rse", "FLAG_RSE"))
	require.NoError(t, cmd.Flags().Set("fileperreport", "25"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "FLAG_RSE", cfg.RSE)
	assert.Equal(t, 25, cfg.FilePerReport)
}

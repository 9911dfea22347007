package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgecache/cachereport/internal/config"
	"github.com/edgecache/cachereport/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scan pass history",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagRSE, "rse", "", "storage endpoint to show history for")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of passes to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	// History only reads the local state database, so the full run
	// configuration is not validated here.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rse") {
		cfg.RSE = flagRSE
	}
	if cfg.RSE == "" {
		return fmt.Errorf("no storage endpoint configured, use --rse")
	}

	stateMgr, err := state.NewManager(cfg.StateDir())
	if err != nil {
		return err
	}
	defer stateMgr.Close()

	records, err := stateMgr.GetHistory(cfg.RSE, historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no recorded passes for %s\n", cfg.RSE)
		return nil
	}

	fmt.Printf("%-20s  %-8s  %8s  %8s  %6s  %s\n", "START", "STATUS", "SCANNED", "REPORTED", "BAD", "ERROR")
	for _, r := range records {
		fmt.Printf("%-20s  %-8s  %8d  %8d  %6d  %s\n",
			r.StartTime.Format(time.DateTime),
			r.Status,
			r.Scanned,
			r.Reported,
			r.Bad,
			r.Error,
		)
	}
	return nil
}

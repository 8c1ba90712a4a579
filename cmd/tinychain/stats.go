package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MuhamedEssam/tinychain/pkg/config"
	"github.com/MuhamedEssam/tinychain/pkg/txn"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print transaction journal and configuration stats for a data directory",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	coordinator, err := txn.NewCoordinator(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening transaction journal at %s: %w", cfg.DataDir, err)
	}
	defer coordinator.Close()

	pending, err := coordinator.Recover()
	if err != nil {
		return fmt.Errorf("scanning journal: %w", err)
	}

	fmt.Printf("data_dir: %s\n", cfg.DataDir)
	fmt.Printf("cache_max_size: %s\n", cfg.CacheMaxSize)
	fmt.Printf("committed-but-unfinalized transactions: %d\n", len(pending))
	for _, rec := range pending {
		fmt.Printf("  %s\n", rec.TxnID)
	}

	return nil
}

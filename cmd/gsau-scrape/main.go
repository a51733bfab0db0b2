package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gsaugg/compare/internal/app"
	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		offline    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "gsau-scrape",
		Short:        "Scrape gel blaster stores and rebuild the comparison data",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(configPath)
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(cmd.Context(), offline)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $GSAU_CONFIG)")
	root.Flags().BoolVar(&offline, "offline", false, "replay cached snapshots instead of fetching")
	root.AddCommand(newRunsCmd(&configPath))

	return root
}

func newRunsCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent runs from the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*configPath)
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			runs, err := application.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no archived runs")
				return nil
			}

			for _, run := range runs {
				mode := "online"
				if run.Offline {
					mode = "offline"
				}
				fmt.Printf("%s  %-7s  stores=%d  items=%d  groups=%d  sku=%d  title=%d  took=%s\n",
					run.StartedAt, mode, run.StoreCount, run.ItemCount, run.GroupCount,
					run.SKUMatches, run.TitleMatches,
					(time.Duration(run.DurationMS) * time.Millisecond).Round(time.Millisecond))
				for _, store := range run.Stores {
					status := "ok"
					if store.Error != "" {
						status = "error: " + store.Error
					}
					fmt.Printf("  %-24s %-12s fetched=%-5d filtered=%-4d final=%-5d %s\n",
						store.Name, store.Platform, store.Fetched, store.Filtered, store.Final, status)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	return cmd
}

func loadConfig(path string) config.Config {
	if path != "" {
		return config.LoadPath(path)
	}
	return config.Load()
}

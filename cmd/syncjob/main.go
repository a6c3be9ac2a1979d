package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"commerce-sync-service/config"
	pgStorage "commerce-sync-service/internal/adapter/storage/postgres"
	"commerce-sync-service/internal/adapter/upstream"
	"commerce-sync-service/internal/core/ports"
	"commerce-sync-service/internal/service"
	"commerce-sync-service/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "syncjob",
		Short:   "Operator jobs against the upstream commerce API",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(inventoryCmd(&configPath))
	rootCmd.AddCommand(salesCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func inventoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Reconcile local inventory against the upstream catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			ctx := cmd.Context()

			pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			syncSvc := newSyncService(cfg, pgStorage.NewLocalInventoryRepo(pool), log)

			summary, err := syncSvc.SyncInventory(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
}

func salesCmd(configPath *string) *cobra.Command {
	var fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Aggregate purchases over a date range into a sales report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

			from, to, err := parseRange(fromStr, toStr)
			if err != nil {
				return err
			}

			// The sales report never touches local inventory
			syncSvc := newSyncService(cfg, nil, log)

			summary, err := syncSvc.SalesReport(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Range start, YYYY-MM-DD (default: yesterday)")
	cmd.Flags().StringVar(&toStr, "to", "", "Range end, YYYY-MM-DD exclusive (default: today)")
	return cmd
}

func newSyncService(cfg *config.Config, localRepo ports.LocalInventoryRepository, log zerolog.Logger) *service.SyncService {
	client := upstream.NewClient(cfg.Upstream, log)
	exec := service.NewRetryExecutor(service.RetryPolicy{
		MaxAttempts:       cfg.Upstream.Retry.MaxAttempts,
		BaseDelay:         cfg.Upstream.Retry.BaseDelay,
		Multiplier:        cfg.Upstream.Retry.Multiplier,
		MaxDelay:          cfg.Upstream.Retry.MaxDelay,
		RetryAfterDefault: cfg.Upstream.Retry.RetryAfterDefault,
	}, log)

	return service.NewSyncService(
		client,
		localRepo,
		exec,
		service.NewReconciler(log),
		service.NewAggregator(service.AggregatorConfig{}),
		cfg.Upstream.PageSize,
		cfg.Upstream.PageDelay,
		log,
	)
}

// parseRange turns --from/--to day strings into a UTC interval. The
// fixed range gives the paginated walk a point-in-time view.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	from := today.AddDate(0, 0, -1)
	to := today

	var err error
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}
	return from, to, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

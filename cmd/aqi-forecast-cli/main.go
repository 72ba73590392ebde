package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/aqi-forecast/internal/bootstrap"
	"github.com/i474232898/aqi-forecast/internal/config"
	"github.com/i474232898/aqi-forecast/internal/logger"
	"github.com/i474232898/aqi-forecast/internal/source"
)

var (
	// Global flags
	modelPath   string
	historyPath string
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aqi-forecast-cli",
		Short: "Offline PM2.5 forecasts from a fitted model artifact",
		Long: `Loads the model artifact and historical series the same way the server does
and prints forecasts or a summary of what would be served.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "", "Model artifact path or URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "Historical CSV path or URL (default from config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// forecastCmd prints a forecast for the next N days as JSON.
func forecastCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast daily PM2.5 for the days after the last observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, comps, err := load(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.DefaultHorizonDays
			}

			resp, err := comps.Service.Forecast(ctx, days)
			if err != nil {
				return fmt.Errorf("forecast: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 7, "Number of days to forecast")

	return cmd
}

// inspectCmd prints the model and series summary.
func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show model kind, order, trained length and last observed date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			_, comps, err := load(ctx)
			if err != nil {
				return err
			}
			summary, err := comps.Summary(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
}

func load(ctx context.Context) (*config.AppConfig, *bootstrap.Components, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if modelPath != "" {
		cfg.ModelArtifact = modelPath
	}
	if historyPath != "" {
		cfg.HistorySource = historyPath
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	fetcher := source.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout})
	comps, err := bootstrap.Load(ctx, cfg, fetcher, log)
	if err != nil {
		log.Debug("load failed", zap.Error(err))
		return nil, nil, err
	}
	return cfg, comps, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

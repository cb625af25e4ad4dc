package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrapplexz/hack-digital-ambulance/app"
	"github.com/mrapplexz/hack-digital-ambulance/config"
	"github.com/mrapplexz/hack-digital-ambulance/infra/logger"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Compute and cache the forecast for the configured window, then exit",
	RunE:  predict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func predict(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("predict-command").Errorf("service close: %v", err)
		}
	}()

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot %s: %d substations, %d hourly rows\n",
		snap.Key[:8], len(snap.Predictions.Locations), len(snap.Predictions.Timestamps))
	return nil
}

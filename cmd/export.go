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
	"github.com/mrapplexz/hack-digital-ambulance/pkg/export"
)

var (
	exportView   string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the daily or hourly view to stdout",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportView, "view", "daily", "view to export: daily or hourly")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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
			logger.New("export-command").Errorf("service close: %v", err)
		}
	}()

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	switch exportView + "/" + exportFormat {
	case "daily/csv":
		return export.WriteDailyCSV(os.Stdout, snap.Daily)
	case "daily/json":
		return export.WriteDailyJSON(os.Stdout, snap.Daily)
	case "hourly/csv":
		return export.WriteHourlyCSV(os.Stdout, snap.Hourly)
	case "hourly/json":
		return export.WriteHourlyJSON(os.Stdout, snap.Hourly)
	default:
		return fmt.Errorf("unsupported view/format %s/%s", exportView, exportFormat)
	}
}

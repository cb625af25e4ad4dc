package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrapplexz/hack-digital-ambulance/app"
	"github.com/mrapplexz/hack-digital-ambulance/config"
	"github.com/mrapplexz/hack-digital-ambulance/infra/logger"
)

var (
	explainSubstation string
	explainTime       string
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Print the additive attribution of a single prediction",
	RunE:  explain,
}

func init() {
	explainCmd.Flags().StringVar(&explainSubstation, "substation", "", "substation name")
	explainCmd.Flags().StringVar(&explainTime, "time", "", "prediction timestamp (RFC3339)")
	if err := explainCmd.MarkFlagRequired("substation"); err != nil {
		panic(err)
	}
	if err := explainCmd.MarkFlagRequired("time"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(explainCmd)
}

func explain(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ts, err := time.Parse(time.RFC3339, explainTime)
	if err != nil {
		return fmt.Errorf("parse --time: %w", err)
	}

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
			logger.New("explain-command").Errorf("service close: %v", err)
		}
	}()

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	ex, err := snap.Explain(explainSubstation, ts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ex)
}

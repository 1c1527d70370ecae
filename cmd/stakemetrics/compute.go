package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stakeMetrics/internal/aggregate"
	"stakeMetrics/internal/config"
	"stakeMetrics/internal/model"
	"stakeMetrics/internal/poller"
)

type computeOutput struct {
	Record     model.MetricsRecord `json:"record"`
	Display    map[string]string   `json:"display,omitempty"`
	UnstakedLP []string            `json:"unstaked_lp,omitempty"`
	Claimable  []string            `json:"claimable,omitempty"`
	Missing    []string            `json:"missing,omitempty"`
	Snapshot   *model.SnapshotSet  `json:"snapshot,omitempty"`
}

func runCompute(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCompute(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	runner := poller.NewRunner(eng.runnerConfig(cfg.Common), eng.chain, eng.reader, eng.params, poller.Options{Logger: logger})
	record, set, err := runner.Compute(ctx, cfg.Block)
	if err != nil {
		return err
	}

	out := computeOutput{Record: record, Missing: set.Missing()}
	if cfg.Display {
		out.Display = aggregate.Display(record.Metrics, cfg.Places)
		out.UnstakedLP = aggregate.UnstakedLPWarnings(record.Metrics, eng.params)
		out.Claimable = aggregate.ClaimableFarms(record.Metrics)
	}
	if cfg.Snapshot {
		out.Snapshot = &set
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "stakemetrics",
		Short:        "Staking page metrics poller",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh metrics on every new block",
		RunE:  runPoller,
	}

	addChainFlags(runCmd)
	runCmd.Flags().Duration("poll-interval", 3*time.Second, "head block polling interval")
	runCmd.Flags().String("out", "", "optional output JSONL path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	runCmd.Flags().String("state-file", "./data/state.json", "state file path (ignored when pg-dsn is set)")
	runCmd.Flags().String("state-name", "stake-poller", "state row name in Postgres")
	runCmd.Flags().String("redis-url", "", "optional Redis URL for the shared cache")
	runCmd.Flags().String("redis-password", "", "Redis password")
	runCmd.Flags().String("redis-prefix", "stakemetrics", "Redis key prefix")
	runCmd.Flags().Duration("redis-ttl", 0, "Redis entry TTL, 0 keeps entries")
	runCmd.Flags().Duration("claim-hold", 10*time.Minute, "how long a block claim in Redis stays valid")
	runCmd.Flags().String("http-addr", "", "serve the HTTP API on this address")

	root.AddCommand(runCmd)

	computeCmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute metrics once and print them",
		RunE:  runCompute,
	}

	addChainFlags(computeCmd)
	computeCmd.Flags().Uint64("block", 0, "block to read at, 0 means latest")
	computeCmd.Flags().Bool("display", false, "print display strings instead of raw values")
	computeCmd.Flags().Int32("places", 4, "decimal places for display output")
	computeCmd.Flags().Bool("snapshot", false, "also print the raw snapshot set")

	root.AddCommand(computeCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Recompute metrics over a historical block range (archive RPC)",
		RunE:  runBackfill,
	}

	addChainFlags(backfillCmd)
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	backfillCmd.Flags().Uint64("step", 1200, "blocks between computed records")
	backfillCmd.Flags().String("out", "./data/backfill.jsonl", "output JSONL path")
	backfillCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	backfillCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	backfillCmd.Flags().String("state-name", "stake-backfill", "state row name in Postgres")

	root.AddCommand(backfillCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest metrics over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("http-addr", ":8080", "listen address")
	serveCmd.Flags().String("redis-url", "", "Redis URL written by run")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().String("redis-prefix", "stakemetrics", "Redis key prefix")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN, used when redis-url is empty")
	serveCmd.Flags().Uint64("chain-id", 56, "chain id of the Postgres rows to serve")
	serveCmd.Flags().String("account", "", "account of the Postgres rows to serve")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "BSC RPC URL")
	cmd.Flags().String("account", "", "wallet address the metrics are computed for")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

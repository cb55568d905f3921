package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"simpleswap/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "simpleswap",
		Short:        "Constant-product exchange for asset pairs",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a JSONL operation log against the exchange",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("genesis", "", "genesis balances JSON")
	replayCmd.Flags().String("results", "./data/results.jsonl", "output results JSONL")
	replayCmd.Flags().String("events", "./data/events.jsonl", "output emitted logs JSONL")
	addStoreFlags(replayCmd)
	replayCmd.Flags().String("rpc", "", "RPC URL; when set the head block timestamp is the transaction time")
	replayCmd.Flags().String("exchange", config.DefaultExchange, "exchange custody address")
	replayCmd.Flags().Uint64("chain-id", 1, "chain id stamped on emitted logs (overridden by --rpc)")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for RPC calls")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Read pool state",
	}

	addStoreFlags(queryCmd)
	queryCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	queryCmd.AddCommand(
		&cobra.Command{
			Use:   "price BASE QUOTE",
			Short: "Quote one scale unit of BASE in QUOTE",
			Args:  cobra.ExactArgs(2),
			RunE:  runPrice,
		},
		&cobra.Command{
			Use:   "reserves X Y",
			Short: "Show the reserves of the (X, Y) pool in argument order",
			Args:  cobra.ExactArgs(2),
			RunE:  runReserves,
		},
		&cobra.Command{
			Use:   "amount-out AMOUNT_IN RESERVE_IN RESERVE_OUT",
			Short: "Price a swap against explicit reserves",
			Args:  cobra.ExactArgs(3),
			RunE:  runAmountOut,
		},
		&cobra.Command{
			Use:   "pools",
			Short: "List stored pools",
			Args:  cobra.NoArgs,
			RunE:  runPools,
		},
	)

	root.AddCommand(queryCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode emitted logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input emitted logs JSONL")
	decodeCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStoreFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("store", "", "pool store (memory, file, postgres)")
	flags.String("state-file", "", "pool snapshot path for --store=file")
	flags.String("pg-dsn", "", "Postgres DSN for --store=postgres")
	flags.Int("scale-decimals", 18, "decimals of the price quote unit")
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

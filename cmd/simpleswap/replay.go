package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"simpleswap/internal/amm"
	"simpleswap/internal/chain"
	"simpleswap/internal/config"
	"simpleswap/internal/ledger"
	"simpleswap/internal/replay"
	"simpleswap/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Results == "" {
		return fmt.Errorf("results path is required")
	}
	exchangeAddr, err := replay.ParseAddress("exchange", cfg.Exchange)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openPools(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	if err := backend.ensureFresh(ctx); err != nil {
		return err
	}

	assets := ledger.NewMemoryAssets()
	if cfg.Genesis != "" {
		genesis, err := replay.LoadGenesis(cfg.Genesis)
		if err != nil {
			return err
		}
		if err := replay.Seed(assets, genesis); err != nil {
			return err
		}
		logger.Info("genesis loaded", zap.Int("balances", len(genesis.Balances)))
	}

	chainID := cfg.ChainID
	var clock amm.Clock
	var manual *amm.ManualClock
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		id, err := chainClient.GetChainID(ctx)
		if err != nil {
			return fmt.Errorf("get chain id: %w", err)
		}
		if !id.IsUint64() {
			return fmt.Errorf("chain id does not fit in uint64: %s", id)
		}
		chainID = id.Uint64()
		clock = chain.NewClock(chainClient, cfg.MaxRetries, cfg.RetryBackoff, logger)
	} else {
		manual = amm.NewManualClock(0)
		clock = manual
	}

	var sequence uint64
	if backend.pg != nil {
		if sequence, err = backend.pg.NextSequence(ctx, chainID, exchangeAddr.Hex()); err != nil {
			return fmt.Errorf("next log sequence: %w", err)
		}
	}

	if cfg.Events != "" {
		// Each replay starts a fresh event file.
		w, err := storage.OpenJSONL(cfg.Events, false)
		if err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}

	exchange, err := amm.New(
		amm.Config{
			Address:       exchangeAddr,
			ChainID:       chainID,
			ScaleDecimals: cfg.ScaleDecimals,
			Sequence:      sequence,
		},
		amm.Deps{
			Pools:  backend.store,
			Assets: assets,
			Shares: ledger.NewMemoryShares(),
			Clock:  clock,
			Sink:   backend.logSinks(cfg.Events),
		},
		logger,
	)
	if err != nil {
		return err
	}

	results, err := storage.OpenJSONL(cfg.Results, false)
	if err != nil {
		return err
	}
	defer results.Close()

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("results", cfg.Results),
		zap.String("events", cfg.Events),
		zap.String("store", cfg.Store.Kind),
		zap.String("exchange", exchangeAddr.Hex()),
		zap.Uint64("chain_id", chainID),
		zap.Bool("chain_clock", manual == nil),
	)

	runner := replay.NewRunner(exchange, assets, manual, logger)
	if _, err := runner.Run(ctx, cfg.In, results); err != nil {
		return err
	}
	return results.Close()
}

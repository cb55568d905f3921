package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"simpleswap/internal/amm"
	"simpleswap/internal/config"
	"simpleswap/internal/ledger"
	"simpleswap/internal/replay"
)

type querySession struct {
	exchange *amm.Exchange
	backend  *poolBackend
	logger   *zap.Logger
}

func (s *querySession) Close() {
	s.backend.Close()
	_ = s.logger.Sync()
}

// openQuery opens the configured pool store behind a read-only exchange.
func openQuery(ctx context.Context, cmd *cobra.Command) (*querySession, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuery(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	backend, err := openPools(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	exchange, err := amm.New(
		amm.Config{
			Address:       common.HexToAddress(config.DefaultExchange),
			ScaleDecimals: cfg.ScaleDecimals,
		},
		amm.Deps{
			Pools:  backend.store,
			Assets: ledger.NewMemoryAssets(),
			Shares: ledger.NewMemoryShares(),
		},
		logger,
	)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &querySession{exchange: exchange, backend: backend, logger: logger}, nil
}

func writeJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func parseAssets(args []string) (common.Address, common.Address, error) {
	x, err := replay.ParseAddress("first", args[0])
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	y, err := replay.ParseAddress("second", args[1])
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return x, y, nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	base, quote, err := parseAssets(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	session, err := openQuery(ctx, cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	price, err := session.exchange.GetPrice(ctx, base, quote)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{
		"base":  strings.ToLower(base.Hex()),
		"quote": strings.ToLower(quote.Hex()),
		"price": price.Dec(),
	})
}

func runReserves(cmd *cobra.Command, args []string) error {
	x, y, err := parseAssets(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	session, err := openQuery(ctx, cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	rx, ry, err := session.exchange.Reserves(ctx, x, y)
	if err != nil {
		return err
	}
	shares, err := session.exchange.TotalShares(ctx, x, y)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{
		"asset_x":      strings.ToLower(x.Hex()),
		"asset_y":      strings.ToLower(y.Hex()),
		"reserve_x":    rx.Dec(),
		"reserve_y":    ry.Dec(),
		"total_shares": shares.Dec(),
	})
}

func runAmountOut(cmd *cobra.Command, args []string) error {
	amountIn, err := replay.ParseAmount("amount_in", args[0])
	if err != nil {
		return err
	}
	reserveIn, err := replay.ParseAmount("reserve_in", args[1])
	if err != nil {
		return err
	}
	reserveOut, err := replay.ParseAmount("reserve_out", args[2])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := openQuery(ctx, cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	out, err := session.exchange.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{"amount_out": out.Dec()})
}

func runPools(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	session, err := openQuery(ctx, cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	if session.backend.lister == nil {
		return writeJSON(cmd, []interface{}{})
	}
	pools, err := session.backend.lister.Pools(ctx)
	if err != nil {
		return err
	}
	return writeJSON(cmd, pools)
}

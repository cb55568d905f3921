package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"simpleswap/internal/ledger"
	"simpleswap/internal/model"
)

// LoadGenesis reads a genesis document from path.
func LoadGenesis(path string) (model.Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("read genesis: %w", err)
	}
	var g model.Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return model.Genesis{}, fmt.Errorf("parse genesis: %w", err)
	}
	return g, nil
}

// Seed credits every genesis balance to assets.
func Seed(assets *ledger.MemoryAssets, g model.Genesis) error {
	for i, bal := range g.Balances {
		asset, err := ParseAddress("asset", bal.Asset)
		if err != nil {
			return fmt.Errorf("genesis balance %d: %w", i, err)
		}
		holder, err := ParseAddress("holder", bal.Holder)
		if err != nil {
			return fmt.Errorf("genesis balance %d: %w", i, err)
		}
		amount, err := ParseAmount("amount", bal.Amount)
		if err != nil {
			return fmt.Errorf("genesis balance %d: %w", i, err)
		}
		if err := assets.Credit(asset, holder, amount); err != nil {
			return fmt.Errorf("genesis balance %d: %w", i, err)
		}
	}
	return nil
}

package model

// LiquidityAddedData is the decoded LiquidityAdded event payload. Assets and
// amounts are in the order the caller supplied them.
type LiquidityAddedData struct {
	AssetA    string `json:"asset_a"`
	AssetB    string `json:"asset_b"`
	AmountA   string `json:"amount_a"`
	AmountB   string `json:"amount_b"`
	Liquidity string `json:"liquidity"`
	To        string `json:"to"`
}

// LiquidityRemovedData is the decoded LiquidityRemoved event payload.
type LiquidityRemovedData struct {
	AssetA    string `json:"asset_a"`
	AssetB    string `json:"asset_b"`
	AmountA   string `json:"amount_a"`
	AmountB   string `json:"amount_b"`
	Liquidity string `json:"liquidity"`
	To        string `json:"to"`
}

// SwappedData is the decoded Swapped event payload.
type SwappedData struct {
	AssetIn   string `json:"asset_in"`
	AssetOut  string `json:"asset_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	To        string `json:"to"`
}

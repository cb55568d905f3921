package model

// PoolState is the persisted form of one pool record. Amounts are decimal
// strings.
type PoolState struct {
	PairID      string `json:"pair_id"`
	AssetA      string `json:"asset_a"`
	AssetB      string `json:"asset_b"`
	ReserveA    string `json:"reserve_a"`
	ReserveB    string `json:"reserve_b"`
	TotalShares string `json:"total_shares"`
}

package model

// Genesis seeds asset balances before a replay starts.
type Genesis struct {
	Balances []GenesisBalance `json:"balances"`
}

// GenesisBalance credits Amount of Asset to Holder.
type GenesisBalance struct {
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
}

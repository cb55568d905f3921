package model

// Operation kinds accepted in a replay log.
const (
	OpApprove         = "approve"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwap            = "swap"
)

// Operation is one line of a replay log. Amounts are decimal strings.
// Timestamp is the transaction time the call executes at; when zero the
// replay clock decides.
type Operation struct {
	Op        string `json:"op"`
	Caller    string `json:"caller"`
	Timestamp uint64 `json:"timestamp,omitempty"`
	Deadline  uint64 `json:"deadline,omitempty"`
	Recipient string `json:"recipient,omitempty"`

	// approve
	Asset  string `json:"asset,omitempty"`
	Amount string `json:"amount,omitempty"`

	// add_liquidity, remove_liquidity
	AssetX         string `json:"asset_x,omitempty"`
	AssetY         string `json:"asset_y,omitempty"`
	AmountXDesired string `json:"amount_x_desired,omitempty"`
	AmountYDesired string `json:"amount_y_desired,omitempty"`
	AmountXMin     string `json:"amount_x_min,omitempty"`
	AmountYMin     string `json:"amount_y_min,omitempty"`
	Shares         string `json:"shares,omitempty"`

	// swap
	AmountIn     string   `json:"amount_in,omitempty"`
	AmountOutMin string   `json:"amount_out_min,omitempty"`
	Path         []string `json:"path,omitempty"`
}

// OperationResult reports the outcome of one replayed operation. Code is the
// failure reason, empty on success.
type OperationResult struct {
	Line      int    `json:"line"`
	Op        string `json:"op"`
	OK        bool   `json:"ok"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
	AmountX   string `json:"amount_x,omitempty"`
	AmountY   string `json:"amount_y,omitempty"`
	Shares    string `json:"shares,omitempty"`
	AmountOut string `json:"amount_out,omitempty"`
}

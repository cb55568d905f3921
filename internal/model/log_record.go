package model

// LogRecord is an emitted exchange event in log form: topic0 is the event
// signature hash, indexed arguments follow as topics and the rest is
// ABI-encoded into Data.
type LogRecord struct {
	ChainID   uint64   `json:"chain_id"`
	Sequence  uint64   `json:"sequence"`
	Address   string   `json:"address"`
	Topics    []string `json:"topics"`
	Data      string   `json:"data"`
	Timestamp uint64   `json:"timestamp"`
	EmittedAt string   `json:"emitted_at"`
}

// Topic0 returns the first topic or "".
func (lr LogRecord) Topic0() string {
	if len(lr.Topics) == 0 {
		return ""
	}
	return lr.Topics[0]
}

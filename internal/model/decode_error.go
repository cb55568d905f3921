package model

// DecodeError records a decode failure for a log line.
type DecodeError struct {
	Line     int    `json:"line"`
	Sequence uint64 `json:"sequence"`
	Address  string `json:"address"`
	Topic0   string `json:"topic0"`
	Error    string `json:"error"`
}

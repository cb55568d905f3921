// Package pair canonicalizes an unordered asset pair into the key its pool is
// stored under.
package pair

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"simpleswap/internal/revert"
)

// Key is a canonical pair: A sorts strictly before B.
type Key struct {
	A common.Address `json:"assetA"`
	B common.Address `json:"assetB"`
}

// Compare orders asset identifiers by their byte representation.
func Compare(x, y common.Address) int {
	return bytes.Compare(x.Bytes(), y.Bytes())
}

// Resolve orders x and y into a Key. swapped reports whether the caller's
// order was (B, A), so X/Y amounts map onto B/A.
func Resolve(x, y common.Address) (Key, bool, error) {
	if x == y {
		return Key{}, false, revert.ErrIdenticalAssets
	}
	if x == (common.Address{}) || y == (common.Address{}) {
		return Key{}, false, revert.ErrZeroAsset
	}
	if Compare(x, y) < 0 {
		return Key{A: x, B: y}, false, nil
	}
	return Key{A: y, B: x}, true, nil
}

// ID is the storage identifier of the pair: keccak256(A ‖ B).
func (k Key) ID() common.Hash {
	return crypto.Keccak256Hash(k.A.Bytes(), k.B.Bytes())
}

func (k Key) String() string {
	return k.A.Hex() + "/" + k.B.Hex()
}

// Orient returns (a, b) in the caller's order: (a, b) when not swapped,
// (b, a) otherwise.
func Orient[T any](swapped bool, a, b T) (T, T) {
	if swapped {
		return b, a
	}
	return a, b
}

package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrBadOperation marks a replay line that could not be turned into a call.
var ErrBadOperation = errors.New("BAD_OPERATION")

// ParseAddress converts a hex string into common.Address.
func ParseAddress(field, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%w: invalid %s address %q", ErrBadOperation, field, input)
	}
	return common.HexToAddress(input), nil
}

// ParseAmount converts a base-10 string into an amount. An empty string is
// zero.
func ParseAmount(field, input string) (*uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(input)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s amount %q: %v", ErrBadOperation, field, input, err)
	}
	return v, nil
}

// ParsePath converts every hop of a swap path.
func ParsePath(inputs []string) ([]common.Address, error) {
	path := make([]common.Address, 0, len(inputs))
	for i, input := range inputs {
		addr, err := ParseAddress(fmt.Sprintf("path[%d]", i), input)
		if err != nil {
			return nil, err
		}
		path = append(path, addr)
	}
	return path, nil
}

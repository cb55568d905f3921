package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"simpleswap/internal/fixedpoint"
	"simpleswap/internal/pair"
)

type holding struct {
	asset  common.Address
	holder common.Address
}

type allowance struct {
	asset   common.Address
	owner   common.Address
	spender common.Address
}

// MemoryAssets is an in-memory AssetLedger.
type MemoryAssets struct {
	mu         sync.Mutex
	balances   map[holding]uint256.Int
	allowances map[allowance]uint256.Int
	hook       TransferHook
}

func NewMemoryAssets() *MemoryAssets {
	return &MemoryAssets{
		balances:   make(map[holding]uint256.Int),
		allowances: make(map[allowance]uint256.Int),
	}
}

// OnTransfer installs a hook invoked after every successful transfer.
func (m *MemoryAssets) OnTransfer(hook TransferHook) {
	m.mu.Lock()
	m.hook = hook
	m.mu.Unlock()
}

// Credit adds amount to holder's balance out of thin air.
func (m *MemoryAssets) Credit(asset, holder common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := holding{asset: asset, holder: holder}
	cur := m.balances[k]
	next, err := fixedpoint.Add(&cur, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", asset.Hex(), err)
	}
	m.balances[k] = *next
	return nil
}

// Approve sets the amount spender may move out of owner's balance.
func (m *MemoryAssets) Approve(asset, owner, spender common.Address, amount *uint256.Int) {
	m.mu.Lock()
	m.allowances[allowance{asset: asset, owner: owner, spender: spender}] = *amount
	m.mu.Unlock()
}

func (m *MemoryAssets) Allowance(asset, owner, spender common.Address) *uint256.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.allowances[allowance{asset: asset, owner: owner, spender: spender}]
	return new(uint256.Int).Set(&cur)
}

func (m *MemoryAssets) BalanceOf(ctx context.Context, asset, holder common.Address) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.balances[holding{asset: asset, holder: holder}]
	return new(uint256.Int).Set(&cur), nil
}

func (m *MemoryAssets) Transfer(ctx context.Context, asset, from, to common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	err := m.move(asset, from, to, amount)
	hook := m.hook
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(ctx, asset, from, to, amount)
	}
	return nil
}

func (m *MemoryAssets) TransferFrom(ctx context.Context, asset, spender, from, to common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	ak := allowance{asset: asset, owner: from, spender: spender}
	allowed := m.allowances[ak]
	if allowed.Lt(amount) {
		m.mu.Unlock()
		return fmt.Errorf("transfer %s from %s: %w", asset.Hex(), from.Hex(), ErrInsufficientAllowance)
	}
	if err := m.move(asset, from, to, amount); err != nil {
		m.mu.Unlock()
		return err
	}
	allowed.Sub(&allowed, amount)
	m.allowances[ak] = allowed
	hook := m.hook
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, asset, from, to, amount)
	}
	return nil
}

// move must be called with mu held.
func (m *MemoryAssets) move(asset, from, to common.Address, amount *uint256.Int) error {
	fk := holding{asset: asset, holder: from}
	tk := holding{asset: asset, holder: to}
	fromBal := m.balances[fk]
	if fromBal.Lt(amount) {
		return fmt.Errorf("transfer %s from %s: %w", asset.Hex(), from.Hex(), ErrInsufficientBalance)
	}
	if from == to {
		return nil
	}
	toBal := m.balances[tk]
	next, err := fixedpoint.Add(&toBal, amount)
	if err != nil {
		return fmt.Errorf("transfer %s to %s: %w", asset.Hex(), to.Hex(), err)
	}
	fromBal.Sub(&fromBal, amount)
	m.balances[fk] = fromBal
	m.balances[tk] = *next
	return nil
}

// MemoryShares is an in-memory ShareLedger.
type MemoryShares struct {
	mu       sync.RWMutex
	balances map[pair.Key]map[common.Address]uint256.Int
}

func NewMemoryShares() *MemoryShares {
	return &MemoryShares{balances: make(map[pair.Key]map[common.Address]uint256.Int)}
}

func (m *MemoryShares) Mint(ctx context.Context, key pair.Key, to common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	holders, ok := m.balances[key]
	if !ok {
		holders = make(map[common.Address]uint256.Int)
		m.balances[key] = holders
	}
	cur := holders[to]
	next, err := fixedpoint.Add(&cur, amount)
	if err != nil {
		return fmt.Errorf("mint %s: %w", key, err)
	}
	holders[to] = *next
	return nil
}

func (m *MemoryShares) Burn(ctx context.Context, key pair.Key, from common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.balances[key][from]
	if cur.Lt(amount) {
		return fmt.Errorf("burn %s from %s: %w", key, from.Hex(), ErrInsufficientBalance)
	}
	if amount.IsZero() {
		return nil
	}
	cur.Sub(&cur, amount)
	m.balances[key][from] = cur
	return nil
}

func (m *MemoryShares) BalanceOf(ctx context.Context, key pair.Key, holder common.Address) (*uint256.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur := m.balances[key][holder]
	return new(uint256.Int).Set(&cur), nil
}

// Supply returns the sum of all balances for key.
func (m *MemoryShares) Supply(key pair.Key) *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := new(uint256.Int)
	for _, bal := range m.balances[key] {
		total.Add(total, &bal)
	}
	return total
}

package defaultpool

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "defaultpool"

// Engine is the Default Pool: the module-owned account holding FURFI and
// FURUSD debt pending redistribution to remaining troves when a liquidation
// cannot be fully offset by the Stability Pool. It is only ever driven by
// the Trove engine, never directly by a depositor.
type Engine struct {
	mu sync.Mutex

	state      engineState
	pauses     nativecommon.PauseView
	collateral CollateralLedger

	poolAddress crypto.Address
	callers     map[string]bool
}

// NewEngine constructs a Default Pool engine bound to its own module
// address.
func NewEngine(poolAddr crypto.Address) *Engine {
	return &Engine{poolAddress: poolAddr, callers: make(map[string]bool)}
}

// SetState wires the engine to its persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetPauses wires the module pause gate.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetCollateral wires the FURFI ledger collaborator.
func (e *Engine) SetCollateral(c CollateralLedger) {
	if e == nil {
		return
	}
	e.collateral = c
}

// SetAuthorizedCallers lists the identities permitted to mutate pool state,
// normally the Trove engine alone.
func (e *Engine) SetAuthorizedCallers(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.callers = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.callers[string(a.Bytes())] = true
	}
}

// PoolAddress returns the configured module address.
func (e *Engine) PoolAddress() crypto.Address { return e.poolAddress }

func (e *Engine) ensureState() (*PoolState, error) {
	if e.state == nil {
		return nil, errNilState
	}
	pool, err := e.state.GetPoolState()
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = NewGenesisPoolState()
		if err := e.state.PutPoolState(pool); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

// GetFURFIBalance returns the internally-tracked FURFI pending
// redistribution.
func (e *Engine) GetFURFIBalance() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(pool.FURFIBalance), nil
}

// GetFURUSDDebt returns the aggregate debt pending redistribution.
func (e *Engine) GetFURUSDDebt() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(pool.FURUSDDebt), nil
}

// IncreaseFURFI records caller (the Trove engine) having moved liquidated
// collateral that could not be offset into the Default Pool's balance.
func (e *Engine) IncreaseFURFI(caller crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if !e.callers[string(caller.Bytes())] {
		return errUnauthorizedCaller
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	pool.FURFIBalance = new(big.Int).Add(pool.FURFIBalance, amount)
	return e.state.PutPoolState(pool)
}

// IncreaseFURUSDDebt records debt carried over from a partially-offset
// liquidation.
func (e *Engine) IncreaseFURUSDDebt(caller crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if !e.callers[string(caller.Bytes())] {
		return errUnauthorizedCaller
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	pool.FURUSDDebt = new(big.Int).Add(pool.FURUSDDebt, amount)
	return e.state.PutPoolState(pool)
}

// SendFURFIToActivePool moves redistributed collateral back to the Active
// Pool once it has been applied to surviving troves' reward snapshots,
// decreasing the internal counter before instructing the FURFI ledger to
// move the underlying balance.
func (e *Engine) SendFURFIToActivePool(caller, activePoolAddr crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if !e.callers[string(caller.Bytes())] {
		return errUnauthorizedCaller
	}
	if e.collateral == nil {
		return errNilCollateral
	}
	if amount == nil || amount.Sign() < 0 {
		return errInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	if pool.FURFIBalance.Cmp(amount) < 0 {
		return errInsufficientFURFI
	}
	pool.FURFIBalance = new(big.Int).Sub(pool.FURFIBalance, amount)
	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}
	return e.collateral.Transfer(e.poolAddress, activePoolAddr, amount)
}

// DecreaseFURUSDDebt records debt moved back onto surviving troves' ledgers
// once a redistribution has been applied.
func (e *Engine) DecreaseFURUSDDebt(caller crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if !e.callers[string(caller.Bytes())] {
		return errUnauthorizedCaller
	}
	if amount == nil || amount.Sign() < 0 {
		return errInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	if pool.FURUSDDebt.Cmp(amount) < 0 {
		return errInsufficientDebt
	}
	pool.FURUSDDebt = new(big.Int).Sub(pool.FURUSDDebt, amount)
	return e.state.PutPoolState(pool)
}

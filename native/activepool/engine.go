package activepool

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "activepool"

// Engine is the Active Pool: the module-owned account holding the FURFI
// collateral and tracking the FURUSD debt of every open trove. It is the
// source the Stability Pool pulls seized collateral from during Offset, and
// the sink the Trove engine deposits newly-locked collateral into.
type Engine struct {
	mu sync.Mutex

	state      engineState
	pauses     nativecommon.PauseView
	collateral CollateralLedger

	poolAddress crypto.Address
	callers     map[string]bool
}

// NewEngine constructs an Active Pool engine bound to its own module
// address (the account the FURFI ledger records its balance under).
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

// SetAuthorizedCallers lists the identities permitted to call IncreaseFURFI
// and IncreaseFURUSDDebt (typically the Trove engine). SendFURFI and
// DecreaseFURUSDDebt take no caller and are not checked against this list.
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

// GetFURFIBalance returns the internally-tracked FURFI held by the pool.
func (e *Engine) GetFURFIBalance() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(pool.FURFIBalance), nil
}

// GetFURUSDDebt returns the aggregate debt of all active troves.
func (e *Engine) GetFURUSDDebt() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(pool.FURUSDDebt), nil
}

// IncreaseFURFI records caller (the Trove engine) having already moved
// amount of FURFI into the pool's ledger balance.
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

// SendFURFI moves amount of FURFI out of the pool to to, decreasing the
// internal counter first and only then instructing the FURFI ledger to move
// the underlying balance, satisfying checks-effects-interactions ordering.
// Called by the Stability Pool during Offset to seize liquidated collateral.
func (e *Engine) SendFURFI(to crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
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
	return e.collateral.Transfer(e.poolAddress, to, amount)
}

// IncreaseFURUSDDebt records newly-drawn debt against a trove's opening or
// adjustment, called by the Trove engine.
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

// DecreaseFURUSDDebt records debt repayment or liquidation offset, satisfying
// the Stability Pool's ActivePoolLedger.DecreaseFURUSDDebt contract.
func (e *Engine) DecreaseFURUSDDebt(amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
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

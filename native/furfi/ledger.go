package furfi

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "furfi"

// Engine is the FURFI collateral ledger: a minimal balance table that the
// Active Pool, Default Pool, Collateral Surplus Pool and the Trove engine
// move balances through. FURFI enters circulation through Mint (a wrapped
// deposit of the underlying collateral asset) and leaves through BurnFrom
// (redemption), both gated to the addresses wired through SetMinters.
type Engine struct {
	mu sync.Mutex

	state  engineState
	pauses nativecommon.PauseView

	minters map[string]bool
}

// NewEngine constructs an unwired FURFI ledger engine.
func NewEngine() *Engine {
	return &Engine{minters: make(map[string]bool)}
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

// SetMinters authorizes the given addresses (the collateral deposit gateway)
// to call Mint and BurnFrom.
func (e *Engine) SetMinters(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.minters = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.minters[string(a.Bytes())] = true
	}
}

func (e *Engine) balance(addr crypto.Address) (*big.Int, error) {
	bal, err := e.state.GetBalance(addr)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return big.NewInt(0), nil
	}
	return bal, nil
}

func (e *Engine) transfer(from, to crypto.Address, amount *big.Int) error {
	fromBal, err := e.balance(from)
	if err != nil {
		return err
	}
	newFrom, err := checkedSub(fromBal, amount)
	if err != nil {
		return err
	}
	toBal, err := e.balance(to)
	if err != nil {
		return err
	}
	newTo, err := checkedAdd(toBal, amount)
	if err != nil {
		return err
	}
	if err := e.state.PutBalance(from, newFrom); err != nil {
		return err
	}
	return e.state.PutBalance(to, newTo)
}

// BalanceOf returns the FURFI balance held by addr.
func (e *Engine) BalanceOf(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.balance(addr)
}

// Mint credits to with newly wrapped collateral.
func (e *Engine) Mint(caller, to crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if !e.minters[string(caller.Bytes())] {
		return errUnauthorizedMinter
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	toBal, err := e.balance(to)
	if err != nil {
		return err
	}
	newTo, err := checkedAdd(toBal, amount)
	if err != nil {
		return err
	}
	supply, err := e.state.GetTotalSupply()
	if err != nil {
		return err
	}
	if supply == nil {
		supply = big.NewInt(0)
	}
	newSupply, err := checkedAdd(supply, amount)
	if err != nil {
		return err
	}
	if err := e.state.PutBalance(to, newTo); err != nil {
		return err
	}
	return e.state.PutTotalSupply(newSupply)
}

// BurnFrom destroys amount of FURFI held by from on redemption of the
// underlying collateral.
func (e *Engine) BurnFrom(caller, from crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if !e.minters[string(caller.Bytes())] {
		return errUnauthorizedMinter
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	fromBal, err := e.balance(from)
	if err != nil {
		return err
	}
	newFrom, err := checkedSub(fromBal, amount)
	if err != nil {
		return err
	}
	supply, err := e.state.GetTotalSupply()
	if err != nil {
		return err
	}
	if supply == nil {
		supply = big.NewInt(0)
	}
	newSupply, err := checkedSub(supply, amount)
	if err != nil {
		return err
	}
	if err := e.state.PutBalance(from, newFrom); err != nil {
		return err
	}
	return e.state.PutTotalSupply(newSupply)
}

// Transfer moves amount of FURFI from from to to, used by the Trove engine
// and the Active/Default/Collateral Surplus pools to move collateral between
// module-owned accounts and depositors.
func (e *Engine) Transfer(from, to crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	return e.transfer(from, to, amount)
}

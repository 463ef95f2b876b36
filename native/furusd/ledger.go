package furusd

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "furusd"

// Engine is the FURUSD stablecoin ledger: a minimal mintable/burnable balance
// table satisfying the StablecoinLedger collaborator surface consumed by the
// Stability Pool and the Trove engine's borrow/repay flow.
type Engine struct {
	mu sync.Mutex

	state  engineState
	pauses nativecommon.PauseView

	minters map[string]bool
	burners map[string]bool
}

// NewEngine constructs an unwired FURUSD ledger engine.
func NewEngine() *Engine {
	return &Engine{
		minters: make(map[string]bool),
		burners: make(map[string]bool),
	}
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

// SetMinters authorizes the given addresses (typically Borrower Operations)
// to call Mint.
func (e *Engine) SetMinters(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.minters = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.minters[string(a.Bytes())] = true
	}
}

// SetBurners authorizes the given addresses (typically Borrower Operations)
// to call BurnFrom. The Stability Pool burns through Burn, which takes no
// caller and does not consult this list.
func (e *Engine) SetBurners(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.burners = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.burners[string(a.Bytes())] = true
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

// BalanceOf returns the FURUSD balance held by addr.
func (e *Engine) BalanceOf(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.balance(addr)
}

// Mint issues new FURUSD to to, called by Borrower Operations when a trove
// draws debt.
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

// BurnFrom destroys amount of FURUSD held by from, called by Borrower
// Operations when a trove repays debt.
func (e *Engine) BurnFrom(caller, from crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if !e.burners[string(caller.Bytes())] {
		return errUnauthorizedBurner
	}
	return e.burnFromLocked(from, amount)
}

func (e *Engine) burnFromLocked(from crypto.Address, amount *big.Int) error {
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

// Transfer moves amount of FURUSD from from to to, used for ordinary
// depositor-to-depositor or depositor-to-pool movement outside the
// Stability Pool's dedicated entry points below.
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

// SendToPool debits from and credits poolAddr, satisfying the Stability
// Pool's StablecoinLedger.SendToPool contract.
func (e *Engine) SendToPool(from, poolAddr crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	return e.transfer(from, poolAddr, amount)
}

// ReturnFromPool debits poolAddr and credits to, satisfying the Stability
// Pool's StablecoinLedger.ReturnFromPool contract.
func (e *Engine) ReturnFromPool(poolAddr, to crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	return e.transfer(poolAddr, to, amount)
}

// Burn destroys amount of FURUSD held by poolAddr, satisfying the Stability
// Pool's StablecoinLedger.Burn contract.
func (e *Engine) Burn(poolAddr crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	return e.burnFromLocked(poolAddr, amount)
}

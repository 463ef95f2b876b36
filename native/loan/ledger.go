package loan

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "loan"

// LockoutDurationSeconds is how long after deployment a restricted sender's
// transfers are constrained to the allow-list, mirroring the one-year
// window the source's LQTYToken enforces on its team and bounty
// allocations.
const LockoutDurationSeconds = 365 * 24 * 60 * 60

// Engine is the LOAN incentive token ledger: a fixed-supply-capped balance
// table with a time-gated transfer restriction on a configured set of
// privileged senders, so that admin allocations cannot be dumped on the
// open market before vesting begins.
type Engine struct {
	mu sync.Mutex

	state    engineState
	pauses   nativecommon.PauseView
	registry LockRegistry
	clock    clock

	minters               map[string]bool
	restrictedSenders     map[string]bool
	alwaysAllowedRecipients map[string]bool
	deploymentUnixSeconds int64
	supplyCap             *big.Int
}

// NewEngine constructs an unwired LOAN ledger engine with a fixed supply
// cap and a deployment timestamp anchoring the lockout window.
func NewEngine(supplyCap *big.Int, deploymentUnixSeconds int64) *Engine {
	return &Engine{
		minters:                 make(map[string]bool),
		restrictedSenders:       make(map[string]bool),
		alwaysAllowedRecipients: make(map[string]bool),
		deploymentUnixSeconds:   deploymentUnixSeconds,
		supplyCap:               supplyCap,
		clock:                   SystemClock{},
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

// SetLockRegistry wires the Vesting collaborator consulted by the transfer
// restriction's allow-list.
func (e *Engine) SetLockRegistry(r LockRegistry) {
	if e == nil {
		return
	}
	e.registry = r
}

// SetClock overrides the wall clock, used by tests to drive the lockout
// window deterministically.
func (e *Engine) SetClock(c clock) {
	if e == nil || c == nil {
		return
	}
	e.clock = c
}

// SetMinters authorizes the given addresses (the one-time genesis
// allocator) to call Mint.
func (e *Engine) SetMinters(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.minters = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.minters[string(a.Bytes())] = true
	}
}

// SetRestrictedSenders configures the set of addresses (team, multisig,
// bounty allocations) whose outbound transfers are constrained to the
// allow-list until the lockout window elapses.
func (e *Engine) SetRestrictedSenders(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.restrictedSenders = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.restrictedSenders[string(a.Bytes())] = true
	}
}

// SetAlwaysAllowedRecipients configures destinations a restricted sender may
// transfer to even during the lockout window, e.g. the Community Issuance
// and Stability Pool addresses.
func (e *Engine) SetAlwaysAllowedRecipients(addrs ...crypto.Address) {
	if e == nil {
		return
	}
	e.alwaysAllowedRecipients = make(map[string]bool, len(addrs))
	for _, a := range addrs {
		e.alwaysAllowedRecipients[string(a.Bytes())] = true
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

// BalanceOf returns the LOAN balance held by addr.
func (e *Engine) BalanceOf(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.balance(addr)
}

// Mint issues amount of LOAN to to, gated to the authorized allocator and
// capped by the fixed supply.
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
	if e.supplyCap != nil && newSupply.Cmp(e.supplyCap) > 0 {
		return errSupplyCapExceeded
	}
	toBal, err := e.balance(to)
	if err != nil {
		return err
	}
	newTo, err := checkedAdd(toBal, amount)
	if err != nil {
		return err
	}
	if err := e.state.PutBalance(to, newTo); err != nil {
		return err
	}
	return e.state.PutTotalSupply(newSupply)
}

func (e *Engine) transferRestricted(from crypto.Address) bool {
	if !e.restrictedSenders[string(from.Bytes())] {
		return false
	}
	return e.clock.NowUnixSeconds() < e.deploymentUnixSeconds+LockoutDurationSeconds
}

func (e *Engine) recipientAllowedDuringLockout(to crypto.Address) (bool, error) {
	key := string(to.Bytes())
	if e.alwaysAllowedRecipients[key] || e.restrictedSenders[key] {
		return true, nil
	}
	if e.registry == nil {
		return false, nil
	}
	return e.registry.IsRegisteredLock(to)
}

// Transfer moves amount of LOAN from from to to, enforcing the time-gated
// admin transfer restriction when from is a configured restricted sender.
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
	if e.transferRestricted(from) {
		allowed, err := e.recipientAllowedDuringLockout(to)
		if err != nil {
			return err
		}
		if !allowed {
			return errTransferRestricted
		}
	}
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

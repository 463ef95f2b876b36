package collsurpluspool

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "collsurpluspool"

// Engine is the Collateral Surplus Pool: it holds the excess FURFI left over
// when a trove is closed by redemption or full liquidation at a price above
// the minimum collateral ratio, crediting the former owner a claimable
// balance they can pull at any later time rather than pushing it eagerly.
type Engine struct {
	mu sync.Mutex

	state      engineState
	pauses     nativecommon.PauseView
	collateral CollateralLedger

	poolAddress crypto.Address
	callers     map[string]bool
}

// NewEngine constructs a Collateral Surplus Pool engine bound to its own
// module address.
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

// SetAuthorizedCallers lists the identities permitted to account a surplus,
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

func (e *Engine) claimable(addr crypto.Address) (*big.Int, error) {
	amount, err := e.state.GetClaimable(addr)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return big.NewInt(0), nil
	}
	return amount, nil
}

// GetCollateral returns the claimable FURFI surplus credited to addr.
func (e *Engine) GetCollateral(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.claimable(addr)
}

// AccountSurplus credits addr with amount of claimable FURFI surplus,
// called by the Trove engine when closing a trove leaves collateral above
// what was owed.
func (e *Engine) AccountSurplus(caller, addr crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if !e.callers[string(caller.Bytes())] {
		return errUnauthorizedCaller
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	cur, err := e.claimable(addr)
	if err != nil {
		return err
	}
	newClaimable := new(big.Int).Add(cur, amount)
	if err := e.state.PutClaimable(addr, newClaimable); err != nil {
		return err
	}
	total, err := e.state.GetTotalFURFI()
	if err != nil {
		return err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	return e.state.PutTotalFURFI(new(big.Int).Add(total, amount))
}

// ClaimColl pays out addr's entire claimable surplus, zeroing its balance
// before instructing the FURFI ledger to move the underlying tokens.
func (e *Engine) ClaimColl(addr crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if e.collateral == nil {
		return errNilCollateral
	}
	cur, err := e.claimable(addr)
	if err != nil {
		return err
	}
	if cur.Sign() <= 0 {
		return errNoSurplus
	}
	if err := e.state.PutClaimable(addr, big.NewInt(0)); err != nil {
		return err
	}
	total, err := e.state.GetTotalFURFI()
	if err != nil {
		return err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	if err := e.state.PutTotalFURFI(new(big.Int).Sub(total, cur)); err != nil {
		return err
	}
	return e.collateral.Transfer(e.poolAddress, addr, cur)
}

package communityissuance

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "communityissuance"

const secondsPerMinute = 60

// issuanceFactor is the per-minute decay applied to the remaining unissued
// LOAN supply, an 18-decimal fixed-point constant chosen (as in the source
// scheme this is grounded on) so that roughly half of the supply cap is
// issued over the first year.
var issuanceFactor = big.NewInt(999998681227695000)

// Engine is the LOAN emission schedule: a deterministic, time-based
// exponential decay curve against a fixed supply cap, consulted by the
// Stability Pool once per mutating operation via IssueLOAN.
type Engine struct {
	mu sync.Mutex

	state  engineState
	pauses nativecommon.PauseView
	loan   LOANLedger
	clock  clock

	issuanceAddress crypto.Address
	supplyCap       *big.Int
}

// NewEngine constructs a Community Issuance engine bound to its own module
// address and a fixed LOAN supply cap, using the system clock.
func NewEngine(issuanceAddr crypto.Address, supplyCap *big.Int) *Engine {
	return &Engine{
		issuanceAddress: issuanceAddr,
		supplyCap:       supplyCap,
		clock:           SystemClock{},
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

// SetLOANLedger wires the LOAN collaborator issuance mints and pays through.
func (e *Engine) SetLOANLedger(l LOANLedger) {
	if e == nil {
		return
	}
	e.loan = l
}

// SetClock overrides the wall clock, used by tests to drive the decay curve
// deterministically.
func (e *Engine) SetClock(c clock) {
	if e == nil || c == nil {
		return
	}
	e.clock = c
}

func (e *Engine) ensureState() (*IssuanceState, error) {
	if e.state == nil {
		return nil, errNilState
	}
	state, err := e.state.GetIssuanceState()
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = NewGenesisIssuanceState(e.clock.NowUnixSeconds())
		if err := e.state.PutIssuanceState(state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// cumulativeIssuanceFraction returns the 18-decimal fraction of the supply
// cap that should have been issued after elapsedMinutes since deployment:
// ONE - issuanceFactor^elapsedMinutes, an asymptotic curve approaching ONE.
func cumulativeIssuanceFraction(elapsedMinutes uint64) *big.Int {
	decayed := decPow(issuanceFactor, elapsedMinutes)
	return new(big.Int).Sub(one, decayed)
}

// IssueLOAN pulls the next increment of LOAN due since the last call,
// satisfying the Stability Pool's CommunityIssuance.IssueLOAN contract.
// The Stability Pool calls it from provide, withdraw, collateral-gain-to-trove
// and offset, and only while the pool holds deposits; RegisterFrontEnd does
// not call it. Authorization for this
// collaborator surface rests on engine wiring rather than a per-call
// identity check, matching the rest of the §6 collaborator interfaces.
func (e *Engine) IssueLOAN() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	state, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	now := e.clock.NowUnixSeconds()
	elapsedSeconds := now - state.DeploymentUnixSeconds
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	elapsedMinutes := uint64(elapsedSeconds) / secondsPerMinute
	fraction := cumulativeIssuanceFraction(elapsedMinutes)
	totalDue := new(big.Int).Mul(e.supplyCap, fraction)
	totalDue.Div(totalDue, one)
	issued := new(big.Int).Sub(totalDue, state.TotalLOANIssued)
	if issued.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	state.TotalLOANIssued = totalDue
	if err := e.state.PutIssuanceState(state); err != nil {
		return nil, err
	}
	return issued, nil
}

// SendLOAN pays amount of LOAN to to, satisfying the Stability Pool's
// CommunityIssuance.SendLOAN contract.
func (e *Engine) SendLOAN(to crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.loan == nil {
		return errNilLOAN
	}
	if amount == nil || amount.Sign() < 0 {
		return errInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	return e.loan.Transfer(e.issuanceAddress, to, amount)
}

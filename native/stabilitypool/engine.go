package stabilitypool

import (
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

// Engine orchestrates the Stability Pool liquidation accounting state
// transitions. All exported entry points serialize through mu, satisfying
// the single-threaded, non-re-entrant resource model: no operation may be
// interrupted by a nested call into itself.
type Engine struct {
	mu sync.Mutex

	state engineState
	pauses nativecommon.PauseView

	poolAddress       crypto.Address
	troveManager      crypto.Address
	stablecoin        StablecoinLedger
	activePool        ActivePoolLedger
	issuance          CommunityIssuance
	borrowerOps       BorrowerOperations
	troveStatusOracle TroveStatusOracle
}

// NewEngine constructs a Stability Pool engine bound to the given pool
// address and trove manager identity. Collaborators are wired separately via
// the SetXxx methods before the first operation, mirroring the "new + wire"
// builder pattern used elsewhere for modules with no proxy-upgrade
// initializer to imitate.
func NewEngine(poolAddr, troveManagerAddr crypto.Address) *Engine {
	return &Engine{
		poolAddress:  poolAddr,
		troveManager: troveManagerAddr,
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

// SetStablecoin wires the FURUSD collaborator.
func (e *Engine) SetStablecoin(l StablecoinLedger) {
	if e == nil {
		return
	}
	e.stablecoin = l
}

// SetActivePool wires the Active Pool collaborator.
func (e *Engine) SetActivePool(l ActivePoolLedger) {
	if e == nil {
		return
	}
	e.activePool = l
}

// SetCommunityIssuance wires the LOAN issuance collaborator.
func (e *Engine) SetCommunityIssuance(c CommunityIssuance) {
	if e == nil {
		return
	}
	e.issuance = c
}

// SetBorrowerOperations wires the collateral-reroute collaborator.
func (e *Engine) SetBorrowerOperations(b BorrowerOperations) {
	if e == nil {
		return
	}
	e.borrowerOps = b
}

// SetTroveStatusOracle wires the under-collateralization check consulted by
// withdraw_from_stability_pool.
func (e *Engine) SetTroveStatusOracle(o TroveStatusOracle) {
	if e == nil {
		return
	}
	e.troveStatusOracle = o
}

// PoolAddress returns the configured pool address.
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

package troves

import (
	"math/big"
	"sync"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

const moduleName = "troves"

// Engine orchestrates trove lifecycle state transitions: open, adjust,
// close, and liquidate. It is grounded on the same engineState-over-big.Int
// shape as the money-market lending engine it is adapted from, generalized
// from an interest-accruing supply/borrow ledger into a collateral-ratio
// gated debt position, and is the sole caller of the Stability Pool's
// Offset during liquidation.
type Engine struct {
	mu sync.Mutex

	state  engineState
	pauses nativecommon.PauseView

	oracle        PriceOracle
	stablecoin    StablecoinLedger
	collateral    CollateralLedger
	activePool    ActivePoolLedger
	stabilityPool StabilityPool
	collSurplus   CollSurplusPool

	engineAddress        crypto.Address
	activePoolAddress    crypto.Address
	collSurplusAddress   crypto.Address
	stabilityPoolAddress crypto.Address
	minCollateralRatio   *big.Int
}

// NewEngine constructs a Trove engine bound to its own identity (used when
// authorizing Offset and Mint/BurnFrom calls against collaborators) and the
// Active Pool's address (the destination for newly-locked collateral).
func NewEngine(engineAddr, activePoolAddr crypto.Address) *Engine {
	return &Engine{
		engineAddress:      engineAddr,
		activePoolAddress:  activePoolAddr,
		minCollateralRatio: new(big.Int).Set(DefaultMCR),
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

// SetPriceOracle wires the FURFI/FURUSD price collaborator.
func (e *Engine) SetPriceOracle(o PriceOracle) {
	if e == nil {
		return
	}
	e.oracle = o
}

// SetStablecoin wires the FURUSD collaborator.
func (e *Engine) SetStablecoin(l StablecoinLedger) {
	if e == nil {
		return
	}
	e.stablecoin = l
}

// SetCollateral wires the FURFI collaborator.
func (e *Engine) SetCollateral(l CollateralLedger) {
	if e == nil {
		return
	}
	e.collateral = l
}

// SetActivePool wires the Active Pool collaborator.
func (e *Engine) SetActivePool(a ActivePoolLedger) {
	if e == nil {
		return
	}
	e.activePool = a
}

// SetStabilityPool wires the Stability Pool collaborator Liquidate calls
// Offset on, and the address its FURFI balance is held under (the source
// MoveFURFIGainToTrove pulls from).
func (e *Engine) SetStabilityPool(s StabilityPool, addr crypto.Address) {
	if e == nil {
		return
	}
	e.stabilityPool = s
	e.stabilityPoolAddress = addr
}

// SetCollSurplusPool wires the collateral surplus collaborator and the
// address its FURFI balance is held under.
func (e *Engine) SetCollSurplusPool(c CollSurplusPool, addr crypto.Address) {
	if e == nil {
		return
	}
	e.collSurplus = c
	e.collSurplusAddress = addr
}

// SetMinCollateralRatio overrides the default 110% minimum collateral
// ratio.
func (e *Engine) SetMinCollateralRatio(mcr *big.Int) {
	if e == nil || mcr == nil {
		return
	}
	e.minCollateralRatio = new(big.Int).Set(mcr)
}

func (e *Engine) trove(owner crypto.Address) (*Trove, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.GetTrove(owner)
}

func (e *Engine) systemTotals() (*SystemTotals, error) {
	totals, err := e.state.GetSystemTotals()
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = NewGenesisSystemTotals()
	}
	return totals, nil
}

func (e *Engine) price() (*big.Int, error) {
	if e.oracle == nil {
		return nil, errNilPriceOracle
	}
	return e.oracle.GetPrice()
}

// GetCollateralRatio returns owner's current collateral ratio at ONE
// precision.
func (e *Engine) GetCollateralRatio(owner crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	trove, err := e.trove(owner)
	if err != nil {
		return nil, err
	}
	if trove == nil || trove.Status != StatusActive {
		return nil, errTroveNotFound
	}
	price, err := e.price()
	if err != nil {
		return nil, err
	}
	return collateralRatio(trove.Collateral, price, trove.Debt), nil
}

// HasActiveTrove satisfies the Stability Pool's BorrowerOperations.HasActiveTrove
// contract, consulted before rerouting a collateral gain into a trove.
func (e *Engine) HasActiveTrove(owner crypto.Address) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	trove, err := e.trove(owner)
	if err != nil {
		return false, err
	}
	return trove != nil && trove.Status == StatusActive, nil
}

// HasUnderCollateralizedTrove satisfies the Stability Pool's
// TroveStatusOracle contract consulted by withdraw_from_stability_pool.
// It always reports false: the engine keeps no sorted trove list and does
// not scan open troves, so it never blocks a withdrawal.
func (e *Engine) HasUnderCollateralizedTrove() (bool, error) {
	return false, nil
}

// MoveFURFIGainToTrove satisfies the Stability Pool's
// BorrowerOperations.MoveFURFIGainToTrove contract: it folds a depositor's
// paid-out collateral gain directly into their existing trove instead of
// the Stability Pool returning it to their wallet. upperHint/lowerHint are
// accepted for interface compatibility with a future sorted-trove-list
// insertion point and are otherwise unused, since trove selection is out of
// scope.
func (e *Engine) MoveFURFIGainToTrove(owner crypto.Address, amount *big.Int, upperHint, lowerHint crypto.Address) error {
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
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	trove, err := e.trove(owner)
	if err != nil {
		return err
	}
	if trove == nil || trove.Status != StatusActive {
		return errTroveNotFound
	}
	if err := e.collateral.Transfer(e.stabilityPoolAddress, e.activePoolAddress, amount); err != nil {
		return err
	}
	if err := e.activePool.IncreaseFURFI(e.engineAddress, amount); err != nil {
		return err
	}
	totals, err := e.systemTotals()
	if err != nil {
		return err
	}
	totals.TotalCollateral, err = checkedAdd(totals.TotalCollateral, amount)
	if err != nil {
		return err
	}
	if err := e.state.PutSystemTotals(totals); err != nil {
		return err
	}
	trove.Collateral = new(big.Int).Add(trove.Collateral, amount)
	return e.state.PutTrove(owner, trove)
}

// OpenTrove locks collateralAmount of FURFI from owner into the Active
// Pool and mints debtAmount of FURUSD to owner, rejecting the operation if
// the resulting collateral ratio would fall below the minimum.
func (e *Engine) OpenTrove(owner crypto.Address, collateralAmount, debtAmount *big.Int) error {
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
	if e.stablecoin == nil {
		return errNilStablecoin
	}
	if e.activePool == nil {
		return errNilActivePool
	}
	if collateralAmount == nil || collateralAmount.Sign() <= 0 {
		return errInvalidAmount
	}
	if debtAmount == nil || debtAmount.Sign() <= 0 {
		return errInvalidAmount
	}
	existing, err := e.trove(owner)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == StatusActive {
		return errTroveExists
	}
	price, err := e.price()
	if err != nil {
		return err
	}
	icr := collateralRatio(collateralAmount, price, debtAmount)
	if icr.Cmp(e.minCollateralRatio) < 0 {
		return errBelowMinCollateralRatio
	}

	totals, err := e.systemTotals()
	if err != nil {
		return err
	}
	totals.TotalCollateral, err = checkedAdd(totals.TotalCollateral, collateralAmount)
	if err != nil {
		return err
	}
	totals.TotalDebt, err = checkedAdd(totals.TotalDebt, debtAmount)
	if err != nil {
		return err
	}
	totals.TroveCount++
	if err := e.state.PutSystemTotals(totals); err != nil {
		return err
	}

	trove := &Trove{
		Owner:      owner,
		Collateral: new(big.Int).Set(collateralAmount),
		Debt:       new(big.Int).Set(debtAmount),
		Status:     StatusActive,
	}
	if err := e.state.PutTrove(owner, trove); err != nil {
		return err
	}

	if err := e.collateral.Transfer(owner, e.activePoolAddress, collateralAmount); err != nil {
		return err
	}
	if err := e.activePool.IncreaseFURFI(e.engineAddress, collateralAmount); err != nil {
		return err
	}
	if err := e.activePool.IncreaseFURUSDDebt(e.engineAddress, debtAmount); err != nil {
		return err
	}
	return e.stablecoin.Mint(e.engineAddress, owner, debtAmount)
}

// AdjustTrove applies signed changes to owner's collateral and debt in a
// single operation, rejecting the result if it would breach the minimum
// collateral ratio. A nil delta leaves that side unchanged.
func (e *Engine) AdjustTrove(owner crypto.Address, collateralDelta, debtDelta *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if collateralDelta == nil {
		collateralDelta = big.NewInt(0)
	}
	if debtDelta == nil {
		debtDelta = big.NewInt(0)
	}
	if collateralDelta.Sign() == 0 && debtDelta.Sign() == 0 {
		return errZeroAdjustment
	}
	trove, err := e.trove(owner)
	if err != nil {
		return err
	}
	if trove == nil || trove.Status != StatusActive {
		return errTroveNotFound
	}

	newCollateral := new(big.Int).Add(trove.Collateral, collateralDelta)
	if newCollateral.Sign() < 0 {
		return errDecreaseExceedsTrove
	}
	newDebt := new(big.Int).Add(trove.Debt, debtDelta)
	if newDebt.Sign() < 0 {
		return errDecreaseExceedsTrove
	}

	price, err := e.price()
	if err != nil {
		return err
	}
	icr := collateralRatio(newCollateral, price, newDebt)
	if icr.Cmp(e.minCollateralRatio) < 0 {
		return errBelowMinCollateralRatio
	}

	totals, err := e.systemTotals()
	if err != nil {
		return err
	}

	if collateralDelta.Sign() > 0 {
		if e.collateral == nil {
			return errNilCollateral
		}
		if err := e.collateral.Transfer(owner, e.activePoolAddress, collateralDelta); err != nil {
			return err
		}
		if err := e.activePool.IncreaseFURFI(e.engineAddress, collateralDelta); err != nil {
			return err
		}
		totals.TotalCollateral, err = checkedAdd(totals.TotalCollateral, collateralDelta)
		if err != nil {
			return err
		}
	} else if collateralDelta.Sign() < 0 {
		withdraw := new(big.Int).Neg(collateralDelta)
		if err := e.activePool.SendFURFI(owner, withdraw); err != nil {
			return err
		}
		totals.TotalCollateral, err = checkedSub(totals.TotalCollateral, withdraw)
		if err != nil {
			return err
		}
	}

	if debtDelta.Sign() > 0 {
		if e.stablecoin == nil {
			return errNilStablecoin
		}
		if err := e.activePool.IncreaseFURUSDDebt(e.engineAddress, debtDelta); err != nil {
			return err
		}
		if err := e.stablecoin.Mint(e.engineAddress, owner, debtDelta); err != nil {
			return err
		}
		totals.TotalDebt, err = checkedAdd(totals.TotalDebt, debtDelta)
		if err != nil {
			return err
		}
	} else if debtDelta.Sign() < 0 {
		repay := new(big.Int).Neg(debtDelta)
		if err := e.stablecoin.BurnFrom(e.engineAddress, owner, repay); err != nil {
			return err
		}
		if err := e.activePool.DecreaseFURUSDDebt(repay); err != nil {
			return err
		}
		totals.TotalDebt, err = checkedSub(totals.TotalDebt, repay)
		if err != nil {
			return err
		}
	}

	if err := e.state.PutSystemTotals(totals); err != nil {
		return err
	}
	trove.Collateral = newCollateral
	trove.Debt = newDebt
	return e.state.PutTrove(owner, trove)
}

// CloseTrove repays a trove's entire outstanding debt and returns its full
// collateral to owner, removing it from the active set.
func (e *Engine) CloseTrove(owner crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	trove, err := e.trove(owner)
	if err != nil {
		return err
	}
	if trove == nil || trove.Status != StatusActive {
		return errTroveNotFound
	}

	if trove.Debt.Sign() > 0 {
		if err := e.stablecoin.BurnFrom(e.engineAddress, owner, trove.Debt); err != nil {
			return err
		}
		if err := e.activePool.DecreaseFURUSDDebt(trove.Debt); err != nil {
			return err
		}
	}

	totals, err := e.systemTotals()
	if err != nil {
		return err
	}
	totals.TotalCollateral, err = checkedSub(totals.TotalCollateral, trove.Collateral)
	if err != nil {
		return err
	}
	totals.TotalDebt, err = checkedSub(totals.TotalDebt, trove.Debt)
	if err != nil {
		return err
	}
	totals.TroveCount--
	if err := e.state.PutSystemTotals(totals); err != nil {
		return err
	}

	closedCollateral := trove.Collateral
	trove.Collateral = big.NewInt(0)
	trove.Debt = big.NewInt(0)
	trove.Status = StatusClosedByOwner
	if err := e.state.PutTrove(owner, trove); err != nil {
		return err
	}

	if closedCollateral.Sign() > 0 {
		return e.activePool.SendFURFI(owner, closedCollateral)
	}
	return nil
}

// Liquidate seizes owner's entire trove once its collateral ratio falls
// below the minimum, offsetting as much debt as possible against the
// Stability Pool and crediting any collateral surplus above what the debt
// was worth back to owner via the Collateral Surplus Pool.
func (e *Engine) Liquidate(liquidator, owner crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if e.stabilityPool == nil {
		return errNilStabilityPool
	}
	trove, err := e.trove(owner)
	if err != nil {
		return err
	}
	if trove == nil || trove.Status != StatusActive {
		return errTroveNotFound
	}
	price, err := e.price()
	if err != nil {
		return err
	}
	icr := collateralRatio(trove.Collateral, price, trove.Debt)
	if icr.Cmp(e.minCollateralRatio) >= 0 {
		return errNotLiquidatable
	}

	debt := trove.Debt
	collateral := trove.Collateral

	totals, err := e.systemTotals()
	if err != nil {
		return err
	}
	totals.TotalCollateral, err = checkedSub(totals.TotalCollateral, collateral)
	if err != nil {
		return err
	}
	totals.TotalDebt, err = checkedSub(totals.TotalDebt, debt)
	if err != nil {
		return err
	}
	totals.TroveCount--
	if err := e.state.PutSystemTotals(totals); err != nil {
		return err
	}

	trove.Collateral = big.NewInt(0)
	trove.Debt = big.NewInt(0)
	trove.Status = StatusClosedByLiquidation
	if err := e.state.PutTrove(owner, trove); err != nil {
		return err
	}

	// Any collateral whose FURUSD value exceeds the debt it is backing is
	// surplus the original owner is still entitled to; offset only the
	// portion of collateral the debt is worth at the minimum ratio.
	collateralOwedToDebt := new(big.Int).Mul(debt, e.minCollateralRatio)
	collateralOwedToDebt.Div(collateralOwedToDebt, price)
	collToOffset := collateral
	var surplus *big.Int
	if collateralOwedToDebt.Cmp(collateral) < 0 {
		collToOffset = collateralOwedToDebt
		surplus = new(big.Int).Sub(collateral, collateralOwedToDebt)
	}

	if err := e.stabilityPool.Offset(e.engineAddress, debt, collToOffset); err != nil {
		return err
	}
	if surplus != nil && surplus.Sign() > 0 && e.collSurplus != nil {
		if err := e.activePool.SendFURFI(e.collSurplusAddress, surplus); err != nil {
			return err
		}
		if err := e.collSurplus.AccountSurplus(e.engineAddress, owner, surplus); err != nil {
			return err
		}
	}
	return nil
}

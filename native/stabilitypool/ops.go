package stabilitypool

import (
	"math/big"

	"github.com/holiman/uint256"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
)

// triggerLOANIssuance pulls the next LOAN increment from the community
// issuance collaborator and folds it into G at the current (epoch, scale),
// per §4.3. It is a no-op when the pool is empty: the issuance is simply not
// claimed and remains in the issuance contract's balance.
func (e *Engine) triggerLOANIssuance(pool *PoolState) error {
	if e.issuance == nil {
		return nil
	}
	if pool.TotalFURUSDDeposits.Sign() == 0 {
		// Do not even ask the issuance collaborator for its next
		// increment: with no deposits to fold it into, it must remain
		// unclaimed in the issuance contract rather than being pulled
		// and discarded.
		return nil
	}
	issued, err := e.issuance.IssueLOAN()
	if err != nil {
		return err
	}
	if issued == nil || issued.Sign() == 0 {
		return nil
	}
	perUnit, newError, err := feedbackCorrectedPerUnit(issued, pool.LastLOANError, pool.TotalFURUSDDeposits)
	if err != nil {
		return err
	}
	pool.LastLOANError = newError
	contribution, err := checkedMul(perUnit, pool.P)
	if err != nil {
		return err
	}
	bucket := scaleBucket(pool.CurrentEpoch, pool.CurrentScale)
	current, err := e.state.GetScaleToG(bucket)
	if err != nil {
		return err
	}
	if current == nil {
		current = big.NewInt(0)
	}
	updated, err := checkedAdd(current, contribution)
	if err != nil {
		return err
	}
	return e.state.PutScaleToG(bucket, updated)
}

// frontEndKickback looks up the kickback rate for a tag, defaulting to ONE
// (depositor keeps everything) when the deposit is untagged or the front end
// record is missing.
func (e *Engine) frontEndKickback(tag crypto.Address, tagged bool) (*big.Int, error) {
	if !tagged {
		return ONE, nil
	}
	fe, err := e.state.GetFrontEnd(tag)
	if err != nil {
		return nil, err
	}
	if fe == nil {
		return ONE, nil
	}
	return fe.KickbackRate, nil
}

// payDepositorLOANGain pays a depositor its kickback_rate share of its own
// raw LOAN gain, per §4.4.
func (e *Engine) payDepositorLOANGain(depositor crypto.Address, rawGain, kickback *big.Int, tagged bool) error {
	if e.issuance == nil || rawGain == nil || rawGain.Sign() == 0 {
		return nil
	}
	share, _, err := splitLOANGain(rawGain, kickback, tagged)
	if err != nil {
		return err
	}
	if share.Sign() <= 0 {
		return nil
	}
	return e.issuance.SendLOAN(depositor, share)
}

// payFrontEndLOANGain pays a front end the (ONE - kickback_rate) complement
// against its own raw LOAN gain. Per §4.4 the front end's raw gain is
// computed from the front end's own stake and snapshot, not derived by
// splitting the touching depositor's raw gain: with more than one depositor
// tagged to the same front end those two numbers differ.
func (e *Engine) payFrontEndLOANGain(tag crypto.Address, rawGain, kickback *big.Int) error {
	if e.issuance == nil || rawGain == nil || rawGain.Sign() == 0 {
		return nil
	}
	complement, err := checkedSub(ONE, kickback)
	if err != nil {
		return err
	}
	share, err := mulDivOne(rawGain, complement)
	if err != nil {
		return err
	}
	if share.Sign() <= 0 {
		return nil
	}
	return e.issuance.SendLOAN(tag, share)
}

// snapshotDeposit writes a fresh DepositSnapshot for addr at the pool's
// current accumulator state, or clears it if the deposit's new value is
// zero, per §4.5.
func (e *Engine) snapshotDeposit(addr crypto.Address, newValue *big.Int, pool *PoolState) error {
	if newValue.Sign() == 0 {
		return e.state.PutDepositSnapshot(addr, zeroSnapshot())
	}
	sBucket, err := getScaleToS(e.state, pool.CurrentEpoch, pool.CurrentScale)
	if err != nil {
		return err
	}
	gBucket, err := getScaleToG(e.state, pool.CurrentEpoch, pool.CurrentScale)
	if err != nil {
		return err
	}
	return e.state.PutDepositSnapshot(addr, &DepositSnapshot{
		P:     new(big.Int).Set(pool.P),
		S:     sBucket,
		G:     gBucket,
		Scale: new(uint256.Int).Set(pool.CurrentScale),
		Epoch: new(uint256.Int).Set(pool.CurrentEpoch),
	})
}

// snapshotFrontEnd writes a fresh FrontEndSnapshot, or clears it if the new
// stake is zero.
func (e *Engine) snapshotFrontEnd(addr crypto.Address, newStake *big.Int, pool *PoolState) error {
	if newStake.Sign() == 0 {
		return e.state.PutFrontEndSnapshot(addr, zeroFrontEndSnapshot())
	}
	gBucket, err := getScaleToG(e.state, pool.CurrentEpoch, pool.CurrentScale)
	if err != nil {
		return err
	}
	return e.state.PutFrontEndSnapshot(addr, &FrontEndSnapshot{
		P:     new(big.Int).Set(pool.P),
		G:     gBucket,
		Scale: new(uint256.Int).Set(pool.CurrentScale),
		Epoch: new(uint256.Int).Set(pool.CurrentEpoch),
	})
}

// ProvideToStabilityPool implements §4.2 provide_to_stability_pool.
func (e *Engine) ProvideToStabilityPool(caller crypto.Address, amount *big.Int, frontEndTag crypto.Address, taggedThisCall bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errZeroAmount
	}
	if taggedThisCall {
		tagFE, err := e.state.GetFrontEnd(frontEndTag)
		if err != nil {
			return err
		}
		if tagFE == nil || !tagFE.Registered {
			return errFrontEndUnregister
		}
	}
	callerFE, err := e.state.GetFrontEnd(caller)
	if err != nil {
		return err
	}
	if callerFE != nil && callerFE.Registered {
		return errCallerIsFrontEnd
	}

	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	if err := e.triggerLOANIssuance(pool); err != nil {
		return err
	}

	deposit, err := e.state.GetDeposit(caller)
	if err != nil {
		return err
	}
	if deposit == nil {
		deposit = &Deposit{InitialValue: big.NewInt(0)}
	}
	snap, err := e.state.GetDepositSnapshot(caller)
	if err != nil {
		return err
	}
	compounded, furfiGain, rawLOANGain, err := e.depositorRawGains(e.state, deposit, snap, pool)
	if err != nil {
		return err
	}

	effectiveTag := deposit.FrontEndTag
	effectiveTagged := deposit.Tagged
	hadNoDeposit := deposit.InitialValue == nil || deposit.InitialValue.Sign() == 0
	if hadNoDeposit {
		effectiveTag = frontEndTag
		effectiveTagged = taggedThisCall
	}

	kickback, err := e.frontEndKickback(effectiveTag, effectiveTagged)
	if err != nil {
		return err
	}
	if err := e.payDepositorLOANGain(caller, rawLOANGain, kickback, effectiveTagged); err != nil {
		return err
	}

	// Update the front end's stake and snapshots before the FURUSD
	// transfer and the depositor's own deposit update, per §5's ordering.
	if effectiveTagged {
		frontEndCompounded, frontEndRawGain, err := e.loadFrontEndRawGains(effectiveTag, pool)
		if err != nil {
			return err
		}
		if err := e.payFrontEndLOANGain(effectiveTag, frontEndRawGain, kickback); err != nil {
			return err
		}
		newFrontEndStake, err := checkedAdd(frontEndCompounded, amount)
		if err != nil {
			return err
		}
		if err := e.setFrontEndStake(effectiveTag, newFrontEndStake, pool); err != nil {
			return err
		}
	}

	if err := e.stablecoin.SendToPool(caller, e.poolAddress, amount); err != nil {
		return err
	}
	newDepositValue, err := checkedAdd(compounded, amount)
	if err != nil {
		return err
	}
	pool.TotalFURUSDDeposits, err = checkedAdd(pool.TotalFURUSDDeposits, amount)
	if err != nil {
		return err
	}

	deposit.InitialValue = newDepositValue
	deposit.FrontEndTag = effectiveTag
	deposit.Tagged = effectiveTagged
	if err := e.state.PutDeposit(caller, deposit); err != nil {
		return err
	}
	if err := e.snapshotDeposit(caller, newDepositValue, pool); err != nil {
		return err
	}

	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}

	if furfiGain.Sign() > 0 {
		// Collateral gain transfer happens last, per the ordering in §5.
		if err := e.payCollateralGain(caller, furfiGain, pool); err != nil {
			return err
		}
	}
	return nil
}

// loadFrontEndRawGains fetches a front end's own stake and snapshot and
// returns its compounded stake and raw LOAN gain, per §4.4.
func (e *Engine) loadFrontEndRawGains(tag crypto.Address, pool *PoolState) (compoundedStake, rawLOANGain *big.Int, err error) {
	stake, err := e.state.GetFrontEndStake(tag)
	if err != nil {
		return nil, nil, err
	}
	snap, err := e.state.GetFrontEndSnapshot(tag)
	if err != nil {
		return nil, nil, err
	}
	return e.frontEndRawLOANGain(e.state, stake, snap, pool)
}

// setFrontEndStake writes a front end's new aggregate stake and refreshes
// its snapshot. Callers derive newStake additively/subtractively from the
// front end's own compoundedStake (loadFrontEndRawGains) plus the touching
// depositor's delta, per §3 invariant 4 (a front end's stake is the sum of
// its tagged depositors' compounded deposits) — never by overwriting with a
// single depositor's total, which breaks multi-depositor front ends.
func (e *Engine) setFrontEndStake(tag crypto.Address, newStake *big.Int, pool *PoolState) error {
	stake, err := e.state.GetFrontEndStake(tag)
	if err != nil {
		return err
	}
	if stake == nil {
		stake = &FrontEndStake{Stake: big.NewInt(0)}
	}
	stake.Stake = newStake
	if err := e.state.PutFrontEndStake(tag, stake); err != nil {
		return err
	}
	return e.snapshotFrontEnd(tag, newStake, pool)
}

func (e *Engine) payCollateralGain(to crypto.Address, amount *big.Int, pool *PoolState) error {
	newBalance, err := checkedSub(pool.FURFIBalance, amount)
	if err != nil {
		return err
	}
	pool.FURFIBalance = newBalance
	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}
	if e.activePool == nil {
		return nil
	}
	return e.activePool.SendFURFI(to, amount)
}

// WithdrawFromStabilityPool implements §4.2 withdraw_from_stability_pool.
func (e *Engine) WithdrawFromStabilityPool(caller crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return errArithmeticUnderflow
	}

	deposit, err := e.state.GetDeposit(caller)
	if err != nil {
		return err
	}
	if deposit == nil || deposit.InitialValue == nil || deposit.InitialValue.Sign() == 0 {
		return errNoDeposit
	}

	if amount.Sign() > 0 {
		if e.troveStatusOracle != nil {
			exists, err := e.troveStatusOracle.HasUnderCollateralizedTrove()
			if err != nil {
				return err
			}
			if exists {
				return errUnderCollateralized
			}
		}
	}

	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	if err := e.triggerLOANIssuance(pool); err != nil {
		return err
	}

	snap, err := e.state.GetDepositSnapshot(caller)
	if err != nil {
		return err
	}
	compounded, furfiGain, rawLOANGain, err := e.depositorRawGains(e.state, deposit, snap, pool)
	if err != nil {
		return err
	}

	tag := deposit.FrontEndTag
	tagged := deposit.Tagged
	kickback, err := e.frontEndKickback(tag, tagged)
	if err != nil {
		return err
	}
	if err := e.payDepositorLOANGain(caller, rawLOANGain, kickback, tagged); err != nil {
		return err
	}

	withdrawAmount := amount
	if withdrawAmount.Cmp(compounded) > 0 {
		withdrawAmount = compounded
	}

	// Update the front end's stake and snapshots before the FURUSD
	// transfer and the depositor's own deposit update, per §5's ordering.
	if tagged {
		frontEndCompounded, frontEndRawGain, err := e.loadFrontEndRawGains(tag, pool)
		if err != nil {
			return err
		}
		if err := e.payFrontEndLOANGain(tag, frontEndRawGain, kickback); err != nil {
			return err
		}
		newFrontEndStake, err := checkedSub(frontEndCompounded, withdrawAmount)
		if err != nil {
			return err
		}
		if err := e.setFrontEndStake(tag, newFrontEndStake, pool); err != nil {
			return err
		}
	}

	if withdrawAmount.Sign() > 0 {
		if err := e.stablecoin.ReturnFromPool(e.poolAddress, caller, withdrawAmount); err != nil {
			return err
		}
		pool.TotalFURUSDDeposits, err = checkedSub(pool.TotalFURUSDDeposits, withdrawAmount)
		if err != nil {
			return err
		}
	}
	newDepositValue, err := checkedSub(compounded, withdrawAmount)
	if err != nil {
		return err
	}

	if newDepositValue.Sign() == 0 {
		deposit.InitialValue = big.NewInt(0)
		deposit.Tagged = false
		deposit.FrontEndTag = crypto.Address{}
	} else {
		deposit.InitialValue = newDepositValue
	}
	if err := e.state.PutDeposit(caller, deposit); err != nil {
		return err
	}
	if err := e.snapshotDeposit(caller, newDepositValue, pool); err != nil {
		return err
	}

	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}

	if furfiGain.Sign() > 0 {
		if err := e.payCollateralGain(caller, furfiGain, pool); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawCollateralGainToTrove implements §4.2
// withdraw_collateral_gain_to_trove.
func (e *Engine) WithdrawCollateralGainToTrove(caller, upperHint, lowerHint crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.borrowerOps == nil {
		return errNilState
	}

	deposit, err := e.state.GetDeposit(caller)
	if err != nil {
		return err
	}
	if deposit == nil || deposit.InitialValue == nil || deposit.InitialValue.Sign() == 0 {
		return errNoDeposit
	}
	hasTrove, err := e.borrowerOps.HasActiveTrove(caller)
	if err != nil {
		return err
	}
	if !hasTrove {
		return errNoTrove
	}

	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	if err := e.triggerLOANIssuance(pool); err != nil {
		return err
	}

	snap, err := e.state.GetDepositSnapshot(caller)
	if err != nil {
		return err
	}
	compounded, furfiGain, rawLOANGain, err := e.depositorRawGains(e.state, deposit, snap, pool)
	if err != nil {
		return err
	}
	if furfiGain.Sign() <= 0 {
		return errNoCollateralGain
	}

	tagged := deposit.Tagged
	kickback, err := e.frontEndKickback(deposit.FrontEndTag, tagged)
	if err != nil {
		return err
	}
	if err := e.payDepositorLOANGain(caller, rawLOANGain, kickback, tagged); err != nil {
		return err
	}
	// Moving the collateral gain to a trove does not change the FURUSD
	// deposit's principal, so the front end's aggregate stake is
	// unchanged; only its snapshot needs refreshing after its own LOAN
	// gain is paid out, to avoid double-paying that gain on a later call.
	if tagged {
		frontEndCompounded, frontEndRawGain, err := e.loadFrontEndRawGains(deposit.FrontEndTag, pool)
		if err != nil {
			return err
		}
		if err := e.payFrontEndLOANGain(deposit.FrontEndTag, frontEndRawGain, kickback); err != nil {
			return err
		}
		if err := e.setFrontEndStake(deposit.FrontEndTag, frontEndCompounded, pool); err != nil {
			return err
		}
	}

	deposit.InitialValue = compounded
	if err := e.state.PutDeposit(caller, deposit); err != nil {
		return err
	}
	if err := e.snapshotDeposit(caller, compounded, pool); err != nil {
		return err
	}
	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}

	newBalance, err := checkedSub(pool.FURFIBalance, furfiGain)
	if err != nil {
		return err
	}
	pool.FURFIBalance = newBalance
	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}
	return e.borrowerOps.MoveFURFIGainToTrove(caller, furfiGain, upperHint, lowerHint)
}

// RegisterFrontEnd implements §4.2 register_front_end.
func (e *Engine) RegisterFrontEnd(caller crypto.Address, kickbackRate *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if kickbackRate == nil || kickbackRate.Sign() < 0 || kickbackRate.Cmp(ONE) > 0 {
		return errKickbackOutOfRange
	}
	existing, err := e.state.GetFrontEnd(caller)
	if err != nil {
		return err
	}
	if existing != nil && existing.Registered {
		return errFrontEndExists
	}
	deposit, err := e.state.GetDeposit(caller)
	if err != nil {
		return err
	}
	if deposit != nil && deposit.InitialValue != nil && deposit.InitialValue.Sign() > 0 {
		return errFrontEndHasDeposit
	}
	return e.state.PutFrontEnd(caller, &FrontEnd{
		KickbackRate: new(big.Int).Set(kickbackRate),
		Registered:   true,
	})
}

// Offset implements §4.2 offset, invoked only by the configured Trove
// Manager identity.
func (e *Engine) Offset(caller crypto.Address, debtToOffset, collToAdd *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if string(caller.Bytes()) != string(e.troveManager.Bytes()) {
		return errNotTroveManager
	}
	if e.stablecoin == nil || e.activePool == nil {
		return errNilState
	}

	pool, err := e.ensureState()
	if err != nil {
		return err
	}
	if pool.TotalFURUSDDeposits.Sign() == 0 || debtToOffset == nil || debtToOffset.Sign() == 0 {
		return nil
	}
	if debtToOffset.Cmp(pool.TotalFURUSDDeposits) > 0 {
		return errDebtExceedsPool
	}

	if err := e.triggerLOANIssuance(pool); err != nil {
		return err
	}

	if collToAdd == nil {
		collToAdd = big.NewInt(0)
	}
	furfiPerUnit, newFURFIError, err := feedbackCorrectedPerUnit(collToAdd, pool.LastFURFIErrorOffset, pool.TotalFURUSDDeposits)
	if err != nil {
		return err
	}
	pool.LastFURFIErrorOffset = newFURFIError

	var lossPerUnit *big.Int
	exactDepletion := debtToOffset.Cmp(pool.TotalFURUSDDeposits) == 0
	if exactDepletion {
		lossPerUnit = new(big.Int).Set(ONE)
		pool.LastFURUSDLossErrorOffset = big.NewInt(0)
	} else {
		var newLossError *big.Int
		lossPerUnit, newLossError, err = lossPerUnitFavoringPool(debtToOffset, pool.LastFURUSDLossErrorOffset, pool.TotalFURUSDDeposits)
		if err != nil {
			return err
		}
		if lossPerUnit.Cmp(ONE) > 0 {
			return errArithmeticOverflow
		}
		pool.LastFURUSDLossErrorOffset = newLossError
	}

	bucket := scaleBucket(pool.CurrentEpoch, pool.CurrentScale)
	currentS, err := e.state.GetScaleToS(bucket)
	if err != nil {
		return err
	}
	if currentS == nil {
		currentS = big.NewInt(0)
	}
	contribution, err := checkedMul(furfiPerUnit, pool.P)
	if err != nil {
		return err
	}
	updatedS, err := checkedAdd(currentS, contribution)
	if err != nil {
		return err
	}
	if err := e.state.PutScaleToS(bucket, updatedS); err != nil {
		return err
	}

	if err := e.updateRunningProduct(pool, lossPerUnit); err != nil {
		return err
	}

	pool.TotalFURUSDDeposits, err = checkedSub(pool.TotalFURUSDDeposits, debtToOffset)
	if err != nil {
		return err
	}
	pool.FURFIBalance, err = checkedAdd(pool.FURFIBalance, collToAdd)
	if err != nil {
		return err
	}

	if err := e.state.PutPoolState(pool); err != nil {
		return err
	}

	if err := e.activePool.DecreaseFURUSDDebt(debtToOffset); err != nil {
		return err
	}
	if err := e.activePool.SendFURFI(e.poolAddress, collToAdd); err != nil {
		return err
	}
	if debtToOffset.Sign() > 0 {
		if err := e.stablecoin.Burn(e.poolAddress, debtToOffset); err != nil {
			return err
		}
	}
	return nil
}

// updateRunningProduct applies §4.1's scale/epoch update rule. Per §4.1, an
// epoch advances whenever the new product factor (ONE - FURUSD_loss_per_unit)
// is zero — not only on an exact debt/deposit match: FURUSD_loss_per_unit can
// round up to exactly ONE on a partial offset too (lossPerUnitFavoringPool
// rounds in the pool's favor), and that must start a fresh epoch the same
// way a full depletion does, rather than driving P itself to zero.
func (e *Engine) updateRunningProduct(pool *PoolState, lossPerUnit *big.Int) error {
	factor, err := checkedSub(ONE, lossPerUnit)
	if err != nil {
		return err
	}
	if factor.Sign() == 0 {
		pool.P = new(big.Int).Set(ONE)
		pool.CurrentEpoch = new(uint256.Int).AddUint64(pool.CurrentEpoch, 1)
		pool.CurrentScale = uint256.NewInt(0)
		return nil
	}
	newP, err := mulDivOne(pool.P, factor)
	if err != nil {
		return err
	}
	if newP.Cmp(ScaleFactor) < 0 {
		scaled, err := checkedMul(newP, ScaleFactor)
		if err != nil {
			return err
		}
		newP = scaled
		pool.CurrentScale = new(uint256.Int).AddUint64(pool.CurrentScale, 1)
	}
	if newP.Sign() <= 0 {
		return errInvariantPZero
	}
	pool.P = newP
	return nil
}

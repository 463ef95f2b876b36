package stabilitypool

import (
	"math/big"

	"github.com/holiman/uint256"

	"nhbchain/crypto"
)

func scaleBucket(epoch, scale *uint256.Int) ScaleAndEpoch {
	return ScaleAndEpoch{Epoch: *epoch, Scale: *scale}
}

func getScaleToS(state engineState, epoch, scale *uint256.Int) (*big.Int, error) {
	v, err := state.GetScaleToS(scaleBucket(epoch, scale))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return big.NewInt(0), nil
	}
	return v, nil
}

func getScaleToG(state engineState, epoch, scale *uint256.Int) (*big.Int, error) {
	v, err := state.GetScaleToG(scaleBucket(epoch, scale))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return big.NewInt(0), nil
	}
	return v, nil
}

// compoundedFromP applies the P-ratio compounding rule shared by deposits
// and front-end stakes: d0*P/P0 with no epoch/scale adjustment, or the same
// ratio divided once more by ScaleFactor when exactly one scale boundary has
// been crossed since the snapshot, or zero once two or more have.
func compoundedFromP(initial, currentP, snapshotP *big.Int, scaleDiff *uint256.Int) (*big.Int, error) {
	if initial.Sign() == 0 || snapshotP.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if scaleDiff.Cmp(uint256.NewInt(2)) >= 0 {
		return big.NewInt(0), nil
	}
	product, err := checkedMul(initial, currentP)
	if err != nil {
		return nil, err
	}
	result, err := checkedDiv(product, snapshotP)
	if err != nil {
		return nil, err
	}
	if scaleDiff.Cmp(uint256.NewInt(1)) == 0 {
		result, err = checkedDiv(result, ScaleFactor)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// sumFromSnapshot reads the running sum (S or G) attributable to a snapshot,
// combining the bucket at (epoch0, scale0) with the bucket at
// (epoch0, scale0+1) scaled down by ScaleFactor. Both buckets are keyed on
// the snapshot's own epoch, never the pool's current epoch: this is what
// lets a depositor collect a gain credited into their own epoch's bucket
// even after the pool has since moved on to a new epoch. The scale0+1
// bucket reads zero until a scale boundary is actually crossed, so adding
// it unconditionally is safe.
func sumFromSnapshot(getBucket func(epoch, scale *uint256.Int) (*big.Int, error), snapshotSum *big.Int, epochSnap, scaleSnap *uint256.Int) (*big.Int, error) {
	current, err := getBucket(epochSnap, scaleSnap)
	if err != nil {
		return nil, err
	}
	firstPortion, err := checkedSub(current, snapshotSum)
	if err != nil {
		// A stale or inconsistent bucket must not abort a pure view;
		// treat it as fully consumed.
		firstPortion = big.NewInt(0)
	}
	nextScale := new(uint256.Int).AddUint64(scaleSnap, 1)
	nextBucket, err := getBucket(epochSnap, nextScale)
	if err != nil {
		return nil, err
	}
	secondPortion, err := checkedDiv(nextBucket, ScaleFactor)
	if err != nil {
		return nil, err
	}
	return checkedAdd(firstPortion, secondPortion)
}

// gainFromSum converts a combined S or G portion into a per-depositor gain:
// stake * portion / snapshotP / ONE. The extra /ONE undoes the P-scaling
// baked into the S/G accumulators by the offset/issuance update (they
// accumulate per_unit*P, and per_unit already carries one factor of ONE).
func gainFromSum(stake, portion, snapshotP *big.Int) (*big.Int, error) {
	if stake.Sign() == 0 || snapshotP.Sign() == 0 {
		return big.NewInt(0), nil
	}
	product, err := checkedMul(stake, portion)
	if err != nil {
		return nil, err
	}
	divByP, err := checkedDiv(product, snapshotP)
	if err != nil {
		return nil, err
	}
	return checkedDiv(divByP, ONE)
}

// scaleDiffAndStale reports whether a snapshot's stake has been fully
// consumed (its epoch predates the pool's current one) and, if not, how many
// scale boundaries have been crossed since the snapshot was taken. This
// gates *compounded stake* only: a pool-emptying offset advances the epoch
// and hands the depositor's stake to the reserve, but any collateral/LOAN
// gain the depositor earned in that same offset was already credited into
// their own epoch's S/G buckets and remains theirs to collect (§8 S3).
func scaleDiffAndStale(pool *PoolState, snapEpoch, snapScale *uint256.Int) (diff *uint256.Int, stale bool) {
	if !snapEpoch.Eq(pool.CurrentEpoch) {
		return nil, true
	}
	d := new(uint256.Int).Sub(pool.CurrentScale, snapScale)
	return d, false
}

// depositorRawGains computes a depositor's compounded deposit, raw
// collateral gain, and raw LOAN gain against the current pool state. "Raw"
// LOAN gain has not yet been split by kickback rate. Only the compounded
// deposit is zeroed once the snapshot's epoch is behind the pool's current
// one; the gain channels are read from the snapshot's own (epoch, scale)
// buckets regardless of how far the pool has since advanced, mirroring how
// Liquity's _getETHGainFromSnapshots is not gated on currentEpoch the way
// _getCompoundedStakeFromSnapshots is.
func (e *Engine) depositorRawGains(state engineState, deposit *Deposit, snap *DepositSnapshot, pool *PoolState) (compounded, furfiGain, rawLOANGain *big.Int, err error) {
	if deposit == nil || deposit.InitialValue == nil || deposit.InitialValue.Sign() == 0 || snap == nil {
		return big.NewInt(0), big.NewInt(0), big.NewInt(0), nil
	}
	scaleDiff, stale := scaleDiffAndStale(pool, snap.Epoch, snap.Scale)
	if stale {
		compounded = big.NewInt(0)
	} else {
		compounded, err = compoundedFromP(deposit.InitialValue, pool.P, snap.P, scaleDiff)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	sPortion, err := sumFromSnapshot(func(ep, sc *uint256.Int) (*big.Int, error) { return getScaleToS(state, ep, sc) }, snap.S, snap.Epoch, snap.Scale)
	if err != nil {
		return nil, nil, nil, err
	}
	furfiGain, err = gainFromSum(deposit.InitialValue, sPortion, snap.P)
	if err != nil {
		return nil, nil, nil, err
	}
	gPortion, err := sumFromSnapshot(func(ep, sc *uint256.Int) (*big.Int, error) { return getScaleToG(state, ep, sc) }, snap.G, snap.Epoch, snap.Scale)
	if err != nil {
		return nil, nil, nil, err
	}
	rawLOANGain, err = gainFromSum(deposit.InitialValue, gPortion, snap.P)
	if err != nil {
		return nil, nil, nil, err
	}
	return compounded, furfiGain, rawLOANGain, nil
}

// frontEndRawLOANGain mirrors depositorRawGains' LOAN channel for a
// front end's own stake and snapshot; see depositorRawGains for why only
// the compounded stake is gated on epoch/scale staleness.
func (e *Engine) frontEndRawLOANGain(state engineState, stake *FrontEndStake, snap *FrontEndSnapshot, pool *PoolState) (compoundedStake, rawLOANGain *big.Int, err error) {
	if stake == nil || stake.Stake == nil || stake.Stake.Sign() == 0 || snap == nil {
		return big.NewInt(0), big.NewInt(0), nil
	}
	scaleDiff, stale := scaleDiffAndStale(pool, snap.Epoch, snap.Scale)
	if stale {
		compoundedStake = big.NewInt(0)
	} else {
		compoundedStake, err = compoundedFromP(stake.Stake, pool.P, snap.P, scaleDiff)
		if err != nil {
			return nil, nil, err
		}
	}
	gPortion, err := sumFromSnapshot(func(ep, sc *uint256.Int) (*big.Int, error) { return getScaleToG(state, ep, sc) }, snap.G, snap.Epoch, snap.Scale)
	if err != nil {
		return nil, nil, err
	}
	rawLOANGain, err = gainFromSum(stake.Stake, gPortion, snap.P)
	if err != nil {
		return nil, nil, err
	}
	return compoundedStake, rawLOANGain, nil
}

// splitLOANGain implements §4.4: the depositor keeps kickback_rate/ONE of
// the raw gain, the tagged front end gets the complement. An untagged
// deposit behaves as kickback_rate=ONE.
func splitLOANGain(rawGain, kickbackRate *big.Int, tagged bool) (depositorShare, frontEndShare *big.Int, err error) {
	if !tagged {
		return new(big.Int).Set(rawGain), big.NewInt(0), nil
	}
	depositorShare, err = mulDivOne(rawGain, kickbackRate)
	if err != nil {
		return nil, nil, err
	}
	frontEndShare, err = checkedSub(rawGain, depositorShare)
	if err != nil {
		return nil, nil, err
	}
	return depositorShare, frontEndShare, nil
}

// GetCompoundedDeposit is the view exposed at §6.
func (e *Engine) GetCompoundedDeposit(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	deposit, err := e.state.GetDeposit(addr)
	if err != nil {
		return nil, err
	}
	snap, err := e.state.GetDepositSnapshot(addr)
	if err != nil {
		return nil, err
	}
	compounded, _, _, err := e.depositorRawGains(e.state, deposit, snap, pool)
	return compounded, err
}

// GetDepositorCollateralGain is the view exposed at §6.
func (e *Engine) GetDepositorCollateralGain(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	deposit, err := e.state.GetDeposit(addr)
	if err != nil {
		return nil, err
	}
	snap, err := e.state.GetDepositSnapshot(addr)
	if err != nil {
		return nil, err
	}
	_, furfiGain, _, err := e.depositorRawGains(e.state, deposit, snap, pool)
	return furfiGain, err
}

// GetDepositorLOANGain is the view exposed at §6; it returns the
// depositor's own share, net of the front-end kickback split.
func (e *Engine) GetDepositorLOANGain(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	deposit, err := e.state.GetDeposit(addr)
	if err != nil {
		return nil, err
	}
	snap, err := e.state.GetDepositSnapshot(addr)
	if err != nil {
		return nil, err
	}
	_, _, rawGain, err := e.depositorRawGains(e.state, deposit, snap, pool)
	if err != nil {
		return nil, err
	}
	kickback := ONE
	tagged := deposit != nil && deposit.Tagged
	if tagged {
		fe, err := e.state.GetFrontEnd(deposit.FrontEndTag)
		if err != nil {
			return nil, err
		}
		if fe != nil {
			kickback = fe.KickbackRate
		}
	}
	depositorShare, _, err := splitLOANGain(rawGain, kickback, tagged)
	return depositorShare, err
}

// GetFrontEndLOANGain is the view exposed at §6.
func (e *Engine) GetFrontEndLOANGain(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	fe, err := e.state.GetFrontEnd(addr)
	if err != nil {
		return nil, err
	}
	stake, err := e.state.GetFrontEndStake(addr)
	if err != nil {
		return nil, err
	}
	snap, err := e.state.GetFrontEndSnapshot(addr)
	if err != nil {
		return nil, err
	}
	_, rawGain, err := e.frontEndRawLOANGain(e.state, stake, snap, pool)
	if err != nil {
		return nil, err
	}
	kickback := ONE
	if fe != nil {
		kickback = fe.KickbackRate
	}
	complement, err := checkedSub(ONE, kickback)
	if err != nil {
		return nil, err
	}
	return mulDivOne(rawGain, complement)
}

// GetCompoundedFrontEndStake is the view exposed at §6.
func (e *Engine) GetCompoundedFrontEndStake(addr crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	stake, err := e.state.GetFrontEndStake(addr)
	if err != nil {
		return nil, err
	}
	snap, err := e.state.GetFrontEndSnapshot(addr)
	if err != nil {
		return nil, err
	}
	compounded, _, err := e.frontEndRawLOANGain(e.state, stake, snap, pool)
	return compounded, err
}

// GetFURFIBalance is the view exposed at §6.
func (e *Engine) GetFURFIBalance() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return pool.FURFIBalance, nil
}

// GetTotalFURUSDDeposits is the view exposed at §6.
func (e *Engine) GetTotalFURUSDDeposits() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return pool.TotalFURUSDDeposits, nil
}

package stabilitypool

import (
	"math/big"

	"nhbchain/crypto"
)

// StablecoinLedger is the Pool's view of the FURUSD collaborator (§6).
type StablecoinLedger interface {
	SendToPool(from, poolAddr crypto.Address, amount *big.Int) error
	ReturnFromPool(poolAddr, to crypto.Address, amount *big.Int) error
	Burn(poolAddr crypto.Address, amount *big.Int) error
}

// ActivePoolLedger is the Pool's view of the Active Pool collaborator (§6).
type ActivePoolLedger interface {
	SendFURFI(poolAddr crypto.Address, amount *big.Int) error
	DecreaseFURUSDDebt(amount *big.Int) error
}

// CommunityIssuance is the Pool's view of the LOAN issuance collaborator
// (§4.3, §6): a stateless pull of newly-mintable LOAN since the last call,
// plus the ability to push a computed gain out to a recipient.
type CommunityIssuance interface {
	IssueLOAN() (*big.Int, error)
	SendLOAN(to crypto.Address, amount *big.Int) error
}

// BorrowerOperations is the Pool's view of the collaborator that lets a
// depositor reroute a collateral gain straight into their trove instead of
// withdrawing it (§4.2 withdraw_collateral_gain_to_trove).
type BorrowerOperations interface {
	MoveFURFIGainToTrove(depositor crypto.Address, amount *big.Int, upperHint, lowerHint crypto.Address) error
	HasActiveTrove(addr crypto.Address) (bool, error)
}

// TroveStatusOracle answers "does any under-collateralized trove exist" for
// the withdraw precondition in §4.2; it is deliberately narrower than a full
// sorted-trove-list dependency since trove selection is out of scope.
type TroveStatusOracle interface {
	HasUnderCollateralizedTrove() (bool, error)
}

package troves

import (
	"math/big"

	"nhbchain/crypto"
)

// PriceOracle supplies the FURFI/FURUSD exchange rate, ONE-scaled, consulted
// when computing a trove's collateral ratio. Oracle pricing internals are
// explicitly out of scope; this is the pluggable seam a real price feed
// implements.
type PriceOracle interface {
	GetPrice() (*big.Int, error)
}

// StablecoinLedger is the Trove engine's view of the FURUSD collaborator.
type StablecoinLedger interface {
	Mint(caller, to crypto.Address, amount *big.Int) error
	BurnFrom(caller, from crypto.Address, amount *big.Int) error
}

// CollateralLedger is the Trove engine's view of the FURFI collaborator.
type CollateralLedger interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}

// ActivePoolLedger is the Trove engine's view of the Active Pool
// collaborator.
type ActivePoolLedger interface {
	IncreaseFURFI(caller crypto.Address, amount *big.Int) error
	SendFURFI(to crypto.Address, amount *big.Int) error
	IncreaseFURUSDDebt(caller crypto.Address, amount *big.Int) error
	DecreaseFURUSDDebt(amount *big.Int) error
}

// StabilityPool is the Trove engine's view of the Stability Pool
// collaborator: the sole entry point liquidation drives.
type StabilityPool interface {
	Offset(caller crypto.Address, debtToOffset, collToAdd *big.Int) error
}

// CollSurplusPool is the Trove engine's view of the collateral surplus
// collaborator credited when a liquidation leaves collateral unconsumed.
type CollSurplusPool interface {
	AccountSurplus(caller, addr crypto.Address, amount *big.Int) error
}

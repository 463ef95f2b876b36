package communityissuance

import (
	"math/big"

	"nhbchain/crypto"
)

// LOANLedger is the collaborator this engine pays issued LOAN out through.
// The engine's own address is expected to hold a genesis allocation of the
// fixed LOAN supply; issuance transfers out of that balance rather than
// minting fresh supply on every call.
type LOANLedger interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}

// clock abstracts wall-clock time so tests can drive the decay curve
// deterministically instead of depending on real elapsed time.
type clock interface {
	NowUnixSeconds() int64
}

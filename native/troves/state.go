package troves

import "nhbchain/crypto"

// engineState abstracts Trove persistence away from the engine, mirroring
// the lending engine's engineState interface.
type engineState interface {
	GetTrove(owner crypto.Address) (*Trove, error)
	PutTrove(owner crypto.Address, trove *Trove) error
	GetSystemTotals() (*SystemTotals, error)
	PutSystemTotals(t *SystemTotals) error
}

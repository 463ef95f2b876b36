package vesting

import "nhbchain/crypto"

// engineState abstracts vesting-lock persistence away from the engine.
type engineState interface {
	GetLock(lockAddr crypto.Address) (*Lock, error)
	PutLock(lockAddr crypto.Address, lock *Lock) error
	GetNextLockNonce() (uint64, error)
	PutNextLockNonce(nonce uint64) error
}

package vesting

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"sync"

	"nhbchain/crypto"
)

// Engine is the Vesting lock factory and registry: it allocates a fresh
// escrow address per lock, holds the allocation's LOAN balance there via
// the LOAN ledger, and answers the registry-membership check the LOAN
// ledger's time-gated transfer restriction consults.
type Engine struct {
	mu sync.Mutex

	state engineState
	loan  LOANLedger
	clock clock

	moduleAddress crypto.Address
}

// NewEngine constructs a Vesting engine bound to its own module address,
// used as the salt domain for deriving lock addresses.
func NewEngine(moduleAddr crypto.Address) *Engine {
	return &Engine{moduleAddress: moduleAddr, clock: SystemClock{}}
}

// SetState wires the engine to its persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLOANLedger wires the LOAN collaborator locks move balances through.
func (e *Engine) SetLOANLedger(l LOANLedger) {
	if e == nil {
		return
	}
	e.loan = l
}

// SetClock overrides the wall clock, used by tests to drive the cliff
// deterministically.
func (e *Engine) SetClock(c clock) {
	if e == nil || c == nil {
		return
	}
	e.clock = c
}

func deriveLockAddress(module crypto.Address, nonce uint64) crypto.Address {
	h := sha256.New()
	h.Write(module.Bytes())
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	h.Write(nonceBytes[:])
	sum := h.Sum(nil)
	return crypto.NewAddress(crypto.FurPrefix, sum[:20])
}

// CreateLock allocates a new cliff-vesting lock: it derives a fresh escrow
// address, moves amount of LOAN from funder into it, and records the
// beneficiary entitled to withdraw once the cliff elapses. The returned
// address is the identity the LOAN ledger's allow-list must recognize via
// IsRegisteredLock for the duration of the lock.
func (e *Engine) CreateLock(funder, beneficiary crypto.Address, amount *big.Int) (crypto.Address, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return crypto.Address{}, errNilState
	}
	if e.loan == nil {
		return crypto.Address{}, errNilLOAN
	}
	if amount == nil || amount.Sign() <= 0 {
		return crypto.Address{}, errInvalidAmount
	}
	if len(beneficiary.Bytes()) == 0 {
		return crypto.Address{}, errInvalidBeneficiary
	}
	nonce, err := e.state.GetNextLockNonce()
	if err != nil {
		return crypto.Address{}, err
	}
	lockAddr := deriveLockAddress(e.moduleAddress, nonce)
	if err := e.state.PutNextLockNonce(nonce + 1); err != nil {
		return crypto.Address{}, err
	}
	if err := e.loan.Transfer(funder, lockAddr, amount); err != nil {
		return crypto.Address{}, err
	}
	lock := NewLock(beneficiary, new(big.Int).Set(amount), e.clock.NowUnixSeconds())
	if err := e.state.PutLock(lockAddr, lock); err != nil {
		return crypto.Address{}, err
	}
	return lockAddr, nil
}

// Withdraw pays a lock's entire balance to its beneficiary once the cliff
// has elapsed, called by the beneficiary.
func (e *Engine) Withdraw(caller, lockAddr crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if e.loan == nil {
		return errNilLOAN
	}
	lock, err := e.state.GetLock(lockAddr)
	if err != nil {
		return err
	}
	if lock == nil {
		return errLockNotFound
	}
	if lock.Withdrawn {
		return errAlreadyWithdrawn
	}
	if string(caller.Bytes()) != string(lock.Beneficiary.Bytes()) {
		return errNotBeneficiary
	}
	if !lock.Unlocked(e.clock.NowUnixSeconds()) {
		return errStillLocked
	}
	lock.Withdrawn = true
	if err := e.loan.Transfer(lockAddr, lock.Beneficiary, lock.Amount); err != nil {
		return err
	}
	return e.state.PutLock(lockAddr, lock)
}

// IsRegisteredLock reports whether addr is a currently-tracked lock escrow,
// the allow-list check the LOAN ledger consults when a restricted sender
// transfers during the time-gated admin restriction window.
func (e *Engine) IsRegisteredLock(addr crypto.Address) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return false, errNilState
	}
	lock, err := e.state.GetLock(addr)
	if err != nil {
		return false, err
	}
	return lock != nil, nil
}

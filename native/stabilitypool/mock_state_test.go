package stabilitypool

import (
	"math/big"

	"nhbchain/crypto"
)

type mockEngineState struct {
	pool       *PoolState
	deposits   map[string]*Deposit
	depSnaps   map[string]*DepositSnapshot
	frontEnds  map[string]*FrontEnd
	feStakes   map[string]*FrontEndStake
	feSnaps    map[string]*FrontEndSnapshot
	scaleToS   map[[64]byte]*big.Int
	scaleToG   map[[64]byte]*big.Int
}

func newMockEngineState() *mockEngineState {
	return &mockEngineState{
		deposits:  make(map[string]*Deposit),
		depSnaps:  make(map[string]*DepositSnapshot),
		frontEnds: make(map[string]*FrontEnd),
		feStakes:  make(map[string]*FrontEndStake),
		feSnaps:   make(map[string]*FrontEndSnapshot),
		scaleToS:  make(map[[64]byte]*big.Int),
		scaleToG:  make(map[[64]byte]*big.Int),
	}
}

func (m *mockEngineState) key(addr crypto.Address) string { return string(addr.Bytes()) }

func (m *mockEngineState) GetPoolState() (*PoolState, error) { return m.pool, nil }
func (m *mockEngineState) PutPoolState(p *PoolState) error    { m.pool = p; return nil }

func (m *mockEngineState) GetDeposit(addr crypto.Address) (*Deposit, error) {
	return m.deposits[m.key(addr)], nil
}
func (m *mockEngineState) PutDeposit(addr crypto.Address, d *Deposit) error {
	m.deposits[m.key(addr)] = d
	return nil
}
func (m *mockEngineState) GetDepositSnapshot(addr crypto.Address) (*DepositSnapshot, error) {
	return m.depSnaps[m.key(addr)], nil
}
func (m *mockEngineState) PutDepositSnapshot(addr crypto.Address, s *DepositSnapshot) error {
	m.depSnaps[m.key(addr)] = s
	return nil
}

func (m *mockEngineState) GetFrontEnd(addr crypto.Address) (*FrontEnd, error) {
	return m.frontEnds[m.key(addr)], nil
}
func (m *mockEngineState) PutFrontEnd(addr crypto.Address, f *FrontEnd) error {
	m.frontEnds[m.key(addr)] = f
	return nil
}
func (m *mockEngineState) GetFrontEndStake(addr crypto.Address) (*FrontEndStake, error) {
	return m.feStakes[m.key(addr)], nil
}
func (m *mockEngineState) PutFrontEndStake(addr crypto.Address, s *FrontEndStake) error {
	m.feStakes[m.key(addr)] = s
	return nil
}
func (m *mockEngineState) GetFrontEndSnapshot(addr crypto.Address) (*FrontEndSnapshot, error) {
	return m.feSnaps[m.key(addr)], nil
}
func (m *mockEngineState) PutFrontEndSnapshot(addr crypto.Address, s *FrontEndSnapshot) error {
	m.feSnaps[m.key(addr)] = s
	return nil
}

func (m *mockEngineState) GetScaleToS(key ScaleAndEpoch) (*big.Int, error) {
	return m.scaleToS[key.Key()], nil
}
func (m *mockEngineState) PutScaleToS(key ScaleAndEpoch, value *big.Int) error {
	m.scaleToS[key.Key()] = value
	return nil
}
func (m *mockEngineState) GetScaleToG(key ScaleAndEpoch) (*big.Int, error) {
	return m.scaleToG[key.Key()], nil
}
func (m *mockEngineState) PutScaleToG(key ScaleAndEpoch, value *big.Int) error {
	m.scaleToG[key.Key()] = value
	return nil
}

func makeAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.NewAddress(crypto.FurPrefix, raw)
}

// mockStablecoin is an in-memory FURUSD ledger stub sufficient to exercise
// the pool's send_to_pool/return_from_pool/burn calls in isolation.
type mockStablecoin struct {
	balances map[string]*big.Int
}

func newMockStablecoin() *mockStablecoin {
	return &mockStablecoin{balances: make(map[string]*big.Int)}
}

func (s *mockStablecoin) credit(addr crypto.Address, amount *big.Int) {
	cur := s.balances[string(addr.Bytes())]
	if cur == nil {
		cur = big.NewInt(0)
	}
	s.balances[string(addr.Bytes())] = new(big.Int).Add(cur, amount)
}

func (s *mockStablecoin) SendToPool(from, poolAddr crypto.Address, amount *big.Int) error {
	bal := s.balances[string(from.Bytes())]
	if bal == nil || bal.Cmp(amount) < 0 {
		return errInsufficientCallerBalance
	}
	s.balances[string(from.Bytes())] = new(big.Int).Sub(bal, amount)
	s.credit(poolAddr, amount)
	return nil
}

func (s *mockStablecoin) ReturnFromPool(poolAddr, to crypto.Address, amount *big.Int) error {
	bal := s.balances[string(poolAddr.Bytes())]
	if bal == nil || bal.Cmp(amount) < 0 {
		return errInsufficientCallerBalance
	}
	s.balances[string(poolAddr.Bytes())] = new(big.Int).Sub(bal, amount)
	s.credit(to, amount)
	return nil
}

func (s *mockStablecoin) Burn(poolAddr crypto.Address, amount *big.Int) error {
	bal := s.balances[string(poolAddr.Bytes())]
	if bal == nil || bal.Cmp(amount) < 0 {
		return errInsufficientCallerBalance
	}
	s.balances[string(poolAddr.Bytes())] = new(big.Int).Sub(bal, amount)
	return nil
}

// mockActivePool is a minimal ActivePoolLedger stub recording seized
// collateral and debt decreases without enforcing its own accounting.
type mockActivePool struct {
	sentFURFI map[string]*big.Int
	debt      *big.Int
}

func newMockActivePool() *mockActivePool {
	return &mockActivePool{sentFURFI: make(map[string]*big.Int), debt: big.NewInt(0)}
}

func (a *mockActivePool) SendFURFI(poolAddr crypto.Address, amount *big.Int) error {
	cur := a.sentFURFI[string(poolAddr.Bytes())]
	if cur == nil {
		cur = big.NewInt(0)
	}
	a.sentFURFI[string(poolAddr.Bytes())] = new(big.Int).Add(cur, amount)
	return nil
}

func (a *mockActivePool) DecreaseFURUSDDebt(amount *big.Int) error {
	a.debt = new(big.Int).Sub(a.debt, amount)
	return nil
}

// mockIssuance is a CommunityIssuance stub that yields a scripted sequence
// of LOAN amounts, one per call to IssueLOAN.
type mockIssuance struct {
	queue []*big.Int
	sent  map[string]*big.Int
}

func newMockIssuance(amounts ...*big.Int) *mockIssuance {
	return &mockIssuance{queue: amounts, sent: make(map[string]*big.Int)}
}

func (i *mockIssuance) IssueLOAN() (*big.Int, error) {
	if len(i.queue) == 0 {
		return big.NewInt(0), nil
	}
	next := i.queue[0]
	i.queue = i.queue[1:]
	return next, nil
}

func (i *mockIssuance) SendLOAN(to crypto.Address, amount *big.Int) error {
	cur := i.sent[string(to.Bytes())]
	if cur == nil {
		cur = big.NewInt(0)
	}
	i.sent[string(to.Bytes())] = new(big.Int).Add(cur, amount)
	return nil
}

var errInsufficientCallerBalance = &mockError{"stabilitypool mock: insufficient balance"}

type mockError struct{ msg string }

func (e *mockError) Error() string { return e.msg }

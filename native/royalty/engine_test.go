package royalty

import (
	"errors"
	"math/big"
	"testing"

	"curio/core/events"
)

type mockState struct {
	commissions map[uint64]*CommissionRecord
	books       map[uint64]*OfferBook
}

func newMockState() *mockState {
	return &mockState{
		commissions: make(map[uint64]*CommissionRecord),
		books:       make(map[uint64]*OfferBook),
	}
}

func (m *mockState) CommissionGet(tokenID uint64) (*CommissionRecord, bool, error) {
	rec, ok := m.commissions[tokenID]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (m *mockState) CommissionPut(rec *CommissionRecord) error {
	if rec == nil {
		return nil
	}
	m.commissions[rec.TokenID] = rec.Clone()
	return nil
}

func (m *mockState) OfferBookGet(tokenID uint64) (*OfferBook, error) {
	book, ok := m.books[tokenID]
	if !ok {
		return NewOfferBook(), nil
	}
	return book.Clone(), nil
}

func (m *mockState) OfferBookPut(tokenID uint64, book *OfferBook) error {
	if book == nil || book.Len() == 0 {
		delete(m.books, tokenID)
		return nil
	}
	m.books[tokenID] = book.Clone()
	return nil
}

type balanceKey struct {
	currency [20]byte
	addr     [20]byte
}

type allowanceKey struct {
	currency [20]byte
	owner    [20]byte
	spender  [20]byte
}

type mockLedger struct {
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
	onPull     func(payer [20]byte)
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

func (m *mockLedger) setBalance(currency, holder [20]byte, amount int64) {
	m.balances[balanceKey{currency, holder}] = big.NewInt(amount)
}

func (m *mockLedger) setAllowance(currency, owner, spender [20]byte, amount int64) {
	m.allowances[allowanceKey{currency, owner, spender}] = big.NewInt(amount)
}

func (m *mockLedger) balance(currency, holder [20]byte) *big.Int {
	if amount, ok := m.balances[balanceKey{currency, holder}]; ok {
		return new(big.Int).Set(amount)
	}
	return big.NewInt(0)
}

func (m *mockLedger) BalanceOf(currency, addr [20]byte) (*big.Int, error) {
	return m.balance(currency, addr), nil
}

func (m *mockLedger) Allowance(currency, owner, spender [20]byte) (*big.Int, error) {
	if amount, ok := m.allowances[allowanceKey{currency, owner, spender}]; ok {
		return new(big.Int).Set(amount), nil
	}
	return big.NewInt(0), nil
}

func (m *mockLedger) Transfer(currency, from, to [20]byte, amount *big.Int) error {
	balance := m.balance(currency, from)
	if balance.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	m.balances[balanceKey{currency, from}] = balance.Sub(balance, amount)
	m.balances[balanceKey{currency, to}] = new(big.Int).Add(m.balance(currency, to), amount)
	return nil
}

func (m *mockLedger) TransferFrom(currency, spender, from, to [20]byte, amount *big.Int) error {
	key := allowanceKey{currency, from, spender}
	allowance, ok := m.allowances[key]
	if !ok || allowance.Cmp(amount) < 0 {
		return errors.New("insufficient approval")
	}
	if err := m.Transfer(currency, from, to, amount); err != nil {
		return err
	}
	m.allowances[key] = new(big.Int).Sub(allowance, amount)
	if m.onPull != nil {
		m.onPull(from)
	}
	return nil
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func (c *captureEmitter) typesSeen() []string {
	out := make([]string, 0, len(c.events))
	for _, evt := range c.events {
		out = append(out, evt.EventType())
	}
	return out
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

type staticAssets struct {
	creator [20]byte
}

func (s staticAssets) CreatorOf(id uint64) ([20]byte, error) { return s.creator, nil }

func newTestEngine(state *mockState, ledger *mockLedger, creator [20]byte, now int64) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetLedger(ledger)
	engine.SetAssets(staticAssets{creator: creator})
	engine.SetVault(addr(0xff))
	engine.SetNowFunc(func() int64 { return now })
	return engine
}

func TestInitCommissionValidation(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state, newMockLedger(), addr(0x01), 100)
	currency := addr(0xcc)

	if _, err := engine.InitCommission(1, [20]byte{}, big.NewInt(10), BpsDenominator, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for zero currency, got %v", err)
	}
	if _, err := engine.InitCommission(1, currency, big.NewInt(-1), BpsDenominator, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for negative base, got %v", err)
	}
	if _, err := engine.InitCommission(1, currency, big.NewInt(10), 20_000, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for zero interval with growth, got %v", err)
	}
	if _, err := engine.InitCommission(1, currency, big.NewInt(10), 20_000, 60); err != nil {
		t.Fatalf("valid commission rejected: %v", err)
	}
	if _, err := engine.InitCommission(1, currency, big.NewInt(10), 20_000, 60); !errors.Is(err, ErrCommissionExists) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestCommissionReportsAccruedAmount(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state, newMockLedger(), addr(0x01), 0)
	currency := addr(0xcc)
	if _, err := engine.InitCommission(7, currency, big.NewInt(100), 20_000, 60); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	engine.SetNowFunc(func() int64 { return 125 })
	gotCurrency, owed, err := engine.Commission(7)
	if err != nil {
		t.Fatalf("commission query: %v", err)
	}
	if gotCurrency != currency {
		t.Fatalf("unexpected currency %x", gotCurrency)
	}
	if owed.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("expected 400 owed, got %s", owed)
	}
	if _, _, err := engine.Commission(8); !errors.Is(err, ErrCommissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegisterOfferLifecycle(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state, newMockLedger(), addr(0x01), 100)
	payer := addr(0x05)

	// Withdrawing an absent entry is a no-op.
	if err := engine.RegisterOffer(1, payer, big.NewInt(0)); err != nil {
		t.Fatalf("withdraw absent offer: %v", err)
	}
	if err := engine.RegisterOffer(1, payer, big.NewInt(50)); err != nil {
		t.Fatalf("register offer: %v", err)
	}
	entries, err := engine.Offers(1)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("unexpected offer book: %+v", entries)
	}
	// Overwrite keeps the entry, zero withdraws it.
	if err := engine.RegisterOffer(1, payer, big.NewInt(80)); err != nil {
		t.Fatalf("overwrite offer: %v", err)
	}
	if err := engine.RegisterOffer(1, payer, nil); err != nil {
		t.Fatalf("withdraw offer: %v", err)
	}
	entries, err = engine.Offers(1)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty book, got %+v", entries)
	}
}

func TestSettleOwnerFirstThenInsertionOrder(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	creator := addr(0x01)
	owner := addr(0x02)
	offerer := addr(0x03)
	currency := addr(0xcc)
	vault := addr(0xff)

	engine := newTestEngine(state, ledger, creator, 0)
	if _, err := engine.InitCommission(1, currency, big.NewInt(100), BpsDenominator, 0); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	// Offerer registered first, owner second; owner must still pay first.
	if err := engine.RegisterOffer(1, offerer, big.NewInt(1000)); err != nil {
		t.Fatalf("register offerer: %v", err)
	}
	if err := engine.RegisterOffer(1, owner, big.NewInt(30)); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	ledger.setBalance(currency, owner, 500)
	ledger.setBalance(currency, offerer, 500)
	ledger.setAllowance(currency, owner, vault, 1000)
	ledger.setAllowance(currency, offerer, vault, 1000)

	emitter := &captureEmitter{}
	engine.SetEmitter(emitter)
	if err := engine.Settle(1, owner); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if got := ledger.balance(currency, creator); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("creator expected 100, got %s", got)
	}
	if got := ledger.balance(currency, owner); got.Cmp(big.NewInt(470)) != 0 {
		t.Fatalf("owner expected 470, got %s", got)
	}
	if got := ledger.balance(currency, offerer); got.Cmp(big.NewInt(430)) != 0 {
		t.Fatalf("offerer expected 430, got %s", got)
	}
	if got := ledger.balance(currency, vault); got.Sign() != 0 {
		t.Fatalf("vault must be flat after settlement, got %s", got)
	}

	// Owner's 30 was fully drained and deregistered; the offerer's partial
	// 70 draw leaves its 1000 authorization untouched.
	entries, err := engine.Offers(1)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(entries) != 1 || entries[0].Payer != offerer {
		t.Fatalf("expected only offerer registered, got %+v", entries)
	}
	if entries[0].Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("offerer authorization must stay 1000, got %s", entries[0].Amount)
	}

	seen := emitter.typesSeen()
	want := []string{EventTypeOfferRemoved, EventTypeCommissionSettled}
	if len(seen) != len(want) {
		t.Fatalf("unexpected events %v", seen)
	}
	for i, typ := range want {
		if seen[i] != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, seen[i])
		}
	}
}

func TestSettleShortfallLeavesEverythingUntouched(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	creator := addr(0x01)
	owner := addr(0x02)
	offerer := addr(0x03)
	currency := addr(0xcc)
	vault := addr(0xff)

	engine := newTestEngine(state, ledger, creator, 0)
	if _, err := engine.InitCommission(1, currency, big.NewInt(100), BpsDenominator, 0); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	if err := engine.RegisterOffer(1, owner, big.NewInt(30)); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	if err := engine.RegisterOffer(1, offerer, big.NewInt(30)); err != nil {
		t.Fatalf("register offerer: %v", err)
	}
	ledger.setBalance(currency, owner, 500)
	ledger.setBalance(currency, offerer, 500)
	ledger.setAllowance(currency, owner, vault, 1000)
	ledger.setAllowance(currency, offerer, vault, 1000)

	if err := engine.Settle(1, owner); !errors.Is(err, ErrCommissionUnsettled) {
		t.Fatalf("expected unsettled, got %v", err)
	}
	if got := ledger.balance(currency, owner); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("owner must keep 500, got %s", got)
	}
	if got := ledger.balance(currency, creator); got.Sign() != 0 {
		t.Fatalf("creator must receive nothing, got %s", got)
	}
	entries, err := engine.Offers(1)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("offer book must be untouched, got %+v", entries)
	}
}

func TestSettleLimitedByLiveFundsKeepsAuthorization(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	creator := addr(0x01)
	owner := addr(0x02)
	offerer := addr(0x03)
	currency := addr(0xcc)
	vault := addr(0xff)

	engine := newTestEngine(state, ledger, creator, 0)
	if _, err := engine.InitCommission(1, currency, big.NewInt(100), BpsDenominator, 0); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	// Offerer authorizes 200 but only has 40 in funds; the partial draw must
	// not deregister it.
	if err := engine.RegisterOffer(1, offerer, big.NewInt(200)); err != nil {
		t.Fatalf("register offerer: %v", err)
	}
	if err := engine.RegisterOffer(1, owner, big.NewInt(100)); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	ledger.setBalance(currency, offerer, 40)
	ledger.setAllowance(currency, offerer, vault, 1000)
	ledger.setBalance(currency, owner, 1000)
	ledger.setAllowance(currency, owner, vault, 60)

	if err := engine.Settle(1, owner); err != nil {
		t.Fatalf("settle: %v", err)
	}
	// Owner pays min(100 authorized, 60 allowance) = 60, offerer covers 40.
	if got := ledger.balance(currency, creator); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("creator expected 100, got %s", got)
	}
	entries, err := engine.Offers(1)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("partial draws must keep both registrations, got %+v", entries)
	}
}

func TestSettleWithoutRecordOrCommissionIsNoop(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	engine := newTestEngine(state, ledger, addr(0x01), 0)

	// No commission record at all.
	if err := engine.Settle(9, addr(0x02)); err != nil {
		t.Fatalf("settle without record: %v", err)
	}

	// Zero owed amount settles trivially.
	if _, err := engine.InitCommission(9, addr(0xcc), big.NewInt(0), BpsDenominator, 0); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	if err := engine.Settle(9, addr(0x02)); err != nil {
		t.Fatalf("settle zero owed: %v", err)
	}
}

func TestSettleDeregistersBeforeFundsMove(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	creator := addr(0x01)
	owner := addr(0x02)
	currency := addr(0xcc)
	vault := addr(0xff)

	engine := newTestEngine(state, ledger, creator, 0)
	if _, err := engine.InitCommission(1, currency, big.NewInt(50), BpsDenominator, 0); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	if err := engine.RegisterOffer(1, owner, big.NewInt(50)); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	ledger.setBalance(currency, owner, 100)
	ledger.setAllowance(currency, owner, vault, 100)

	// Observe the book from inside the pull: the drained payer must already
	// be gone when its funds move.
	var seenDuringPull bool
	ledger.onPull = func(payer [20]byte) {
		book, err := state.OfferBookGet(1)
		if err != nil {
			t.Fatalf("book during pull: %v", err)
		}
		seenDuringPull = book.Has(payer)
	}
	if err := engine.Settle(1, owner); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if seenDuringPull {
		t.Fatal("drained payer still registered while its funds moved")
	}
}

func TestSettleSkipsZeroCreator(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	owner := addr(0x02)
	currency := addr(0xcc)

	engine := newTestEngine(state, ledger, [20]byte{}, 0)
	if _, err := engine.InitCommission(1, currency, big.NewInt(100), BpsDenominator, 0); err != nil {
		t.Fatalf("init commission: %v", err)
	}
	if err := engine.Settle(1, owner); err != nil {
		t.Fatalf("settle with zero creator: %v", err)
	}
	if got := ledger.balance(currency, owner); got.Sign() != 0 {
		t.Fatalf("no funds may move, got %s", got)
	}
}

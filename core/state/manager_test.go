package state

import (
	"math/big"
	"testing"

	"curio/native/assets"
	"curio/native/market"
	"curio/native/royalty"
	"curio/storage"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func TestTokenCounterStartsAtOne(t *testing.T) {
	manager := newManager(t)
	for want := uint64(1); want <= 3; want++ {
		got, err := manager.TokenCounterNext()
		if err != nil {
			t.Fatalf("counter: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager := newManager(t)
	if _, ok, err := manager.TokenGet(1); err != nil || ok {
		t.Fatalf("unexpected token before put: %v %v", ok, err)
	}
	token := &assets.Token{
		ID:        1,
		Creator:   addr(0x01),
		Owner:     addr(0x02),
		URI:       "ipfs://thing",
		CreatedAt: 1700000000,
	}
	if err := manager.TokenPut(token); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, ok, err := manager.TokenGet(1)
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if *loaded != *token {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, token)
	}
}

func TestCommissionRoundTrip(t *testing.T) {
	manager := newManager(t)
	rec := &royalty.CommissionRecord{
		TokenID:      4,
		Currency:     addr(0xcc),
		BaseAmount:   big.NewInt(125),
		GrowthBps:    15_000,
		IntervalSecs: 3600,
		CreatedAt:    1700000000,
	}
	if err := manager.CommissionPut(rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, ok, err := manager.CommissionGet(4)
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if loaded.BaseAmount.Cmp(rec.BaseAmount) != 0 || loaded.GrowthBps != rec.GrowthBps ||
		loaded.IntervalSecs != rec.IntervalSecs || loaded.CreatedAt != rec.CreatedAt ||
		loaded.Currency != rec.Currency {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestOfferBookRoundTripPreservesOrder(t *testing.T) {
	manager := newManager(t)
	book, err := manager.OfferBookGet(9)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if book.Len() != 0 {
		t.Fatalf("expected empty book, got %d", book.Len())
	}

	book.Set(addr(0x0c), big.NewInt(3))
	book.Set(addr(0x0a), big.NewInt(1))
	book.Set(addr(0x0b), big.NewInt(2))
	if err := manager.OfferBookPut(9, book); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, err := manager.OfferBookGet(9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	entries := loaded.Entries()
	if len(entries) != 3 || entries[0].Payer != addr(0x0c) || entries[1].Payer != addr(0x0a) || entries[2].Payer != addr(0x0b) {
		t.Fatalf("order not preserved: %+v", entries)
	}

	// An emptied book deletes the record.
	if err := manager.OfferBookPut(9, royalty.NewOfferBook()); err != nil {
		t.Fatalf("put empty: %v", err)
	}
	loaded, err = manager.OfferBookGet(9)
	if err != nil || loaded.Len() != 0 {
		t.Fatalf("expected deleted book, got %d %v", loaded.Len(), err)
	}
}

func TestListingRoundTripAndDelete(t *testing.T) {
	manager := newManager(t)
	listing := &market.Listing{
		TokenID:  2,
		Kind:     market.ListingCurrency,
		Amount:   big.NewInt(400),
		Currency: addr(0xcc),
		ListedAt: 1700000000,
	}
	if err := manager.ListingPut(listing); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, ok, err := manager.ListingGet(2)
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if loaded.Kind != listing.Kind || loaded.Amount.Cmp(listing.Amount) != 0 || loaded.Currency != listing.Currency {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if err := manager.ListingDelete(2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := manager.ListingGet(2); err != nil || ok {
		t.Fatalf("listing must be gone: %v %v", ok, err)
	}
	// Deleting again stays a no-op.
	if err := manager.ListingDelete(2); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestBalanceAndAllowanceRoundTrip(t *testing.T) {
	manager := newManager(t)
	currency := addr(0xcc)
	owner := addr(0x01)
	spender := addr(0x02)

	balance, err := manager.BalanceGet(currency, owner)
	if err != nil || balance.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s %v", balance, err)
	}
	if err := manager.BalancePut(currency, owner, big.NewInt(77)); err != nil {
		t.Fatalf("put balance: %v", err)
	}
	balance, err = manager.BalanceGet(currency, owner)
	if err != nil || balance.Cmp(big.NewInt(77)) != 0 {
		t.Fatalf("balance mismatch: %s %v", balance, err)
	}

	if err := manager.AllowancePut(currency, owner, spender, big.NewInt(55)); err != nil {
		t.Fatalf("put allowance: %v", err)
	}
	allowance, err := manager.AllowanceGet(currency, owner, spender)
	if err != nil || allowance.Cmp(big.NewInt(55)) != 0 {
		t.Fatalf("allowance mismatch: %s %v", allowance, err)
	}
	// Zero clears the stored record.
	if err := manager.AllowancePut(currency, owner, spender, big.NewInt(0)); err != nil {
		t.Fatalf("clear allowance: %v", err)
	}
	allowance, err = manager.AllowanceGet(currency, owner, spender)
	if err != nil || allowance.Sign() != 0 {
		t.Fatalf("allowance must be zero, got %s %v", allowance, err)
	}

	if err := manager.NativeBalancePut(owner, big.NewInt(12)); err != nil {
		t.Fatalf("put native: %v", err)
	}
	native, err := manager.NativeBalanceGet(owner)
	if err != nil || native.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("native mismatch: %s %v", native, err)
	}
}

func TestKeyNamespacesDoNotCollide(t *testing.T) {
	manager := newManager(t)
	// The same id under two prefixes lands on different keys.
	if err := manager.TokenPut(&assets.Token{ID: 5, Creator: addr(0x01), Owner: addr(0x01)}); err != nil {
		t.Fatalf("put token: %v", err)
	}
	if err := manager.ListingPut(&market.Listing{TokenID: 5, Kind: market.ListingNative, Amount: big.NewInt(1)}); err != nil {
		t.Fatalf("put listing: %v", err)
	}
	if err := manager.ListingDelete(5); err != nil {
		t.Fatalf("delete listing: %v", err)
	}
	if _, ok, err := manager.TokenGet(5); err != nil || !ok {
		t.Fatalf("token must survive listing delete: %v %v", ok, err)
	}
}

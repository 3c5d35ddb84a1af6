package royalty

import (
	"math/big"
	"testing"
)

func TestOfferBookKeepsInsertionOrder(t *testing.T) {
	book := NewOfferBook()
	a, b, c := addr(0x0a), addr(0x0b), addr(0x0c)
	book.Set(a, big.NewInt(1))
	book.Set(b, big.NewInt(2))
	book.Set(c, big.NewInt(3))

	// Overwriting keeps the payer's original position.
	book.Set(a, big.NewInt(10))
	entries := book.Entries()
	if len(entries) != 3 || entries[0].Payer != a || entries[1].Payer != b || entries[2].Payer != c {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[0].Amount.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("overwrite did not take: %s", entries[0].Amount)
	}

	book.Remove(b)
	entries = book.Entries()
	if len(entries) != 2 || entries[0].Payer != a || entries[1].Payer != c {
		t.Fatalf("unexpected order after removal: %+v", entries)
	}
}

func TestOfferBookSetNonPositiveRemoves(t *testing.T) {
	book := NewOfferBook()
	a := addr(0x0a)
	book.Set(a, big.NewInt(5))
	book.Set(a, big.NewInt(0))
	if book.Has(a) {
		t.Fatal("zero amount must remove the payer")
	}
	book.Set(a, nil)
	if book.Len() != 0 {
		t.Fatalf("expected empty book, got %d entries", book.Len())
	}
}

func TestOfferBookCloneIsDeep(t *testing.T) {
	book := NewOfferBook(OfferEntry{Payer: addr(0x0a), Amount: big.NewInt(7)})
	clone := book.Clone()
	clone.Set(addr(0x0a), big.NewInt(99))
	if amount, _ := book.Amount(addr(0x0a)); amount.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("clone mutation leaked into original: %s", amount)
	}
}

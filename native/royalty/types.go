package royalty

import "math/big"

// BpsDenominator is the basis-point scale used by the growth multiplier.
// A multiplier equal to the denominator means the commission never grows.
const BpsDenominator = 10_000

// CommissionRecord holds the royalty parameters fixed at token creation.
// Records are immutable; there is no update operation.
type CommissionRecord struct {
	TokenID      uint64   `json:"tokenId"`
	Currency     [20]byte `json:"currency"`
	BaseAmount   *big.Int `json:"baseAmount"`
	GrowthBps    uint32   `json:"growthBps"`
	IntervalSecs uint64   `json:"intervalSecs"`
	CreatedAt    int64    `json:"createdAt"`
}

// Clone returns a deep copy of the commission record.
func (c *CommissionRecord) Clone() *CommissionRecord {
	if c == nil {
		return nil
	}
	clone := *c
	if c.BaseAmount != nil {
		clone.BaseAmount = new(big.Int).Set(c.BaseAmount)
	} else {
		clone.BaseAmount = big.NewInt(0)
	}
	return &clone
}

// OfferEntry pairs a payer with its authorized commission contribution.
type OfferEntry struct {
	Payer  [20]byte
	Amount *big.Int
}

// OfferBook is the per-token set of commission payers. Lookup and removal are
// O(1); iteration follows first-insertion order, which settlement depends on.
// An address is present exactly when it has a non-zero authorized amount.
type OfferBook struct {
	order   [][20]byte
	amounts map[[20]byte]*big.Int
}

// NewOfferBook builds a book from entries in iteration order.
func NewOfferBook(entries ...OfferEntry) *OfferBook {
	book := &OfferBook{amounts: make(map[[20]byte]*big.Int)}
	for _, entry := range entries {
		book.Set(entry.Payer, entry.Amount)
	}
	return book
}

// Len returns the number of registered payers.
func (b *OfferBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Amount returns the authorized amount for the payer, if registered.
func (b *OfferBook) Amount(payer [20]byte) (*big.Int, bool) {
	if b == nil {
		return nil, false
	}
	amount, ok := b.amounts[payer]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(amount), true
}

// Has reports whether the payer is registered.
func (b *OfferBook) Has(payer [20]byte) bool {
	if b == nil {
		return false
	}
	_, ok := b.amounts[payer]
	return ok
}

// Set inserts or overwrites the payer's authorized amount. A nil or
// non-positive amount removes the payer instead. Overwriting keeps the
// payer's original position in the iteration order.
func (b *OfferBook) Set(payer [20]byte, amount *big.Int) {
	if b.amounts == nil {
		b.amounts = make(map[[20]byte]*big.Int)
	}
	if amount == nil || amount.Sign() <= 0 {
		b.Remove(payer)
		return
	}
	if _, ok := b.amounts[payer]; !ok {
		b.order = append(b.order, payer)
	}
	b.amounts[payer] = new(big.Int).Set(amount)
}

// Remove deletes the payer from the book. Removing an absent payer is a no-op.
func (b *OfferBook) Remove(payer [20]byte) {
	if b == nil || b.amounts == nil {
		return
	}
	if _, ok := b.amounts[payer]; !ok {
		return
	}
	delete(b.amounts, payer)
	for i, addr := range b.order {
		if addr == payer {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Entries returns the registered payers in insertion order.
func (b *OfferBook) Entries() []OfferEntry {
	if b == nil {
		return nil
	}
	entries := make([]OfferEntry, 0, len(b.order))
	for _, addr := range b.order {
		entries = append(entries, OfferEntry{Payer: addr, Amount: new(big.Int).Set(b.amounts[addr])})
	}
	return entries
}

// Clone returns a deep copy of the book.
func (b *OfferBook) Clone() *OfferBook {
	if b == nil {
		return nil
	}
	return NewOfferBook(b.Entries()...)
}

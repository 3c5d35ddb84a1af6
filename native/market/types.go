package market

import "math/big"

// ListingKind distinguishes the two payment modes a token can be listed for.
type ListingKind uint8

const (
	// ListingNative asks for native funds.
	ListingNative ListingKind = iota + 1
	// ListingCurrency asks for a specific fungible currency.
	ListingCurrency
)

// Valid reports whether the kind value is within the supported range.
func (k ListingKind) Valid() bool {
	return k == ListingNative || k == ListingCurrency
}

// Listing is the current owner's published intent to sell. Absence of a
// stored listing means the token is not for sale.
type Listing struct {
	TokenID  uint64      `json:"tokenId"`
	Kind     ListingKind `json:"kind"`
	Amount   *big.Int    `json:"amount"`
	Currency [20]byte    `json:"currency"`
	ListedAt int64       `json:"listedAt"`
}

// Clone returns a deep copy of the listing.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	clone := *l
	if l.Amount != nil {
		clone.Amount = new(big.Int).Set(l.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

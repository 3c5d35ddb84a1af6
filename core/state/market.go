package state

import (
	"math/big"

	"curio/native/market"
)

type storedListing struct {
	TokenID  uint64
	Kind     uint8
	Amount   *big.Int
	Currency [20]byte
	ListedAt uint64
}

// ListingGet loads the sale listing for the token.
func (m *Manager) ListingGet(tokenID uint64) (*market.Listing, bool, error) {
	var stored storedListing
	ok, err := m.load(idKey(listingPrefix, tokenID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	amount := stored.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	return &market.Listing{
		TokenID:  stored.TokenID,
		Kind:     market.ListingKind(stored.Kind),
		Amount:   new(big.Int).Set(amount),
		Currency: stored.Currency,
		ListedAt: int64(stored.ListedAt),
	}, true, nil
}

// ListingPut stores the sale listing keyed by token id.
func (m *Manager) ListingPut(listing *market.Listing) error {
	if listing == nil {
		return nil
	}
	amount := listing.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	stored := storedListing{
		TokenID:  listing.TokenID,
		Kind:     uint8(listing.Kind),
		Amount:   new(big.Int).Set(amount),
		Currency: listing.Currency,
		ListedAt: uint64(listing.ListedAt),
	}
	return m.store(idKey(listingPrefix, listing.TokenID), &stored)
}

// ListingDelete clears the sale listing for the token. Deleting an absent
// listing is a no-op.
func (m *Manager) ListingDelete(tokenID uint64) error {
	return m.db.Delete(idKey(listingPrefix, tokenID))
}

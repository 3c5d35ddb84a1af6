package state

import (
	"math/big"

	"curio/native/royalty"
)

type storedCommission struct {
	TokenID      uint64
	Currency     [20]byte
	BaseAmount   *big.Int
	GrowthBps    uint32
	IntervalSecs uint64
	CreatedAt    uint64
}

// CommissionGet loads the commission record for the token.
func (m *Manager) CommissionGet(tokenID uint64) (*royalty.CommissionRecord, bool, error) {
	var stored storedCommission
	ok, err := m.load(idKey(commissionPrefix, tokenID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	base := stored.BaseAmount
	if base == nil {
		base = big.NewInt(0)
	}
	return &royalty.CommissionRecord{
		TokenID:      stored.TokenID,
		Currency:     stored.Currency,
		BaseAmount:   new(big.Int).Set(base),
		GrowthBps:    stored.GrowthBps,
		IntervalSecs: stored.IntervalSecs,
		CreatedAt:    int64(stored.CreatedAt),
	}, true, nil
}

// CommissionPut stores the commission record keyed by token id.
func (m *Manager) CommissionPut(rec *royalty.CommissionRecord) error {
	if rec == nil {
		return nil
	}
	base := rec.BaseAmount
	if base == nil {
		base = big.NewInt(0)
	}
	stored := storedCommission{
		TokenID:      rec.TokenID,
		Currency:     rec.Currency,
		BaseAmount:   new(big.Int).Set(base),
		GrowthBps:    rec.GrowthBps,
		IntervalSecs: rec.IntervalSecs,
		CreatedAt:    uint64(rec.CreatedAt),
	}
	return m.store(idKey(commissionPrefix, rec.TokenID), &stored)
}

type storedOffer struct {
	Payer  [20]byte
	Amount *big.Int
}

// OfferBookGet loads the offer book for the token, empty when absent. The
// stored slice preserves insertion order, which settlement iteration depends
// on.
func (m *Manager) OfferBookGet(tokenID uint64) (*royalty.OfferBook, error) {
	var stored []storedOffer
	if _, err := m.load(idKey(offerBookPrefix, tokenID), &stored); err != nil {
		return nil, err
	}
	entries := make([]royalty.OfferEntry, 0, len(stored))
	for _, offer := range stored {
		entries = append(entries, royalty.OfferEntry{Payer: offer.Payer, Amount: offer.Amount})
	}
	return royalty.NewOfferBook(entries...), nil
}

// OfferBookPut stores the offer book for the token. An empty book deletes the
// record.
func (m *Manager) OfferBookPut(tokenID uint64, book *royalty.OfferBook) error {
	key := idKey(offerBookPrefix, tokenID)
	if book == nil || book.Len() == 0 {
		return m.db.Delete(key)
	}
	entries := book.Entries()
	stored := make([]storedOffer, 0, len(entries))
	for _, entry := range entries {
		stored = append(stored, storedOffer{Payer: entry.Payer, Amount: entry.Amount})
	}
	return m.store(key, stored)
}

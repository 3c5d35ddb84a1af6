package market

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"curio/core/events"
	"curio/core/types"
)

const (
	// EventTypeListed is emitted when a token goes on sale.
	EventTypeListed = "market.listed"
	// EventTypeUnlisted is emitted when the owner withdraws a sale.
	EventTypeUnlisted = "market.unlisted"
	// EventTypeSold is emitted after a completed purchase.
	EventTypeSold = "market.sold"
	// EventTypeSweep is emitted when the administrator collects stray funds.
	EventTypeSweep = "market.sweep"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func kindLabel(kind ListingKind) string {
	if kind == ListingCurrency {
		return "currency"
	}
	return "native"
}

// ListedEvent captures a new sale listing.
func ListedEvent(listing *Listing) *types.Event {
	return &types.Event{
		Type: EventTypeListed,
		Attributes: map[string]string{
			"tokenId":  strconv.FormatUint(listing.TokenID, 10),
			"kind":     kindLabel(listing.Kind),
			"amount":   bigString(listing.Amount),
			"currency": hexAddr(listing.Currency),
		},
	}
}

// UnlistedEvent captures a withdrawn sale.
func UnlistedEvent(tokenID uint64, owner [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeUnlisted,
		Attributes: map[string]string{
			"tokenId": strconv.FormatUint(tokenID, 10),
			"owner":   hexAddr(owner),
		},
	}
}

// SoldEvent captures a completed purchase.
func SoldEvent(listing *Listing, seller, buyer [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeSold,
		Attributes: map[string]string{
			"tokenId":  strconv.FormatUint(listing.TokenID, 10),
			"kind":     kindLabel(listing.Kind),
			"amount":   bigString(listing.Amount),
			"currency": hexAddr(listing.Currency),
			"seller":   hexAddr(seller),
			"buyer":    hexAddr(buyer),
		},
	}
}

// SweepEvent captures an administrator sweep of stray escrow funds.
func SweepEvent(currency, admin [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeSweep,
		Attributes: map[string]string{
			"currency": hexAddr(currency),
			"admin":    hexAddr(admin),
			"amount":   bigString(amount),
		},
	}
}

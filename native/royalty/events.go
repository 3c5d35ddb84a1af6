package royalty

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"curio/core/events"
	"curio/core/types"
)

const (
	// EventTypeOfferRegistered is emitted when a payer registers or updates an offer.
	EventTypeOfferRegistered = "royalty.offer.registered"
	// EventTypeOfferRemoved is emitted when an offer is withdrawn or drained.
	EventTypeOfferRemoved = "royalty.offer.removed"
	// EventTypeCommissionSettled is emitted after a successful settlement.
	EventTypeCommissionSettled = "royalty.commission.settled"
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

// OfferRegisteredEvent captures a new or updated offer authorization.
func OfferRegisteredEvent(tokenID uint64, payer [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeOfferRegistered,
		Attributes: map[string]string{
			"tokenId": strconv.FormatUint(tokenID, 10),
			"payer":   hexAddr(payer),
			"amount":  bigString(amount),
		},
	}
}

// OfferRemovedEvent captures an offer leaving the book, whether withdrawn or
// consumed by settlement.
func OfferRemovedEvent(tokenID uint64, payer [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeOfferRemoved,
		Attributes: map[string]string{
			"tokenId": strconv.FormatUint(tokenID, 10),
			"payer":   hexAddr(payer),
		},
	}
}

// CommissionSettledEvent captures a completed settlement.
func CommissionSettledEvent(tokenID uint64, creator, currency [20]byte, amount *big.Int, payers int) *types.Event {
	return &types.Event{
		Type: EventTypeCommissionSettled,
		Attributes: map[string]string{
			"tokenId":  strconv.FormatUint(tokenID, 10),
			"creator":  hexAddr(creator),
			"currency": hexAddr(currency),
			"amount":   bigString(amount),
			"payers":   strconv.Itoa(payers),
		},
	}
}

package assets

import (
	"encoding/hex"
	"strconv"

	"curio/core/events"
	"curio/core/types"
)

const (
	// EventTypeTokenMinted is emitted when a new asset is registered.
	EventTypeTokenMinted = "asset.created"
	// EventTypeTokenTransferred is emitted when ownership moves.
	EventTypeTokenTransferred = "asset.transferred"
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

// TokenMintedEvent returns the structured event payload for a mint.
func TokenMintedEvent(token *Token) *types.Event {
	return &types.Event{
		Type: EventTypeTokenMinted,
		Attributes: map[string]string{
			"id":      strconv.FormatUint(token.ID, 10),
			"creator": hexAddr(token.Creator),
			"uri":     token.URI,
		},
	}
}

// TokenTransferredEvent returns the structured event payload for an ownership move.
func TokenTransferredEvent(id uint64, from, to [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeTokenTransferred,
		Attributes: map[string]string{
			"id":   strconv.FormatUint(id, 10),
			"from": hexAddr(from),
			"to":   hexAddr(to),
		},
	}
}

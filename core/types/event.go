package types

// Event is the structured record emitted by the native engines whenever a
// state transition completes. Type identifies the engine and action
// (for example "market.sold") and Attributes carries the string-encoded
// payload for subscribers.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attribute returns the value stored under key, or the empty string when
// the attribute is absent.
func (e *Event) Attribute(key string) string {
	if e == nil || e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

// Clone returns a deep copy so callers can hand events out without
// sharing the attribute map.
func (e *Event) Clone() Event {
	if e == nil {
		return Event{}
	}
	out := Event{Type: e.Type}
	if len(e.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

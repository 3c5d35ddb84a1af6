package state

import (
	"curio/native/assets"
)

type storedToken struct {
	ID        uint64
	Creator   [20]byte
	Owner     [20]byte
	URI       string
	CreatedAt uint64
}

// TokenGet loads the token record for the id.
func (m *Manager) TokenGet(id uint64) (*assets.Token, bool, error) {
	var stored storedToken
	ok, err := m.load(idKey(tokenPrefix, id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &assets.Token{
		ID:        stored.ID,
		Creator:   stored.Creator,
		Owner:     stored.Owner,
		URI:       stored.URI,
		CreatedAt: int64(stored.CreatedAt),
	}, true, nil
}

// TokenPut stores the token record keyed by its id.
func (m *Manager) TokenPut(token *assets.Token) error {
	if token == nil {
		return nil
	}
	stored := storedToken{
		ID:        token.ID,
		Creator:   token.Creator,
		Owner:     token.Owner,
		URI:       token.URI,
		CreatedAt: uint64(token.CreatedAt),
	}
	return m.store(idKey(tokenPrefix, token.ID), &stored)
}

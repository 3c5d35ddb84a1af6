package assets

// Token captures a unique registered asset. The creator is fixed at mint time
// and never changes; ownership moves through Transfer or BaseTransfer.
type Token struct {
	ID        uint64   `json:"id"`
	Creator   [20]byte `json:"creator"`
	Owner     [20]byte `json:"owner"`
	URI       string   `json:"uri"`
	CreatedAt int64    `json:"createdAt"`
}

// Clone returns a copy of the token record.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

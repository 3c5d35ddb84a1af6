package storage

// Overlay buffers writes on top of a backing database so an operation can
// either commit all of its mutations or discard them. Reads consult the
// pending set first.
type Overlay struct {
	base    Database
	pending map[string]*overlayEntry
}

type overlayEntry struct {
	value   []byte
	deleted bool
}

// NewOverlay creates an overlay buffering writes destined for base.
func NewOverlay(base Database) *Overlay {
	return &Overlay{base: base, pending: make(map[string]*overlayEntry)}
}

func (o *Overlay) Put(key []byte, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	o.pending[string(key)] = &overlayEntry{value: buf}
	return nil
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	if entry, ok := o.pending[string(key)]; ok {
		if entry.deleted {
			return nil, ErrNotFound
		}
		buf := make([]byte, len(entry.value))
		copy(buf, entry.value)
		return buf, nil
	}
	return o.base.Get(key)
}

func (o *Overlay) Delete(key []byte) error {
	o.pending[string(key)] = &overlayEntry{deleted: true}
	return nil
}

// Close satisfies the Database interface. The backing store stays open.
func (o *Overlay) Close() {}

// Commit flushes every pending write to the backing store and resets the
// overlay.
func (o *Overlay) Commit() error {
	for key, entry := range o.pending {
		if entry.deleted {
			if err := o.base.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := o.base.Put([]byte(key), entry.value); err != nil {
			return err
		}
	}
	o.pending = make(map[string]*overlayEntry)
	return nil
}

// Discard drops every pending write without touching the backing store.
func (o *Overlay) Discard() {
	o.pending = make(map[string]*overlayEntry)
}

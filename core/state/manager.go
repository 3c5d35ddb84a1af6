package state

import (
	"encoding/binary"
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"curio/storage"
)

// Manager provides typed, RLP-encoded access to the registry's keyed state.
// Keys are keccak256 hashes of namespaced prefixes so records from different
// domains can never collide. All reads return copies.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	tokenPrefix         = []byte("asset/token/")
	tokenCounterKey     = ethcrypto.Keccak256([]byte("asset/counter"))
	commissionPrefix    = []byte("royalty/commission/")
	offerBookPrefix     = []byte("royalty/offers/")
	listingPrefix       = []byte("market/listing/")
	balancePrefix       = []byte("fungible/balance/")
	allowancePrefix     = []byte("fungible/allowance/")
	nativeBalancePrefix = []byte("native/balance/")
)

func idKey(prefix []byte, id uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], id)
	return ethcrypto.Keccak256(buf)
}

func addrKey(prefix []byte, addrs ...[20]byte) []byte {
	buf := make([]byte, 0, len(prefix)+len(addrs)*21)
	buf = append(buf, prefix...)
	for _, addr := range addrs {
		buf = append(buf, addr[:]...)
		buf = append(buf, ':')
	}
	return ethcrypto.Keccak256(buf)
}

// load decodes the record at key into out, reporting whether it existed.
func (m *Manager) load(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) store(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// TokenCounterNext advances and returns the monotonic token id counter. The
// first minted token receives id 1.
func (m *Manager) TokenCounterNext() (uint64, error) {
	var current uint64
	if _, err := m.load(tokenCounterKey, &current); err != nil {
		return 0, err
	}
	next := current + 1
	if err := m.store(tokenCounterKey, next); err != nil {
		return 0, err
	}
	return next, nil
}

// NativeBalanceGet returns the native fund balance for the address, zero when
// absent.
func (m *Manager) NativeBalanceGet(addr [20]byte) (*big.Int, error) {
	balance := new(big.Int)
	if _, err := m.load(addrKey(nativeBalancePrefix, addr), balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// NativeBalancePut stores the native fund balance for the address.
func (m *Manager) NativeBalancePut(addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return m.store(addrKey(nativeBalancePrefix, addr), amount)
}

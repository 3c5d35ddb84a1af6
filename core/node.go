package core

import (
	"errors"
	"math/big"
	"sync"

	"curio/core/events"
	"curio/core/state"
	"curio/core/types"
	"curio/native/assets"
	nativecommon "curio/native/common"
	"curio/native/fungible"
	"curio/native/market"
	"curio/native/roles"
	"curio/native/royalty"
	"curio/storage"
)

var (
	// ErrAccessDenied is returned when the capability gate rejects a creation.
	ErrAccessDenied = errors.New("node: caller lacks required capability")
)

const recentEventCap = 256

// CommissionParams carries the royalty configuration supplied at creation.
// A zero GrowthBps falls back to the node's configured default.
type CommissionParams struct {
	Currency     [20]byte
	Base         *big.Int
	GrowthBps    uint32
	IntervalSecs uint64
}

// Node wires the engines to shared state and serializes every mutating
// operation behind one mutex, so each runs to completion as an indivisible
// unit. Mutations are buffered in a write overlay committed only on success;
// any error discards every side effect of the operation.
type Node struct {
	mu       sync.Mutex
	db       storage.Database
	overlay  *storage.Overlay
	stateMgr *state.Manager

	assets   *assets.Engine
	royalty  *royalty.Engine
	market   *market.Engine
	fungible *fungible.Engine

	provider         roles.CapabilityProvider
	admin            [20]byte
	defaultGrowthBps uint32

	emitter events.Emitter
	pending []events.Event
	recent  []types.Event
}

// NewNode constructs a node over the supplied database with default wiring.
func NewNode(db storage.Database) *Node {
	node := &Node{
		db:               db,
		defaultGrowthBps: royalty.BpsDenominator,
		emitter:          events.NoopEmitter{},
	}
	node.overlay = storage.NewOverlay(db)
	node.stateMgr = state.NewManager(node.overlay)

	vault := nativecommon.ModuleAddress("vault")

	node.fungible = fungible.NewEngine()
	node.fungible.SetState(node.stateMgr)

	node.assets = assets.NewEngine()
	node.assets.SetState(node.stateMgr)
	node.assets.SetEmitter(node)

	node.royalty = royalty.NewEngine()
	node.royalty.SetState(node.stateMgr)
	node.royalty.SetLedger(node.fungible)
	node.royalty.SetAssets(node.assets)
	node.royalty.SetVault(vault)
	node.royalty.SetEmitter(node)

	node.market = market.NewEngine()
	node.market.SetState(node.stateMgr)
	node.market.SetAssets(node.assets)
	node.market.SetLedger(node.fungible)
	node.market.SetVault(vault)
	node.market.SetEmitter(node)

	node.assets.SetTransferHook(node.royalty)
	return node
}

// SetCapabilityProvider configures the access gate consulted at creation.
// Passing nil restores the always-allow default.
func (n *Node) SetCapabilityProvider(provider roles.CapabilityProvider) {
	n.provider = provider
}

// SetAdmin configures the administrator address for sweep operations.
func (n *Node) SetAdmin(admin [20]byte) {
	n.admin = admin
	n.market.SetAdmin(admin)
}

// SetDefaultGrowthBps configures the growth multiplier applied when creation
// parameters leave it unset.
func (n *Node) SetDefaultGrowthBps(bps uint32) {
	if bps == 0 {
		bps = royalty.BpsDenominator
	}
	n.defaultGrowthBps = bps
}

// SetEmitter configures the downstream event sink. Events are always also
// retained in the in-memory recent buffer.
func (n *Node) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	n.emitter = emitter
}

// SetNowFunc overrides the time source of every engine, for tests.
func (n *Node) SetNowFunc(now func() int64) {
	n.assets.SetNowFunc(now)
	n.royalty.SetNowFunc(now)
	n.market.SetNowFunc(now)
}

// SetPauses configures the administrative pause view for all engines.
func (n *Node) SetPauses(p nativecommon.PauseView) {
	n.assets.SetPauses(p)
	n.market.SetPauses(p)
}

// Vault returns the module escrow address purchase approvals must target.
func (n *Node) Vault() [20]byte { return n.market.Vault() }

// Emit implements events.Emitter. Engine events are held back until the
// enclosing operation commits; a failed operation must not leak events any
// more than it may leak state.
func (n *Node) Emit(evt events.Event) {
	n.pending = append(n.pending, evt)
}

func (n *Node) flushEvents() {
	for _, evt := range n.pending {
		n.recent = append(n.recent, *eventPayload(evt))
		n.emitter.Emit(evt)
	}
	if len(n.recent) > recentEventCap {
		n.recent = n.recent[len(n.recent)-recentEventCap:]
	}
	n.pending = nil
}

func eventPayload(evt events.Event) *types.Event {
	type payloader interface {
		Event() *types.Event
	}
	if p, ok := evt.(payloader); ok {
		if raw := p.Event(); raw != nil {
			return raw
		}
	}
	return &types.Event{Type: evt.EventType()}
}

// RecentEvents returns a copy of the buffered events, newest last.
func (n *Node) RecentEvents() []types.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]types.Event, len(n.recent))
	for i := range n.recent {
		out[i] = n.recent[i].Clone()
	}
	return out
}

// withCommit runs fn against the overlay and commits on success. On any
// error the overlay is discarded, leaving zero retained side effects.
func (n *Node) withCommit(fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := fn(); err != nil {
		n.overlay.Discard()
		n.pending = nil
		return err
	}
	if err := n.overlay.Commit(); err != nil {
		n.overlay.Discard()
		n.pending = nil
		return err
	}
	n.flushEvents()
	return nil
}

// CreateAsset mints a token and initializes its commission record. The
// caller must hold the asset creation capability when a provider is
// configured.
func (n *Node) CreateAsset(caller [20]byte, uri string, params CommissionParams) (*assets.Token, *royalty.CommissionRecord, error) {
	var token *assets.Token
	var rec *royalty.CommissionRecord
	err := n.withCommit(func() error {
		if !roles.HasCapability(n.provider, caller, roles.CapabilityAssetCreate) {
			return ErrAccessDenied
		}
		growth := params.GrowthBps
		if growth == 0 {
			growth = n.defaultGrowthBps
		}
		var err error
		token, err = n.assets.Mint(caller, uri)
		if err != nil {
			return err
		}
		rec, err = n.royalty.InitCommission(token.ID, params.Currency, params.Base, growth, params.IntervalSecs)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return token, rec, nil
}

// GetCommission returns the currency and owed commission for the token at
// the current time.
func (n *Node) GetCommission(id uint64) ([20]byte, *big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var zero [20]byte
	exists, err := n.assets.Exists(id)
	if err != nil {
		return zero, nil, err
	}
	if !exists {
		return zero, nil, assets.ErrTokenNotFound
	}
	return n.royalty.Commission(id)
}

// ListToken publishes a sale listing for the token.
func (n *Node) ListToken(caller [20]byte, id uint64, amount *big.Int, currency [20]byte) (*market.Listing, error) {
	var listing *market.Listing
	err := n.withCommit(func() error {
		var err error
		listing, err = n.market.List(caller, id, amount, currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// UnlistToken withdraws the token's sale listing.
func (n *Node) UnlistToken(caller [20]byte, id uint64) error {
	return n.withCommit(func() error {
		return n.market.Unlist(caller, id)
	})
}

// BuyWithNative purchases a token listed for native funds, supplying value
// from the caller's native balance.
func (n *Node) BuyWithNative(caller [20]byte, id uint64, value *big.Int) error {
	return n.withCommit(func() error {
		return n.market.BuyWithNative(caller, id, value)
	})
}

// BuyWithCurrency purchases a token listed for a fungible currency.
func (n *Node) BuyWithCurrency(caller [20]byte, id uint64) error {
	return n.withCommit(func() error {
		return n.market.BuyWithCurrency(caller, id)
	})
}

// RegisterOffer records, updates or withdraws the caller's commission offer
// for an existing token.
func (n *Node) RegisterOffer(caller [20]byte, id uint64, amount *big.Int) error {
	return n.withCommit(func() error {
		exists, err := n.assets.Exists(id)
		if err != nil {
			return err
		}
		if !exists {
			return assets.ErrTokenNotFound
		}
		return n.royalty.RegisterOffer(id, caller, amount)
	})
}

// SweepStrayFunds moves stranded escrow funds to the administrator.
func (n *Node) SweepStrayFunds(caller [20]byte, currency [20]byte) (*big.Int, error) {
	var swept *big.Int
	err := n.withCommit(func() error {
		var err error
		swept, err = n.market.SweepStrayFunds(caller, currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return swept, nil
}

// Token returns the stored token record.
func (n *Node) Token(id uint64) (*assets.Token, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.assets.Token(id)
}

// OwnerOf returns the current holder of the token.
func (n *Node) OwnerOf(id uint64) ([20]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.assets.OwnerOf(id)
}

// SetMetadataURI updates a token's metadata pointer, owner-only.
func (n *Node) SetMetadataURI(caller [20]byte, id uint64, uri string) error {
	return n.withCommit(func() error {
		return n.assets.SetMetadataURI(caller, id, uri)
	})
}

// Listing returns the token's sale listing, if any.
func (n *Node) Listing(id uint64) (*market.Listing, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.market.Listing(id)
}

// Offers returns the token's offer book in settlement order.
func (n *Node) Offers(id uint64) ([]royalty.OfferEntry, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.royalty.Offers(id)
}

// Approve grants the spender an allowance from the caller in the currency.
func (n *Node) Approve(caller [20]byte, currency, spender [20]byte, amount *big.Int) error {
	return n.withCommit(func() error {
		return n.fungible.Approve(currency, caller, spender, amount)
	})
}

// BalanceOf returns the caller-visible balance in the currency.
func (n *Node) BalanceOf(currency, addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fungible.BalanceOf(currency, addr)
}

// NativeBalanceOf returns the native fund balance of the address.
func (n *Node) NativeBalanceOf(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fungible.NativeBalanceOf(addr)
}

// MintCurrency issues fungible units, admin-only.
func (n *Node) MintCurrency(caller [20]byte, currency, to [20]byte, amount *big.Int) error {
	return n.withCommit(func() error {
		if isZeroAddress(n.admin) || caller != n.admin {
			return market.ErrNotAdmin
		}
		return n.fungible.Mint(currency, to, amount)
	})
}

// MintNative issues native funds, admin-only.
func (n *Node) MintNative(caller [20]byte, to [20]byte, amount *big.Int) error {
	return n.withCommit(func() error {
		if isZeroAddress(n.admin) || caller != n.admin {
			return market.ErrNotAdmin
		}
		return n.fungible.NativeMint(to, amount)
	})
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

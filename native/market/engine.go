package market

import (
	"fmt"
	"math/big"
	"time"

	"curio/core/events"
	"curio/core/types"
	nativecommon "curio/native/common"
)

const marketModuleName = "market"

type engineState interface {
	ListingGet(tokenID uint64) (*Listing, bool, error)
	ListingPut(listing *Listing) error
	ListingDelete(tokenID uint64) error
}

// AssetRegistry is the ownership collaborator. Transfer runs commission
// settlement before the move takes effect.
type AssetRegistry interface {
	OwnerOf(id uint64) ([20]byte, error)
	Exists(id uint64) (bool, error)
	Transfer(from, to [20]byte, id uint64) error
}

// FundLedger moves native funds and fungible currency on behalf of the
// market. Outward movements may execute arbitrary recipient code, which is
// why every purchase runs under the re-entrancy guard.
type FundLedger interface {
	NativeTransfer(from, to [20]byte, amount *big.Int) error
	NativeBalanceOf(addr [20]byte) (*big.Int, error)
	BalanceOf(currency, addr [20]byte) (*big.Int, error)
	Allowance(currency, owner, spender [20]byte) (*big.Int, error)
	Transfer(currency, from, to [20]byte, amount *big.Int) error
	TransferFrom(currency, spender, from, to [20]byte, amount *big.Int) error
}

// Engine owns sale listings and executes the escrowed purchase flows.
type Engine struct {
	state   engineState
	assets  AssetRegistry
	ledger  FundLedger
	emitter events.Emitter
	nowFn   func() int64
	pauses  nativecommon.PauseView
	vault   [20]byte
	admin   [20]byte
	locked  bool
}

// NewEngine constructs a market engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAssets configures the asset registry collaborator.
func (e *Engine) SetAssets(assets AssetRegistry) { e.assets = assets }

// SetLedger configures the fund movement collaborator.
func (e *Engine) SetLedger(ledger FundLedger) { e.ledger = ledger }

// SetVault configures the escrow account sale funds pass through.
func (e *Engine) SetVault(vault [20]byte) { e.vault = vault }

// Vault returns the escrow account address.
func (e *Engine) Vault() [20]byte { return e.vault }

// SetAdmin configures the administrator allowed to sweep stray funds.
func (e *Engine) SetAdmin(admin [20]byte) { e.admin = admin }

func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

// acquire takes the purchase guard. The returned release must run on every
// exit path; callers defer it immediately.
func (e *Engine) acquire() (func(), error) {
	if e.locked {
		return nil, ErrReentrantCall
	}
	e.locked = true
	return func() { e.locked = false }, nil
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.assets == nil {
		return ErrNilAssets
	}
	if e.ledger == nil {
		return ErrNilLedger
	}
	return nil
}

// List publishes a sale at the given amount. A zero currency address lists
// for native funds. Relisting overwrites any prior listing state.
func (e *Engine) List(caller [20]byte, tokenID uint64, amount *big.Int, currency [20]byte) (*Listing, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	owner, err := e.assets.OwnerOf(tokenID)
	if err != nil {
		return nil, err
	}
	if owner != caller {
		return nil, ErrNotOwner
	}
	listing := &Listing{
		TokenID:  tokenID,
		Kind:     ListingNative,
		Amount:   new(big.Int).Set(amount),
		Currency: currency,
		ListedAt: e.now(),
	}
	if !isZeroAddress(currency) {
		listing.Kind = ListingCurrency
	}
	if err := e.state.ListingPut(listing); err != nil {
		return nil, err
	}
	e.emit(ListedEvent(listing))
	return listing.Clone(), nil
}

// Unlist withdraws the sale regardless of the current listing state.
func (e *Engine) Unlist(caller [20]byte, tokenID uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	owner, err := e.assets.OwnerOf(tokenID)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotOwner
	}
	if err := e.state.ListingDelete(tokenID); err != nil {
		return err
	}
	e.emit(UnlistedEvent(tokenID, caller))
	return nil
}

// Listing returns the stored listing, if any.
func (e *Engine) Listing(tokenID uint64) (*Listing, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	listing, ok, err := e.state.ListingGet(tokenID)
	if err != nil || !ok {
		return nil, ok, err
	}
	return listing.Clone(), true, nil
}

// BuyWithNative purchases a token listed for native funds. The supplied value
// must cover the listed amount; any excess is refunded to the caller before
// the asset moves. The whole call runs under the purchase guard so a
// recipient of the refund or payout cannot re-enter and duplicate the sale.
func (e *Engine) BuyWithNative(caller [20]byte, tokenID uint64, value *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	listing, ok, err := e.state.ListingGet(tokenID)
	if err != nil {
		return err
	}
	if !ok || listing.Kind != ListingNative {
		return ErrInvalidListingState
	}
	if value == nil || value.Cmp(listing.Amount) < 0 {
		return ErrInsufficientFunds
	}
	balance, err := e.ledger.NativeBalanceOf(caller)
	if err != nil {
		return err
	}
	if balance.Cmp(value) < 0 {
		return ErrInsufficientFunds
	}
	seller, err := e.assets.OwnerOf(tokenID)
	if err != nil {
		return err
	}
	if err := e.ledger.NativeTransfer(caller, e.vault, value); err != nil {
		return fmt.Errorf("%w: escrow deposit: %v", ErrFundMovementFailed, err)
	}
	excess := new(big.Int).Sub(value, listing.Amount)
	if excess.Sign() > 0 {
		if err := e.ledger.NativeTransfer(e.vault, caller, excess); err != nil {
			return fmt.Errorf("%w: excess refund: %v", ErrFundMovementFailed, err)
		}
	}
	if err := e.assets.Transfer(seller, caller, tokenID); err != nil {
		return err
	}
	if err := e.ledger.NativeTransfer(e.vault, seller, listing.Amount); err != nil {
		return fmt.Errorf("%w: seller payout: %v", ErrFundMovementFailed, err)
	}
	if err := e.state.ListingDelete(tokenID); err != nil {
		return err
	}
	e.emit(SoldEvent(listing, seller, caller))
	return nil
}

// BuyWithCurrency purchases a token listed for a fungible currency. The
// listed amount is pulled from the caller under its prior approval, the
// asset moves (settling commission), and the pulled amount is forwarded to
// the seller.
func (e *Engine) BuyWithCurrency(caller [20]byte, tokenID uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	listing, ok, err := e.state.ListingGet(tokenID)
	if err != nil {
		return err
	}
	if !ok || listing.Kind != ListingCurrency {
		return ErrInvalidListingState
	}
	allowance, err := e.ledger.Allowance(listing.Currency, caller, e.vault)
	if err != nil {
		return err
	}
	balance, err := e.ledger.BalanceOf(listing.Currency, caller)
	if err != nil {
		return err
	}
	if allowance.Cmp(listing.Amount) < 0 || balance.Cmp(listing.Amount) < 0 {
		return ErrInsufficientFunds
	}
	seller, err := e.assets.OwnerOf(tokenID)
	if err != nil {
		return err
	}
	if err := e.ledger.TransferFrom(listing.Currency, e.vault, caller, e.vault, listing.Amount); err != nil {
		return fmt.Errorf("%w: escrow pull: %v", ErrFundMovementFailed, err)
	}
	if err := e.assets.Transfer(seller, caller, tokenID); err != nil {
		return err
	}
	if err := e.ledger.Transfer(listing.Currency, e.vault, seller, listing.Amount); err != nil {
		return fmt.Errorf("%w: seller payout: %v", ErrFundMovementFailed, err)
	}
	if err := e.state.ListingDelete(tokenID); err != nil {
		return err
	}
	e.emit(SoldEvent(listing, seller, caller))
	return nil
}

// SweepStrayFunds moves any balance stranded in the escrow account to the
// administrator. A zero currency address sweeps native funds.
func (e *Engine) SweepStrayFunds(caller [20]byte, currency [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if isZeroAddress(e.admin) || caller != e.admin {
		return nil, ErrNotAdmin
	}
	var balance *big.Int
	var err error
	if isZeroAddress(currency) {
		balance, err = e.ledger.NativeBalanceOf(e.vault)
	} else {
		balance, err = e.ledger.BalanceOf(currency, e.vault)
	}
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if isZeroAddress(currency) {
		err = e.ledger.NativeTransfer(e.vault, e.admin, balance)
	} else {
		err = e.ledger.Transfer(currency, e.vault, e.admin, balance)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: sweep: %v", ErrFundMovementFailed, err)
	}
	e.emit(SweepEvent(currency, e.admin, balance))
	return new(big.Int).Set(balance), nil
}

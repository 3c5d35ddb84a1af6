package royalty

import (
	"fmt"
	"math/big"
	"time"

	"curio/core/events"
	"curio/core/types"
)

type engineState interface {
	CommissionGet(tokenID uint64) (*CommissionRecord, bool, error)
	CommissionPut(rec *CommissionRecord) error
	OfferBookGet(tokenID uint64) (*OfferBook, error)
	OfferBookPut(tokenID uint64, book *OfferBook) error
}

// CurrencyLedger is the fungible-currency collaborator consulted and driven
// during settlement. Implementations may execute arbitrary code on transfer,
// so the engine must never rely on state read before a ledger call staying
// valid afterwards.
type CurrencyLedger interface {
	BalanceOf(currency, addr [20]byte) (*big.Int, error)
	Allowance(currency, owner, spender [20]byte) (*big.Int, error)
	Transfer(currency, from, to [20]byte, amount *big.Int) error
	TransferFrom(currency, spender, from, to [20]byte, amount *big.Int) error
}

// AssetInfo resolves token creators. Satisfied by the asset engine.
type AssetInfo interface {
	CreatorOf(id uint64) ([20]byte, error)
}

// Engine owns commission records and offer books and performs multi-party
// commission settlement ahead of ownership transfers.
type Engine struct {
	state   engineState
	ledger  CurrencyLedger
	assets  AssetInfo
	emitter events.Emitter
	nowFn   func() int64
	vault   [20]byte
}

// NewEngine constructs a royalty engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the fungible currency collaborator.
func (e *Engine) SetLedger(ledger CurrencyLedger) { e.ledger = ledger }

// SetAssets configures the asset registry used for creator lookups.
func (e *Engine) SetAssets(assets AssetInfo) { e.assets = assets }

// SetVault configures the pooling account commission passes through. Payers
// grant their spending approval to this address.
func (e *Engine) SetVault(vault [20]byte) { e.vault = vault }

// Vault returns the pooling account address.
func (e *Engine) Vault() [20]byte { return e.vault }

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

// InitCommission stores the commission parameters for a freshly minted token.
// Parameters are validated here because no later mutation exists: a zero
// interval combined with a growing multiplier would make the period
// computation degenerate at evaluation time.
func (e *Engine) InitCommission(tokenID uint64, currency [20]byte, base *big.Int, growthBps uint32, intervalSecs uint64) (*CommissionRecord, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if isZeroAddress(currency) {
		return nil, fmt.Errorf("%w: currency required", ErrInvalidConfig)
	}
	if base == nil || base.Sign() < 0 {
		return nil, fmt.Errorf("%w: base amount must not be negative", ErrInvalidConfig)
	}
	if intervalSecs == 0 && growthBps != BpsDenominator {
		return nil, fmt.Errorf("%w: zero interval with growth multiplier", ErrInvalidConfig)
	}
	if existing, ok, err := e.state.CommissionGet(tokenID); err != nil {
		return nil, err
	} else if ok && existing != nil {
		return nil, ErrCommissionExists
	}
	rec := &CommissionRecord{
		TokenID:      tokenID,
		Currency:     currency,
		BaseAmount:   new(big.Int).Set(base),
		GrowthBps:    growthBps,
		IntervalSecs: intervalSecs,
		CreatedAt:    e.now(),
	}
	if err := e.state.CommissionPut(rec); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Commission returns the currency and amount owed for the token at the
// current time without mutating state.
func (e *Engine) Commission(tokenID uint64) ([20]byte, *big.Int, error) {
	var zero [20]byte
	if e == nil || e.state == nil {
		return zero, nil, ErrNilState
	}
	rec, ok, err := e.state.CommissionGet(tokenID)
	if err != nil {
		return zero, nil, err
	}
	if !ok {
		return zero, nil, ErrCommissionNotFound
	}
	return rec.Currency, Accrue(rec, e.now()), nil
}

// RegisterOffer records, overwrites or withdraws a payer's authorization for
// the token. A zero amount withdraws; withdrawing an absent entry is a no-op.
// Any address may register for any token regardless of ownership.
func (e *Engine) RegisterOffer(tokenID uint64, payer [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	book, err := e.state.OfferBookGet(tokenID)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() == 0 {
		if !book.Has(payer) {
			return nil
		}
		book.Remove(payer)
		if err := e.state.OfferBookPut(tokenID, book); err != nil {
			return err
		}
		e.emit(OfferRemovedEvent(tokenID, payer))
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("royalty: offer amount must not be negative")
	}
	book.Set(payer, amount)
	if err := e.state.OfferBookPut(tokenID, book); err != nil {
		return err
	}
	e.emit(OfferRegisteredEvent(tokenID, payer, amount))
	return nil
}

// Offers returns the token's offer book in settlement order.
func (e *Engine) Offers(tokenID uint64) ([]OfferEntry, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	book, err := e.state.OfferBookGet(tokenID)
	if err != nil {
		return nil, err
	}
	return book.Entries(), nil
}

// BeforeTransfer makes the engine usable as the asset registry transfer
// hook: every commission-bearing ownership move settles first.
func (e *Engine) BeforeTransfer(id uint64, from, to [20]byte) error {
	return e.Settle(id, from)
}

// contribution is one planned draw from a payer, fixed during the
// pre-validation pass.
type contribution struct {
	payer   [20]byte
	amount  *big.Int
	drained bool
}

// Settle collects the owed commission from the owner and the registered
// offerers and pays it to the creator in one movement. Candidate order is
// strict: the owner first, and only if it holds an offer, then the remaining
// offerers in insertion order. Each payer is either skipped, fully drained
// (and deregistered before its funds move), or left untouched. If the total
// available funding falls short nothing moves at all.
func (e *Engine) Settle(tokenID uint64, owner [20]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.ledger == nil {
		return ErrNilLedger
	}
	rec, ok, err := e.state.CommissionGet(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	owed := Accrue(rec, e.now())
	if owed.Sign() == 0 {
		return nil
	}
	var creator [20]byte
	if e.assets != nil {
		creator, err = e.assets.CreatorOf(tokenID)
		if err != nil {
			return err
		}
	}
	if isZeroAddress(creator) {
		return nil
	}
	book, err := e.state.OfferBookGet(tokenID)
	if err != nil {
		return err
	}

	plan, err := e.planContributions(rec.Currency, owner, book, owed)
	if err != nil {
		return err
	}

	for _, c := range plan {
		if c.drained {
			// Deregister before the payer's funds move so a re-entrant
			// call cannot reuse the stale authorization.
			book.Remove(c.payer)
			if err := e.state.OfferBookPut(tokenID, book); err != nil {
				return err
			}
		}
		if err := e.ledger.TransferFrom(rec.Currency, e.vault, c.payer, e.vault, c.amount); err != nil {
			return fmt.Errorf("%w: pull from payer: %v", ErrFundMovementFailed, err)
		}
		if c.drained {
			e.emit(OfferRemovedEvent(tokenID, c.payer))
		}
	}
	if err := e.ledger.Transfer(rec.Currency, e.vault, creator, owed); err != nil {
		return fmt.Errorf("%w: creator payout: %v", ErrFundMovementFailed, err)
	}
	e.emit(CommissionSettledEvent(tokenID, creator, rec.Currency, owed, len(plan)))
	return nil
}

// planContributions runs the pre-validation pass over the ordered candidates
// and returns the exact draws that cover the owed amount, or
// ErrCommissionUnsettled when the candidates cannot cover it.
func (e *Engine) planContributions(currency [20]byte, owner [20]byte, book *OfferBook, owed *big.Int) ([]contribution, error) {
	remaining := new(big.Int).Set(owed)
	plan := make([]contribution, 0, book.Len())

	candidates := make([][20]byte, 0, book.Len())
	if book.Has(owner) {
		candidates = append(candidates, owner)
	}
	for _, entry := range book.Entries() {
		if entry.Payer == owner {
			continue
		}
		candidates = append(candidates, entry.Payer)
	}

	for _, payer := range candidates {
		if remaining.Sign() == 0 {
			break
		}
		authorized, ok := book.Amount(payer)
		if !ok {
			continue
		}
		available, err := e.liveFunds(currency, payer)
		if err != nil {
			return nil, err
		}
		amount := minBig(authorized, available, remaining)
		if amount.Sign() == 0 {
			continue
		}
		plan = append(plan, contribution{
			payer:   payer,
			amount:  amount,
			drained: amount.Cmp(authorized) == 0,
		})
		remaining.Sub(remaining, amount)
	}
	if remaining.Sign() > 0 {
		return nil, ErrCommissionUnsettled
	}
	return plan, nil
}

// liveFunds returns what the payer can actually contribute right now: the
// smaller of its balance and its approval towards the vault.
func (e *Engine) liveFunds(currency, payer [20]byte) (*big.Int, error) {
	balance, err := e.ledger.BalanceOf(currency, payer)
	if err != nil {
		return nil, err
	}
	allowance, err := e.ledger.Allowance(currency, payer, e.vault)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(allowance) < 0 {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int).Set(allowance), nil
}

func minBig(values ...*big.Int) *big.Int {
	out := new(big.Int).Set(values[0])
	for _, v := range values[1:] {
		if v.Cmp(out) < 0 {
			out.Set(v)
		}
	}
	return out
}

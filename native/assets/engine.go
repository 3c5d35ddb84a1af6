package assets

import (
	"errors"
	"strings"
	"time"

	"curio/core/events"
	"curio/core/types"
	nativecommon "curio/native/common"
)

var (
	errNilState      = errors.New("asset engine: state not configured")
	ErrTokenNotFound = errors.New("asset engine: token not found")
	ErrNotOwner      = errors.New("asset engine: caller does not own token")
	errZeroRecipient = errors.New("asset engine: recipient required")
)

const assetModuleName = "assets"

type engineState interface {
	TokenGet(id uint64) (*Token, bool, error)
	TokenPut(token *Token) error
	TokenCounterNext() (uint64, error)
}

// TransferHook runs before an ownership move takes effect. A non-nil error
// aborts the transfer.
type TransferHook interface {
	BeforeTransfer(id uint64, from, to [20]byte) error
}

// Engine owns the token records and the monotonic id counter.
type Engine struct {
	state   engineState
	emitter events.Emitter
	hook    TransferHook
	nowFn   func() int64
	pauses  nativecommon.PauseView
}

// NewEngine constructs an asset engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetTransferHook installs the hook consulted before every Transfer.
func (e *Engine) SetTransferHook(hook TransferHook) { e.hook = hook }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

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

// Mint registers a new token owned and created by the supplied address and
// returns the stored record. The id counter advances as part of the same
// operation.
func (e *Engine) Mint(owner [20]byte, uri string) (*Token, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := nativecommon.Guard(e.pauses, assetModuleName); err != nil {
		return nil, err
	}
	if isZeroAddress(owner) {
		return nil, errZeroRecipient
	}
	id, err := e.state.TokenCounterNext()
	if err != nil {
		return nil, err
	}
	token := &Token{
		ID:        id,
		Creator:   owner,
		Owner:     owner,
		URI:       strings.TrimSpace(uri),
		CreatedAt: e.now(),
	}
	if err := e.state.TokenPut(token); err != nil {
		return nil, err
	}
	e.emit(TokenMintedEvent(token))
	return token.Clone(), nil
}

// Transfer moves ownership after running the configured transfer hook. The
// hook is the interposition point for commission settlement.
func (e *Engine) Transfer(from, to [20]byte, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, assetModuleName); err != nil {
		return err
	}
	if isZeroAddress(to) {
		return errZeroRecipient
	}
	token, ok, err := e.state.TokenGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotFound
	}
	if token.Owner != from {
		return ErrNotOwner
	}
	if e.hook != nil {
		if err := e.hook.BeforeTransfer(id, from, to); err != nil {
			return err
		}
	}
	return e.baseTransfer(token, from, to)
}

// BaseTransfer moves ownership without running the transfer hook.
func (e *Engine) BaseTransfer(from, to [20]byte, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if isZeroAddress(to) {
		return errZeroRecipient
	}
	token, ok, err := e.state.TokenGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotFound
	}
	if token.Owner != from {
		return ErrNotOwner
	}
	return e.baseTransfer(token, from, to)
}

func (e *Engine) baseTransfer(token *Token, from, to [20]byte) error {
	token.Owner = to
	if err := e.state.TokenPut(token); err != nil {
		return err
	}
	e.emit(TokenTransferredEvent(token.ID, from, to))
	return nil
}

// OwnerOf returns the current holder of the token.
func (e *Engine) OwnerOf(id uint64) ([20]byte, error) {
	var zero [20]byte
	if e == nil || e.state == nil {
		return zero, errNilState
	}
	token, ok, err := e.state.TokenGet(id)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrTokenNotFound
	}
	return token.Owner, nil
}

// CreatorOf returns the address recorded as originator of the token.
func (e *Engine) CreatorOf(id uint64) ([20]byte, error) {
	var zero [20]byte
	if e == nil || e.state == nil {
		return zero, errNilState
	}
	token, ok, err := e.state.TokenGet(id)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrTokenNotFound
	}
	return token.Creator, nil
}

// Exists reports whether the token id has been minted.
func (e *Engine) Exists(id uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	_, ok, err := e.state.TokenGet(id)
	return ok, err
}

// Token returns a copy of the stored record.
func (e *Engine) Token(id uint64) (*Token, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	token, ok, err := e.state.TokenGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	return token.Clone(), nil
}

// SetMetadataURI updates the token metadata pointer. Only the current owner
// may change it.
func (e *Engine) SetMetadataURI(caller [20]byte, id uint64, uri string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	token, ok, err := e.state.TokenGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotFound
	}
	if token.Owner != caller {
		return ErrNotOwner
	}
	token.URI = strings.TrimSpace(uri)
	return e.state.TokenPut(token)
}

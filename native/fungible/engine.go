package fungible

import (
	"errors"
	"math/big"
)

var (
	errNilState             = errors.New("fungible engine: state not configured")
	ErrInvalidAmount        = errors.New("fungible engine: amount must be positive")
	ErrInsufficientBalance  = errors.New("fungible engine: insufficient balance")
	ErrInsufficientApproval = errors.New("fungible engine: insufficient allowance")
	ErrZeroCurrency         = errors.New("fungible engine: currency address required")
)

type engineState interface {
	BalanceGet(currency, addr [20]byte) (*big.Int, error)
	BalancePut(currency, addr [20]byte, amount *big.Int) error
	AllowanceGet(currency, owner, spender [20]byte) (*big.Int, error)
	AllowancePut(currency, owner, spender [20]byte, amount *big.Int) error
	NativeBalanceGet(addr [20]byte) (*big.Int, error)
	NativeBalancePut(addr [20]byte, amount *big.Int) error
}

// Engine keeps the balance and allowance books for every configured fungible
// currency, plus the native fund balances. Each currency is identified by its
// ledger address; the books are independent per currency.
type Engine struct {
	state engineState
}

// NewEngine constructs a fungible ledger engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func positive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// BalanceOf returns the balance held by addr in the given currency.
func (e *Engine) BalanceOf(currency, addr [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.BalanceGet(currency, addr)
}

// Allowance returns the amount spender may pull from owner in the currency.
func (e *Engine) Allowance(currency, owner, spender [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.AllowanceGet(currency, owner, spender)
}

// Approve sets the allowance from owner towards spender. A zero amount clears
// the approval.
func (e *Engine) Approve(currency, owner, spender [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if isZeroAddress(currency) {
		return ErrZeroCurrency
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return e.state.AllowancePut(currency, owner, spender, new(big.Int).Set(amount))
}

// Mint credits freshly issued units to the recipient. Used for genesis and
// test funding; the registry itself never mints.
func (e *Engine) Mint(currency, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if isZeroAddress(currency) {
		return ErrZeroCurrency
	}
	if err := positive(amount); err != nil {
		return err
	}
	balance, err := e.state.BalanceGet(currency, to)
	if err != nil {
		return err
	}
	return e.state.BalancePut(currency, to, new(big.Int).Add(balance, amount))
}

// Transfer moves funds between two accounts in the given currency.
func (e *Engine) Transfer(currency, from, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if isZeroAddress(currency) {
		return ErrZeroCurrency
	}
	if err := positive(amount); err != nil {
		return err
	}
	return e.move(currency, from, to, amount)
}

// TransferFrom moves funds out of an account under a prior approval granted
// to the spender. The allowance is reduced by the transferred amount.
func (e *Engine) TransferFrom(currency, spender, from, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if isZeroAddress(currency) {
		return ErrZeroCurrency
	}
	if err := positive(amount); err != nil {
		return err
	}
	allowance, err := e.state.AllowanceGet(currency, from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientApproval
	}
	if err := e.move(currency, from, to, amount); err != nil {
		return err
	}
	return e.state.AllowancePut(currency, from, spender, new(big.Int).Sub(allowance, amount))
}

func (e *Engine) move(currency, from, to [20]byte, amount *big.Int) error {
	fromBalance, err := e.state.BalanceGet(currency, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := e.state.BalanceGet(currency, to)
	if err != nil {
		return err
	}
	if err := e.state.BalancePut(currency, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return e.state.BalancePut(currency, to, new(big.Int).Add(toBalance, amount))
}

// NativeBalanceOf returns the native fund balance of addr.
func (e *Engine) NativeBalanceOf(addr [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.NativeBalanceGet(addr)
}

// NativeMint credits native funds to the recipient.
func (e *Engine) NativeMint(to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := positive(amount); err != nil {
		return err
	}
	balance, err := e.state.NativeBalanceGet(to)
	if err != nil {
		return err
	}
	return e.state.NativeBalancePut(to, new(big.Int).Add(balance, amount))
}

// NativeTransfer moves native funds between two accounts.
func (e *Engine) NativeTransfer(from, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := positive(amount); err != nil {
		return err
	}
	fromBalance, err := e.state.NativeBalanceGet(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := e.state.NativeBalanceGet(to)
	if err != nil {
		return err
	}
	if err := e.state.NativeBalancePut(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return e.state.NativeBalancePut(to, new(big.Int).Add(toBalance, amount))
}

package market

import "errors"

var (
	ErrNilState            = errors.New("market: state not configured")
	ErrNilAssets           = errors.New("market: asset registry not configured")
	ErrNilLedger           = errors.New("market: fund ledger not configured")
	ErrNotOwner            = errors.New("market: caller is not the token owner")
	ErrInvalidListingState = errors.New("market: listing state does not match operation")
	ErrInvalidAmount       = errors.New("market: amount must be positive")
	ErrInsufficientFunds   = errors.New("market: supplied funds below required amount")
	ErrFundMovementFailed  = errors.New("market: fund movement failed")
	ErrReentrantCall       = errors.New("market: reentrant call rejected")
	ErrNotAdmin            = errors.New("market: caller is not the administrator")
)

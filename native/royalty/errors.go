package royalty

import "errors"

var (
	ErrNilState            = errors.New("royalty: state not configured")
	ErrNilLedger           = errors.New("royalty: currency ledger not configured")
	ErrCommissionNotFound  = errors.New("royalty: commission record not found")
	ErrCommissionExists    = errors.New("royalty: commission record already exists")
	ErrInvalidConfig       = errors.New("royalty: invalid commission configuration")
	ErrCommissionUnsettled = errors.New("royalty: available funding below owed commission")
	ErrFundMovementFailed  = errors.New("royalty: fund movement failed")
)

package royalty

import "math/big"

var bpsDenominator = big.NewInt(BpsDenominator)

// Accrue computes the commission owed at the supplied time. The growth is
// applied once per fully elapsed interval, truncating after every single
// period; compounding through repeated truncated multiplication is observable
// behaviour and must not be replaced by one closed-form exponentiation.
func Accrue(rec *CommissionRecord, now int64) *big.Int {
	if rec == nil || rec.BaseAmount == nil || rec.BaseAmount.Sign() == 0 {
		return big.NewInt(0)
	}
	amount := new(big.Int).Set(rec.BaseAmount)
	if rec.GrowthBps == BpsDenominator {
		return amount
	}
	if rec.IntervalSecs == 0 {
		// Rejected at creation; a stored record can never hit this.
		return amount
	}
	elapsed := now - rec.CreatedAt
	if elapsed <= 0 {
		return amount
	}
	periods := uint64(elapsed) / rec.IntervalSecs
	multiplier := big.NewInt(int64(rec.GrowthBps))
	for i := uint64(0); i < periods; i++ {
		amount.Mul(amount, multiplier)
		amount.Div(amount, bpsDenominator)
		if amount.Sign() == 0 {
			break
		}
	}
	return amount
}

package state

import "math/big"

// BalanceGet returns the balance of addr in the currency, zero when absent.
func (m *Manager) BalanceGet(currency, addr [20]byte) (*big.Int, error) {
	balance := new(big.Int)
	if _, err := m.load(addrKey(balancePrefix, currency, addr), balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// BalancePut stores the balance of addr in the currency.
func (m *Manager) BalancePut(currency, addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return m.store(addrKey(balancePrefix, currency, addr), amount)
}

// AllowanceGet returns the approval from owner towards spender in the
// currency, zero when absent.
func (m *Manager) AllowanceGet(currency, owner, spender [20]byte) (*big.Int, error) {
	allowance := new(big.Int)
	if _, err := m.load(addrKey(allowancePrefix, currency, owner, spender), allowance); err != nil {
		return nil, err
	}
	return allowance, nil
}

// AllowancePut stores the approval from owner towards spender. A zero amount
// clears the record.
func (m *Manager) AllowancePut(currency, owner, spender [20]byte, amount *big.Int) error {
	key := addrKey(allowancePrefix, currency, owner, spender)
	if amount == nil || amount.Sign() == 0 {
		return m.db.Delete(key)
	}
	return m.store(key, amount)
}

package enums

import "fmt"

// WalletTransactionType maps to the wallet_transaction_type enum in Postgres.
type WalletTransactionType string

const (
	WalletTransactionTypeEscrowIn  WalletTransactionType = "ESCROW_IN"
	WalletTransactionTypeEscrowOut WalletTransactionType = "ESCROW_OUT"
	WalletTransactionTypeRefund    WalletTransactionType = "REFUND"
	WalletTransactionTypeFee       WalletTransactionType = "FEE"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeEscrowIn,
	WalletTransactionTypeEscrowOut,
	WalletTransactionTypeRefund,
	WalletTransactionTypeFee,
}

// String implements fmt.Stringer.
func (t WalletTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsCredit reports whether the transaction adds funds to the holder's balance.
func (t WalletTransactionType) IsCredit() bool {
	return t == WalletTransactionTypeEscrowIn || t == WalletTransactionTypeRefund
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}

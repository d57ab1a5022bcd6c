package enums

import "fmt"

// TransactionKind maps to the transaction_kind_enum enum in Postgres.
//
// A transfer between two bases is recorded as two rows, TRANSFER_OUT at the
// source and TRANSFER_IN at the destination, sharing a transfer group id, so
// every row is attributable to exactly one base.
type TransactionKind string

const (
	TransactionKindPurchase    TransactionKind = "PURCHASE"
	TransactionKindTransferIn  TransactionKind = "TRANSFER_IN"
	TransactionKindTransferOut TransactionKind = "TRANSFER_OUT"
	TransactionKindAssignment  TransactionKind = "ASSIGNMENT"
	TransactionKindExpenditure TransactionKind = "EXPENDITURE"
)

var validTransactionKinds = []TransactionKind{
	TransactionKindPurchase,
	TransactionKindTransferIn,
	TransactionKindTransferOut,
	TransactionKindAssignment,
	TransactionKindExpenditure,
}

// String implements fmt.Stringer.
func (k TransactionKind) String() string {
	return string(k)
}

// IsValid reports whether the value matches the canonical transaction kind enum.
func (k TransactionKind) IsValid() bool {
	for _, candidate := range validTransactionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Sign returns the contribution of one unit of this kind to a base's stock:
// +1 for inbound kinds, -1 for outbound kinds.
func (k TransactionKind) Sign() int64 {
	switch k {
	case TransactionKindPurchase, TransactionKindTransferIn:
		return 1
	case TransactionKindTransferOut, TransactionKindAssignment, TransactionKindExpenditure:
		return -1
	}
	return 0
}

// Inbound reports whether the kind credits the base named on the record.
func (k TransactionKind) Inbound() bool {
	return k.Sign() > 0
}

// ParseTransactionKind converts raw input into a TransactionKind.
func ParseTransactionKind(value string) (TransactionKind, error) {
	for _, candidate := range validTransactionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction kind %q", value)
}

package domain

import (
	"time"
)

// TransactionType is the closed enumeration of ledger transaction types.
// Any other value on an input row is a data error and the row is excluded
// from aggregation.
type TransactionType string

const (
	TypePurchase   TransactionType = "purchase"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTransfer   TransactionType = "transfer"
	TypeDeposit    TransactionType = "deposit"
)

// TransactionTypes lists the valid types in a stable order.
var TransactionTypes = []TransactionType{
	TypePurchase,
	TypeWithdrawal,
	TypeTransfer,
	TypeDeposit,
}

// Valid reports whether t is one of the four enumerated types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypePurchase, TypeWithdrawal, TypeTransfer, TypeDeposit:
		return true
	}
	return false
}

// Customer is one row of the customer table. Only CustomerID is consumed
// by the aggregation core; the remaining fields are passthrough attributes
// carried for downstream consumers.
type Customer struct {
	CustomerID string    // unique, stable identifier
	SignupDate time.Time // passthrough
	Region     string    // passthrough
}

// Transaction is one immutable row of the transaction ledger.
type Transaction struct {
	TransactionID string          // unique
	CustomerID    string          // references exactly one Customer
	Timestamp     time.Time       // time of occurrence
	Amount        float64         // expected non-negative
	Type          TransactionType // one of the closed enumeration
}

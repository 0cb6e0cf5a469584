package features

import (
	"fmt"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

// RowErrorReason classifies why a ledger row was rejected.
type RowErrorReason string

const (
	ReasonUnknownType     RowErrorReason = "unknown_type"
	ReasonNegativeAmount  RowErrorReason = "negative_amount"
	ReasonUnknownCustomer RowErrorReason = "unknown_customer"
)

// RowError describes a single rejected ledger row. Rejected rows are
// excluded from aggregation but never abort the batch.
type RowError struct {
	TransactionID string
	CustomerID    string
	Reason        RowErrorReason
	Detail        string
}

func (e RowError) Error() string {
	return fmt.Sprintf("transaction %s: %s: %s", e.TransactionID, e.Reason, e.Detail)
}

// ErrorReport collects all rejected rows from one validation pass.
type ErrorReport struct {
	Rows []RowError
}

// Count returns the total number of rejected rows.
func (r *ErrorReport) Count() int {
	return len(r.Rows)
}

// CountByReason returns the number of rejected rows per reason.
func (r *ErrorReport) CountByReason() map[RowErrorReason]int {
	counts := make(map[RowErrorReason]int, 3)
	for _, row := range r.Rows {
		counts[row.Reason]++
	}
	return counts
}

func (r *ErrorReport) add(tx domain.Transaction, reason RowErrorReason, detail string) {
	r.Rows = append(r.Rows, RowError{
		TransactionID: tx.TransactionID,
		CustomerID:    tx.CustomerID,
		Reason:        reason,
		Detail:        detail,
	})
}

// ValidateLedger splits the raw ledger into rows usable for aggregation
// and an error report of rejected rows. A row is rejected when its type is
// outside the closed enumeration, its amount is negative, or its customer
// is not present in the customer set.
func ValidateLedger(customers []domain.Customer, txs []domain.Transaction) ([]domain.Transaction, *ErrorReport) {
	known := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		known[c.CustomerID] = struct{}{}
	}

	report := &ErrorReport{}
	valid := make([]domain.Transaction, 0, len(txs))

	for _, tx := range txs {
		switch {
		case !tx.Type.Valid():
			report.add(tx, ReasonUnknownType, fmt.Sprintf("type %q is not in the transaction type enumeration", tx.Type))
		case tx.Amount < 0:
			report.add(tx, ReasonNegativeAmount, fmt.Sprintf("amount %v is negative", tx.Amount))
		default:
			if _, ok := known[tx.CustomerID]; !ok {
				report.add(tx, ReasonUnknownCustomer, fmt.Sprintf("customer %q not found", tx.CustomerID))
				continue
			}
			valid = append(valid, tx)
		}
	}

	return valid, report
}

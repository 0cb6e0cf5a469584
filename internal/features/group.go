package features

import (
	"sort"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

// GroupByCustomer builds the per-customer transaction index over a flat
// ledger. The index is built once and reused by the aggregator and any
// parallel fan-out, avoiding repeated full-table scans.
//
// Each customer's transactions are ordered by timestamp, then transaction
// ID, so every downstream aggregate sees the same input order regardless
// of how the ledger was loaded.
func GroupByCustomer(txs []domain.Transaction) map[string][]domain.Transaction {
	byCustomer := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		byCustomer[tx.CustomerID] = append(byCustomer[tx.CustomerID], tx)
	}

	for _, list := range byCustomer {
		sort.Slice(list, func(i, j int) bool {
			if !list[i].Timestamp.Equal(list[j].Timestamp) {
				return list[i].Timestamp.Before(list[j].Timestamp)
			}
			return list[i].TransactionID < list[j].TransactionID
		})
	}

	return byCustomer
}

// MaxTimestamp returns the latest transaction timestamp in the ledger.
// It is the documented default reference date: unlike "now", it makes a
// batch result a pure function of its input. The second return value is
// false for an empty ledger.
func MaxTimestamp(txs []domain.Transaction) (time.Time, bool) {
	var max time.Time
	found := false
	for _, tx := range txs {
		if !found || tx.Timestamp.After(max) {
			max = tx.Timestamp
			found = true
		}
	}
	return max, found
}

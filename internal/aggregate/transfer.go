package aggregate

import (
	"github.com/chronofin/chronofin/internal/model"
)

// ApplyTransferLayout adjusts transfer pairs for display. Under the combine
// layout only the outgoing (negative) leg of each pair is retained; under
// the separate layout both legs pass through. Non-transfer rows are never
// touched.
func ApplyTransferLayout(rows []model.Transaction, layout model.TransferLayout) []model.Transaction {
	if layout != model.TransferCombine {
		return rows
	}

	out := make([]model.Transaction, 0, len(rows))
	for _, txn := range rows {
		if txn.IsTransfer() && txn.Amount.Sign() > 0 {
			continue
		}
		out = append(out, txn)
	}
	return out
}

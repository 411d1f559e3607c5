// Package ledger computes point-in-time balances from stored trades.
package ledger

import (
	"github.com/shopspring/decimal"

	"tradebook/internal/model"
)

// Balances folds a set of trades into net base-coin positions: a BUY adds
// the trade's amount to its base coin, a SELL subtracts it. Addition is
// commutative, so no ordering is required of the input. The result is
// empty (never nil) when no trades are given; quote coin and price play
// no role.
func Balances(trades []model.Trade) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(trades))
	for _, t := range trades {
		total := balances[t.BaseCoin]
		switch t.Operation {
		case model.OperationBuy:
			total = total.Add(t.Amount)
		case model.OperationSell:
			total = total.Sub(t.Amount)
		}
		balances[t.BaseCoin] = total
	}
	return balances
}

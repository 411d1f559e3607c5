// Package model defines the domain entities shared across the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade operations. Raw rows are case-insensitive; stored records always
// carry the uppercase form.
const (
	OperationBuy  = "BUY"
	OperationSell = "SELL"
)

// Trade is the canonical persisted trade record, normalized from one raw
// CSV row. The pair (UTCTime, Market) is the natural key: a later upsert
// with the same key fully replaces the stored record.
type Trade struct {
	// UTCTime is when the trade occurred, truncated to the whole minute
	// so finer-grained duplicates collapse onto the same key.
	UTCTime time.Time `gorm:"column:utc_time;primaryKey" json:"utc_time"`

	// Market is the trading pair in BASE/QUOTE form (e.g. "BTC/USDT").
	Market string `gorm:"column:market;primaryKey" json:"market"`

	// Operation is either OperationBuy or OperationSell.
	Operation string `gorm:"column:operation" json:"operation"`

	// Amount is the quantity of base coin bought or sold. Always > 0.
	Amount decimal.Decimal `gorm:"column:amount;type:numeric" json:"amount"`

	// Price is the quote-coin price per unit of base coin. Always > 0.
	Price decimal.Decimal `gorm:"column:price;type:numeric" json:"price"`

	// BaseCoin and QuoteCoin are derived from Market.
	BaseCoin  string `gorm:"column:base_coin" json:"base_coin"`
	QuoteCoin string `gorm:"column:quote_coin" json:"quote_coin"`

	// InsertedAt is when the record was last written to the database.
	InsertedAt time.Time `gorm:"column:inserted_at;autoUpdateTime" json:"inserted_at"`
}

func (Trade) TableName() string {
	return "trade"
}

// Package parser turns one raw CSV row into a validated Trade record.
// All functions are pure: no I/O, no shared state.
package parser

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradebook/internal/model"
)

// Column names as they appear in the upload's header row.
const (
	ColTime      = "UTC_Time"
	ColOperation = "Operation"
	ColMarket    = "Market"
	ColAmount    = "Buy/Sell Amount"
	ColPrice     = "Price"
)

// Rejection reasons. A row fails with exactly one of these; checks
// short-circuit in the order they are listed.
var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrNonPositiveNumber = errors.New("amount and price must be positive numbers")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidOperation  = errors.New("invalid operation type")
	ErrInvalidMarket     = errors.New("invalid market format")
)

// timeLayouts are the accepted time formats, in priority order.
// The first layout that parses wins; anything else is rejected.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"02-01-2006 15:04",
}

// ParseRow validates and normalizes a single raw row. On success the
// returned trade carries an uppercase operation and market, the decomposed
// coin pair, and a timestamp truncated to the whole minute.
func ParseRow(row map[string]string) (*model.Trade, error) {
	timeText := strings.TrimSpace(row[ColTime])
	opText := strings.TrimSpace(row[ColOperation])
	marketText := strings.TrimSpace(row[ColMarket])
	amountText := strings.TrimSpace(row[ColAmount])
	priceText := strings.TrimSpace(row[ColPrice])

	if timeText == "" || opText == "" || marketText == "" || amountText == "" || priceText == "" {
		return nil, ErrMissingFields
	}

	amount, err := parsePositiveDecimal(amountText)
	if err != nil {
		return nil, err
	}
	price, err := parsePositiveDecimal(priceText)
	if err != nil {
		return nil, err
	}

	ts, err := parseTime(timeText)
	if err != nil {
		return nil, err
	}

	operation := strings.ToUpper(opText)
	if operation != model.OperationBuy && operation != model.OperationSell {
		return nil, ErrInvalidOperation
	}

	baseCoin, quoteCoin, err := splitMarket(marketText)
	if err != nil {
		return nil, err
	}

	return &model.Trade{
		UTCTime:   ts,
		Operation: operation,
		Market:    baseCoin + "/" + quoteCoin,
		Amount:    amount,
		Price:     price,
		BaseCoin:  baseCoin,
		QuoteCoin: quoteCoin,
	}, nil
}

func parsePositiveDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveNumber
	}
	return d, nil
}

// parseTime matches the text against the accepted layouts in order.
// Go layout parsing is strict, so ambiguous or partial matches fail
// deterministically. The result is truncated to the minute: repeated
// timestamps at finer granularity collapse to the same natural key.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, ErrInvalidDateFormat
}

// splitMarket decomposes "BASE/QUOTE" into its uppercase coin parts.
// Exactly one separator with non-empty sides is required.
func splitMarket(s string) (base, quote string, err error) {
	if strings.Count(s, "/") != 1 {
		return "", "", ErrInvalidMarket
	}
	parts := strings.SplitN(s, "/", 2)
	if parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidMarket
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), nil
}

// Package ingest drives the row-by-row ingestion of raw trade data into
// the trade repository.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"tradebook/internal/model"
	"tradebook/internal/parser"
	"tradebook/internal/repository"
)

// ErrNoValidTrades is returned when the stream was read cleanly but not a
// single row survived validation. Distinct from a stream error.
var ErrNoValidTrades = errors.New("no valid trade data found")

// RowReader yields one column-split row per call and io.EOF at end of
// stream. Any other error is fatal to the whole pass.
type RowReader interface {
	Read() (map[string]string, error)
}

// Summary tallies one ingestion pass. It is threaded through the pass
// explicitly; there is no shared counter state.
type Summary struct {
	// Valid is the number of rows that passed validation.
	Valid int `json:"valid"`

	// Invalid is the number of rows rejected by validation.
	Invalid int `json:"invalid"`

	// PersistFailed is the number of accepted records whose upsert failed.
	// Those records are lost for this pass; the rest are unaffected.
	PersistFailed int `json:"persist_failed"`
}

// Ingestor validates rows and persists the accepted batch.
type Ingestor struct {
	repo   repository.TradeRepository
	logger *logrus.Logger
}

func NewIngestor(repo repository.TradeRepository, logger *logrus.Logger) *Ingestor {
	return &Ingestor{
		repo:   repo,
		logger: logger,
	}
}

// Run performs a single sequential pass over the row stream: each row is
// validated in order, rejections are logged and counted but never abort
// the pass. Once the stream is exhausted the accepted records are upserted
// one by one, in stream order, so that a duplicate natural key later in
// the stream wins. A per-record upsert failure is logged and counted
// without touching the remaining records.
//
// A read error from rows aborts the pass immediately; nothing accepted so
// far is persisted and nothing already persisted is rolled back.
func (in *Ingestor) Run(ctx context.Context, rows RowReader) (Summary, error) {
	var summary Summary
	var accepted []*model.Trade

	for {
		row, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("reading trade stream: %w", err)
		}

		trade, err := parser.ParseRow(row)
		if err != nil {
			summary.Invalid++
			in.logger.WithFields(logrus.Fields{
				"row":    row,
				"reason": err.Error(),
			}).Warn("Skipping invalid row")
			continue
		}

		accepted = append(accepted, trade)
		summary.Valid++
	}

	if summary.Valid == 0 {
		return summary, ErrNoValidTrades
	}

	for _, trade := range accepted {
		if err := in.repo.UpsertTrade(ctx, trade); err != nil {
			summary.PersistFailed++
			in.logger.WithError(err).WithFields(logrus.Fields{
				"utc_time": trade.UTCTime,
				"market":   trade.Market,
			}).Error("Failed to upsert trade")
		}
	}

	return summary, nil
}

package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradebook/internal/ingest"
	"tradebook/internal/ledger"
	"tradebook/internal/repository"
)

// TradesService ties the ingestion pipeline and the balance query to the
// trade repository.
type TradesService struct {
	repo     repository.TradeRepository
	ingestor *ingest.Ingestor
}

func NewTradesService(repo repository.TradeRepository, logger *logrus.Logger) *TradesService {
	return &TradesService{
		repo:     repo,
		ingestor: ingest.NewIngestor(repo, logger),
	}
}

// ImportTrades runs one ingestion pass over the row stream.
func (ts *TradesService) ImportTrades(ctx context.Context, rows ingest.RowReader) (ingest.Summary, error) {
	return ts.ingestor.Run(ctx, rows)
}

// BalancesBefore returns the net base-coin positions built from all trades
// strictly earlier than cutoff. A trade timestamped exactly at cutoff does
// not count. The result is empty, not an error, when nothing qualifies.
func (ts *TradesService) BalancesBefore(ctx context.Context, cutoff time.Time) (map[string]decimal.Decimal, error) {
	trades, err := ts.repo.TradesBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return ledger.Balances(trades), nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradebook/internal/model"
)

// TradeRepository is the storage gateway the ingestion and balance paths
// depend on. Implementations must provide atomic per-key upserts.
type TradeRepository interface {
	// UpsertTrade inserts the trade or fully replaces the record already
	// stored under the same (utc_time, market) natural key.
	UpsertTrade(ctx context.Context, trade *model.Trade) error

	// TradesBefore returns all trades with utc_time strictly earlier than
	// cutoff. No ordering is guaranteed.
	TradesBefore(ctx context.Context, cutoff time.Time) ([]model.Trade, error)
}

type gormTradeRepository struct {
	db *gorm.DB
}

func NewGormTradeRepository(db *gorm.DB) TradeRepository {
	return &gormTradeRepository{db: db}
}

func (r *gormTradeRepository) UpsertTrade(ctx context.Context, trade *model.Trade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "utc_time"}, {Name: "market"}},
			UpdateAll: true,
		}).
		Create(trade).Error
}

func (r *gormTradeRepository) TradesBefore(ctx context.Context, cutoff time.Time) ([]model.Trade, error) {
	var trades []model.Trade
	err := r.db.WithContext(ctx).
		Where("utc_time < ?", cutoff).
		Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

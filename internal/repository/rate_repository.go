package repository

import (
	"context"

	"rateguard/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const rateColumns = "pair, rate, source, caveat, spread, as_of, fetched_at"

type RateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRateRepository(db *pgxpool.Pool, logger *zap.Logger) *RateRepository {
	return &RateRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the latest quote for a pair; the ratesync sweep calls this
// once per pair per run.
func (r *RateRepository) Upsert(ctx context.Context, quote *models.RateQuote) error {
	query := squirrel.Insert("rates").
		Columns("pair", "rate", "source", "caveat", "spread", "as_of", "fetched_at").
		Values(quote.Pair, quote.Rate, quote.Source, quote.Caveat, quote.Spread, quote.AsOf, quote.FetchedAt).
		Suffix("ON CONFLICT (pair) DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, caveat = EXCLUDED.caveat, spread = EXCLUDED.spread, as_of = EXCLUDED.as_of, fetched_at = EXCLUDED.fetched_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// List returns the current ticker board, alphabetical by pair.
func (r *RateRepository) List(ctx context.Context) ([]*models.RateQuote, error) {
	query := squirrel.Select(rateColumns).
		From("rates").
		OrderBy("pair ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*models.RateQuote
	for rows.Next() {
		var quote models.RateQuote
		if err := rows.Scan(
			&quote.Pair, &quote.Rate, &quote.Source, &quote.Caveat,
			&quote.Spread, &quote.AsOf, &quote.FetchedAt,
		); err != nil {
			return nil, err
		}
		quotes = append(quotes, &quote)
	}

	return quotes, nil
}

package repository

import (
	"context"
	"encoding/json"

	"rateguard/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const quoteColumns = "id, organization_id, user_id, bank_name, currency_pair, original_amount, bank_rate, mid_market_rate, rate_source, rate_caveat, fees, markup_cost, total_fees, total_hidden_cost, spread_percentage, total_hidden_percentage, dispute_recommended, cannot_benchmark, status, notes, advisory, created_at, updated_at"

type QuoteRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewQuoteRepository(db *pgxpool.Pool, logger *zap.Logger) *QuoteRepository {
	return &QuoteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	fees, err := json.Marshal(quote.Fees)
	if err != nil {
		return err
	}

	query := squirrel.Insert("quotes").
		Columns("id", "organization_id", "user_id", "bank_name", "currency_pair",
			"original_amount", "bank_rate", "mid_market_rate", "rate_source", "rate_caveat", "fees",
			"markup_cost", "total_fees", "total_hidden_cost", "spread_percentage",
			"total_hidden_percentage", "dispute_recommended", "cannot_benchmark",
			"status", "notes", "advisory", "created_at", "updated_at").
		Values(quote.ID, quote.OrganizationID, quote.UserID, quote.BankName, quote.CurrencyPair,
			quote.OriginalAmount, quote.BankRate, quote.MidMarketRate, quote.RateSource, quote.RateCaveat, fees,
			quote.MarkupCost, quote.TotalFees, quote.TotalHiddenCost, quote.SpreadPercentage,
			quote.TotalHiddenPercentage, quote.DisputeRecommended, quote.CannotBenchmark,
			quote.Status, quote.Notes, quote.Advisory, quote.CreatedAt, quote.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	query := squirrel.Select(quoteColumns).
		From("quotes").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, sql, args...)
	return scanQuote(row)
}

func (r *QuoteRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Quote, error) {
	query := squirrel.Select(quoteColumns).
		From("quotes").
		Where(squirrel.Eq{"organization_id": orgID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var quotes []*models.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}

	return quotes, nil
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.QuoteStatus) error {
	query := squirrel.Update("quotes").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuoteRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	query := squirrel.Update("quotes").
		Set("notes", notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuoteRepository) UpdateAdvisory(ctx context.Context, id uuid.UUID, advisory string) error {
	query := squirrel.Update("quotes").
		Set("advisory", advisory).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*models.Quote, error) {
	var quote models.Quote
	var fees []byte

	err := row.Scan(
		&quote.ID, &quote.OrganizationID, &quote.UserID, &quote.BankName, &quote.CurrencyPair,
		&quote.OriginalAmount, &quote.BankRate, &quote.MidMarketRate, &quote.RateSource, &quote.RateCaveat, &fees,
		&quote.MarkupCost, &quote.TotalFees, &quote.TotalHiddenCost, &quote.SpreadPercentage,
		&quote.TotalHiddenPercentage, &quote.DisputeRecommended, &quote.CannotBenchmark,
		&quote.Status, &quote.Notes, &quote.Advisory, &quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(fees) > 0 {
		if err := json.Unmarshal(fees, &quote.Fees); err != nil {
			return nil, err
		}
	}

	return &quote, nil
}

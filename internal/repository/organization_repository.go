package repository

import (
	"context"

	"rateguard/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const organizationColumns = "id, name, admin_id, member_ids, plan, seat_cap, credit_balance, subscription_id, created_at, updated_at"

type OrganizationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewOrganizationRepository(db *pgxpool.Pool, logger *zap.Logger) *OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := squirrel.Insert("organizations").
		Columns("id", "name", "admin_id", "member_ids", "plan", "seat_cap", "credit_balance", "subscription_id", "created_at", "updated_at").
		Values(org.ID, org.Name, org.AdminID, org.MemberIDs, org.Plan, org.SeatCap, org.CreditBalance, org.SubscriptionID, org.CreatedAt, org.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := squirrel.Select(organizationColumns).
		From("organizations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var org models.Organization
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&org.ID, &org.Name, &org.AdminID, &org.MemberIDs, &org.Plan, &org.SeatCap,
		&org.CreditBalance, &org.SubscriptionID, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &org, nil
}

// UpdateMembers replaces the member list.
func (r *OrganizationRepository) UpdateMembers(ctx context.Context, id uuid.UUID, memberIDs []uuid.UUID) error {
	query := squirrel.Update("organizations").
		Set("member_ids", memberIDs).
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

// DecrementCredit spends one credit. The balance guard keeps it from going
// negative; the return value reports whether a credit was actually taken.
func (r *OrganizationRepository) DecrementCredit(ctx context.Context, id uuid.UUID) (bool, error) {
	query := squirrel.Update("organizations").
		Set("credit_balance", squirrel.Expr("credit_balance - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Gt{"credit_balance": 0}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// UpgradePlan flips the organization to a plan and records the subscription
// that paid for it.
func (r *OrganizationRepository) UpgradePlan(ctx context.Context, id uuid.UUID, plan models.Plan, seatCap int, subscriptionID string) error {
	query := squirrel.Update("organizations").
		Set("plan", plan).
		Set("seat_cap", seatCap).
		Set("subscription_id", subscriptionID).
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

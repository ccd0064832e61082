package repository

import (
	"context"

	"rateguard/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = "id, display_name, email, password, organization_id, country, tax_id, onboarding_seen, created_at, updated_at"

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := squirrel.Insert("users").
		Columns("id", "display_name", "email", "password", "organization_id", "country", "tax_id", "onboarding_seen", "created_at", "updated_at").
		Values(user.ID, user.DisplayName, user.Email, user.Password, user.OrganizationID, user.Country, user.TaxID, user.OnboardingSeen, user.CreatedAt, user.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := squirrel.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"email": email}).
		PlaceholderFormat(squirrel.Dollar)

	return r.scanOne(ctx, query)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := squirrel.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return r.scanOne(ctx, query)
}

func (r *UserRepository) scanOne(ctx context.Context, query squirrel.SelectBuilder) (*models.User, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.DisplayName, &user.Email, &user.Password, &user.OrganizationID,
		&user.Country, &user.TaxID, &user.OnboardingSeen, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile writes the onboarding-supplied fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, displayName, country, taxID string, onboardingSeen bool) error {
	query := squirrel.Update("users").
		Set("display_name", displayName).
		Set("country", country).
		Set("tax_id", taxID).
		Set("onboarding_seen", onboardingSeen).
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

// SetOrganization moves a user into (or out of, with nil) an organization.
func (r *UserRepository) SetOrganization(ctx context.Context, id uuid.UUID, orgID *uuid.UUID) error {
	query := squirrel.Update("users").
		Set("organization_id", orgID).
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

package repository

import (
	"context"

	"rateguard/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AuditRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuditRepository(db *pgxpool.Pool, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	query := squirrel.Insert("audits").
		Columns("id", "organization_id", "user_id", "action", "detail", "created_at").
		Values(entry.ID, entry.OrganizationID, entry.UserID, entry.Action, entry.Detail, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AuditRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.AuditEntry, error) {
	query := squirrel.Select("id", "organization_id", "user_id", "action", "detail", "created_at").
		From("audits").
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

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(
			&entry.ID, &entry.OrganizationID, &entry.UserID, &entry.Action, &entry.Detail, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

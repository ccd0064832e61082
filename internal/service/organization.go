package service

import (
	"context"
	"errors"
	"time"

	"rateguard/internal/dto"
	"rateguard/internal/models"
	"rateguard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNotOrganizationAdmin = errors.New("only the organization admin can do this")
	ErrAlreadyInOrg         = errors.New("user already belongs to an organization")
	ErrSeatCapReached       = errors.New("organization seat cap reached")
	ErrMemberNotFound       = errors.New("member not found in organization")
	ErrCannotRemoveAdmin    = errors.New("admin cannot be removed from the organization")
)

type OrganizationService struct {
	orgRepo   *repository.OrganizationRepository
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
	logger    *zap.Logger
}

func NewOrganizationService(orgRepo *repository.OrganizationRepository, userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Create makes a new organization with the caller as admin and sole member.
// New organizations start on the free plan with the starter credit grant.
func (s *OrganizationService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.OrganizationID != nil {
		return nil, ErrAlreadyInOrg
	}

	now := time.Now()
	org := &models.Organization{
		ID:            uuid.New(),
		Name:          req.Name,
		AdminID:       userID,
		MemberIDs:     []uuid.UUID{userID},
		Plan:          models.PlanFree,
		SeatCap:       models.FreeSeatCap,
		CreditBalance: models.FreeCreditGrant,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetOrganization(ctx, userID, &org.ID); err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("admin_id", userID.String()))

	return buildOrganizationResponse(org), nil
}

func (s *OrganizationService) Get(ctx context.Context, userID uuid.UUID) (*dto.OrganizationResponse, error) {
	org, err := s.organizationOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildOrganizationResponse(org), nil
}

// AddMember invites a registered user into the admin's organization by
// email. A user can belong to at most one organization, and the member
// list cannot grow past the plan's seat cap.
func (s *OrganizationService) AddMember(ctx context.Context, adminID uuid.UUID, req *dto.AddMemberRequest) (*dto.OrganizationResponse, error) {
	org, err := s.organizationOf(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if org.AdminID != adminID {
		return nil, ErrNotOrganizationAdmin
	}
	if len(org.MemberIDs) >= org.SeatCap {
		return nil, ErrSeatCapReached
	}

	member, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if member.OrganizationID != nil {
		return nil, ErrAlreadyInOrg
	}

	org.MemberIDs = append(org.MemberIDs, member.ID)
	if err := s.orgRepo.UpdateMembers(ctx, org.ID, org.MemberIDs); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetOrganization(ctx, member.ID, &org.ID); err != nil {
		return nil, err
	}

	s.logger.Info("member added",
		zap.String("org_id", org.ID.String()),
		zap.String("member_id", member.ID.String()))

	return buildOrganizationResponse(org), nil
}

// RemoveMember detaches a member from the organization. The admin seat
// itself cannot be removed.
func (s *OrganizationService) RemoveMember(ctx context.Context, adminID, memberID uuid.UUID) (*dto.OrganizationResponse, error) {
	org, err := s.organizationOf(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if org.AdminID != adminID {
		return nil, ErrNotOrganizationAdmin
	}
	if memberID == org.AdminID {
		return nil, ErrCannotRemoveAdmin
	}

	found := false
	remaining := make([]uuid.UUID, 0, len(org.MemberIDs))
	for _, id := range org.MemberIDs {
		if id == memberID {
			found = true
			continue
		}
		remaining = append(remaining, id)
	}
	if !found {
		return nil, ErrMemberNotFound
	}

	org.MemberIDs = remaining
	if err := s.orgRepo.UpdateMembers(ctx, org.ID, org.MemberIDs); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetOrganization(ctx, memberID, nil); err != nil {
		return nil, err
	}

	s.logger.Info("member removed",
		zap.String("org_id", org.ID.String()),
		zap.String("member_id", memberID.String()))

	return buildOrganizationResponse(org), nil
}

// ConsumeCredit decrements the organization's free-tier balance by one.
// The decrement is best-effort: a failure is logged and audited but never
// blocks the caller's operation.
func (s *OrganizationService) ConsumeCredit(ctx context.Context, org *models.Organization, userID uuid.UUID) {
	if org.Plan != models.PlanFree {
		return
	}

	ok, err := s.orgRepo.DecrementCredit(ctx, org.ID)
	if err != nil || !ok {
		detail := "credit balance exhausted"
		if err != nil {
			detail = err.Error()
		}
		s.logger.Warn("credit decrement failed",
			zap.String("org_id", org.ID.String()),
			zap.String("detail", detail))
		s.audit(ctx, org.ID, userID, models.AuditCreditFailure, detail)
		return
	}

	s.audit(ctx, org.ID, userID, models.AuditCreditDecrement, "")
}

// AuditTrail returns the organization's audit log, newest first.
func (s *OrganizationService) AuditTrail(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.AuditEntryResponse, error) {
	org, err := s.organizationOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.auditRepo.ListByOrganization(ctx, org.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:        entry.ID.String(),
			UserID:    entry.UserID.String(),
			Action:    string(entry.Action),
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *OrganizationService) organizationOf(ctx context.Context, userID uuid.UUID) (*models.Organization, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.OrganizationID == nil {
		return nil, ErrOrganizationNotFound
	}
	org, err := s.orgRepo.GetByID(ctx, *user.OrganizationID)
	if err != nil {
		return nil, ErrOrganizationNotFound
	}
	return org, nil
}

func (s *OrganizationService) audit(ctx context.Context, orgID, userID uuid.UUID, action models.AuditAction, detail string) {
	entry := &models.AuditEntry{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		Detail:         detail,
		CreatedAt:      time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry",
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func buildOrganizationResponse(org *models.Organization) *dto.OrganizationResponse {
	members := make([]string, 0, len(org.MemberIDs))
	for _, id := range org.MemberIDs {
		members = append(members, id.String())
	}
	return &dto.OrganizationResponse{
		ID:            org.ID.String(),
		Name:          org.Name,
		AdminID:       org.AdminID.String(),
		MemberIDs:     members,
		Plan:          string(org.Plan),
		SeatCap:       org.SeatCap,
		CreditBalance: org.CreditBalance,
		CreatedAt:     org.CreatedAt.Format(time.RFC3339),
	}
}

// MemberOrganization resolves the organization a user belongs to, for use
// by other services that need the org record itself.
func (s *OrganizationService) MemberOrganization(ctx context.Context, userID uuid.UUID) (*models.Organization, error) {
	return s.organizationOf(ctx, userID)
}

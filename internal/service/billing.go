package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"rateguard/internal/dto"
	"rateguard/internal/models"
	"rateguard/internal/repository"
	"rateguard/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidSubscription = errors.New("invalid subscription id")

// BillingService finalizes checkout callbacks from the hosted payment
// widget and reports the current plan. Payment capture itself happens on
// the provider's side; by the time the callback arrives the subscription
// is already approved.
type BillingService struct {
	orgRepo          *repository.OrganizationRepository
	userRepo         *repository.UserRepository
	auditRepo        *repository.AuditRepository
	checkoutClientID string
	logger           *zap.Logger
}

func NewBillingService(orgRepo *repository.OrganizationRepository, userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, cfg *config.BillingConfig, logger *zap.Logger) *BillingService {
	return &BillingService{
		orgRepo:          orgRepo,
		userRepo:         userRepo,
		auditRepo:        auditRepo,
		checkoutClientID: cfg.CheckoutClientID,
		logger:           logger,
	}
}

// CompleteCheckout upgrades the caller's organization to the enterprise
// plan after a successful checkout. Only the organization admin may
// confirm a checkout. The upgrade is idempotent for a repeated callback
// with the same subscription id.
func (s *BillingService) CompleteCheckout(ctx context.Context, userID uuid.UUID, req *dto.CompleteCheckoutRequest) (*dto.PlanResponse, error) {
	subscriptionID := strings.TrimSpace(req.SubscriptionID)
	if subscriptionID == "" {
		return nil, ErrInvalidSubscription
	}

	org, err := s.organizationOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if org.AdminID != userID {
		return nil, ErrNotOrganizationAdmin
	}

	if org.Plan == models.PlanEnterprise && org.SubscriptionID == subscriptionID {
		return buildPlanResponse(org, s.checkoutClientID), nil
	}

	seatCap := models.SeatCapFor(models.PlanEnterprise)
	if err := s.orgRepo.UpgradePlan(ctx, org.ID, models.PlanEnterprise, seatCap, subscriptionID); err != nil {
		return nil, err
	}

	org.Plan = models.PlanEnterprise
	org.SeatCap = seatCap
	org.SubscriptionID = subscriptionID

	s.auditUpgrade(ctx, org.ID, userID, subscriptionID)
	s.logger.Info("plan upgraded",
		zap.String("org_id", org.ID.String()),
		zap.String("subscription_id", subscriptionID))

	return buildPlanResponse(org, s.checkoutClientID), nil
}

func (s *BillingService) GetPlan(ctx context.Context, userID uuid.UUID) (*dto.PlanResponse, error) {
	org, err := s.organizationOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildPlanResponse(org, s.checkoutClientID), nil
}

func (s *BillingService) organizationOf(ctx context.Context, userID uuid.UUID) (*models.Organization, error) {
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

func (s *BillingService) auditUpgrade(ctx context.Context, orgID, userID uuid.UUID, subscriptionID string) {
	entry := &models.AuditEntry{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Action:         models.AuditPlanUpgraded,
		Detail:         subscriptionID,
		CreatedAt:      time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry", zap.Error(err))
	}
}

func buildPlanResponse(org *models.Organization, checkoutClientID string) *dto.PlanResponse {
	return &dto.PlanResponse{
		Plan:             string(org.Plan),
		SeatCap:          org.SeatCap,
		CreditBalance:    org.CreditBalance,
		SubscriptionID:   org.SubscriptionID,
		CheckoutClientID: checkoutClientID,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rateguard/internal/dto"
	"rateguard/internal/models"
	"rateguard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQuoteNotFound     = errors.New("quote not found")
	ErrNoOrganization    = errors.New("user does not belong to an organization")
	ErrExtractionFailed  = errors.New("could not extract transaction data from document")
	ErrIncompleteExtract = errors.New("document is missing the amount, currency pair or bank rate")
)

// QuoteService runs the analysis pipeline: extract text from the uploaded
// confirmation, parse it into a structured transaction, resolve the
// mid-market rate, compute the cost breakdown and persist the result.
type QuoteService struct {
	quoteRepo  *repository.QuoteRepository
	userRepo   *repository.UserRepository
	orgRepo    *repository.OrganizationRepository
	auditRepo  *repository.AuditRepository
	extraction *ExtractionService
	parser     *ParserService
	resolver   *RateResolver
	advisory   *AdvisoryService
	orgService *OrganizationService
	logger     *zap.Logger
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	userRepo *repository.UserRepository,
	orgRepo *repository.OrganizationRepository,
	auditRepo *repository.AuditRepository,
	extraction *ExtractionService,
	parser *ParserService,
	resolver *RateResolver,
	advisory *AdvisoryService,
	orgService *OrganizationService,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:  quoteRepo,
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		auditRepo:  auditRepo,
		extraction: extraction,
		parser:     parser,
		resolver:   resolver,
		advisory:   advisory,
		orgService: orgService,
		logger:     logger,
	}
}

// UploadAndAnalyze is the main entry point: one uploaded document in, one
// persisted quote with a full cost breakdown out.
func (s *QuoteService) UploadAndAnalyze(ctx context.Context, userID uuid.UUID, fileName string, data []byte, mimeType string) (*dto.QuoteResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	org, err := s.orgRepo.GetByID(ctx, *user.OrganizationID)
	if err != nil {
		return nil, ErrOrganizationNotFound
	}

	text, provider, err := s.extraction.ExtractText(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document text extracted",
		zap.String("file", fileName),
		zap.String("provider", provider),
		zap.Int("chars", len(text)))

	confirmation, err := s.parser.ParseWireConfirmation(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if confirmation.OriginalAmount <= 0 || confirmation.CurrencyPair == "" || confirmation.BankRate <= 0 {
		return nil, ErrIncompleteExtract
	}

	valueDate := parseValueDate(confirmation.ValueDate)
	rate, err := s.resolver.Resolve(ctx, confirmation.CurrencyPair, valueDate)
	if err != nil {
		// An unknown pair still produces a quote: the calculator fails
		// closed and flags it as unbenchmarkable.
		s.logger.Warn("rate resolution failed",
			zap.String("pair", confirmation.CurrencyPair),
			zap.Error(err))
		rate = &RateResult{}
	}

	breakdown := ComputeCost(CostInput{
		OriginalAmount: confirmation.OriginalAmount,
		BankRate:       confirmation.BankRate,
		MidMarketRate:  rate.Rate,
		Fees:           confirmation.FeeItems,
	})

	now := time.Now()
	quote := &models.Quote{
		ID:                    uuid.New(),
		OrganizationID:        org.ID,
		UserID:                userID,
		BankName:              confirmation.BankName,
		CurrencyPair:          NormalizePair(confirmation.CurrencyPair),
		OriginalAmount:        confirmation.OriginalAmount,
		BankRate:              confirmation.BankRate,
		MidMarketRate:         rate.Rate,
		RateSource:            rate.Source,
		RateCaveat:            rate.Caveat,
		Fees:                  confirmation.FeeItems,
		MarkupCost:            breakdown.MarkupCost,
		TotalFees:             breakdown.TotalFees,
		TotalHiddenCost:       breakdown.TotalHiddenCost,
		SpreadPercentage:      breakdown.SpreadPercentage,
		TotalHiddenPercentage: breakdown.TotalHiddenPercentage,
		DisputeRecommended:    breakdown.DisputeRecommended,
		CannotBenchmark:       breakdown.CannotBenchmark,
		Status:                models.StatusAnalyzed,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}

	s.orgService.ConsumeCredit(ctx, org, userID)
	s.audit(ctx, org.ID, userID, models.AuditQuoteCreated, quote.ID.String())

	if quote.DisputeRecommended && s.advisory != nil {
		if note := s.advisory.DraftDisputeNote(ctx, quote); note != "" {
			quote.Advisory = note
			if err := s.quoteRepo.UpdateAdvisory(ctx, quote.ID, note); err != nil {
				s.logger.Warn("failed to persist advisory", zap.Error(err))
			}
		}
	}

	return s.toQuoteResponse(quote, breakdown.Benchmark), nil
}

func (s *QuoteService) Get(ctx context.Context, userID, quoteID uuid.UUID) (*dto.QuoteResponse, error) {
	quote, err := s.authorizedQuote(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}
	return s.toQuoteResponse(quote, recomputeBenchmark(quote)), nil
}

func (s *QuoteService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.QuoteResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	quotes, err := s.quoteRepo.ListByOrganization(ctx, *user.OrganizationID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.QuoteResponse, 0, len(quotes))
	for _, quote := range quotes {
		responses = append(responses, s.toQuoteResponse(quote, recomputeBenchmark(quote)))
	}
	return responses, nil
}

// AdvanceStatus moves a quote to the next workflow state. The cycle wraps:
// approved rolls back over to uploaded for re-review.
func (s *QuoteService) AdvanceStatus(ctx context.Context, userID, quoteID uuid.UUID) (*dto.AdvanceStatusResponse, error) {
	quote, err := s.authorizedQuote(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}

	next := NextStatus(quote.Status)
	if err := s.quoteRepo.UpdateStatus(ctx, quoteID, next); err != nil {
		return nil, err
	}

	s.audit(ctx, quote.OrganizationID, userID, models.AuditStatusAdvanced,
		fmt.Sprintf("%s: %s -> %s", quoteID, quote.Status, next))

	return &dto.AdvanceStatusResponse{
		ID:     quoteID.String(),
		Status: string(next),
	}, nil
}

// AppendNote adds a timestamped note line to the quote's review trail.
func (s *QuoteService) AppendNote(ctx context.Context, userID, quoteID uuid.UUID, note string) (*dto.QuoteResponse, error) {
	quote, err := s.authorizedQuote(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}

	line := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04"), note)
	if quote.Notes != "" {
		quote.Notes += "\n"
	}
	quote.Notes += line

	if err := s.quoteRepo.UpdateNotes(ctx, quoteID, quote.Notes); err != nil {
		return nil, err
	}

	s.audit(ctx, quote.OrganizationID, userID, models.AuditNoteAdded, quoteID.String())

	return s.toQuoteResponse(quote, recomputeBenchmark(quote)), nil
}

// authorizedQuote loads a quote and checks the caller's organization owns
// it. Cross-organization access reads as not-found.
func (s *QuoteService) authorizedQuote(ctx context.Context, userID, quoteID uuid.UUID) (*models.Quote, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, ErrQuoteNotFound
	}
	if quote.OrganizationID != *user.OrganizationID {
		return nil, ErrQuoteNotFound
	}
	return quote, nil
}

func (s *QuoteService) audit(ctx context.Context, orgID, userID uuid.UUID, action models.AuditAction, detail string) {
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

func (s *QuoteService) toQuoteResponse(quote *models.Quote, benchmark *BenchmarkComparison) *dto.QuoteResponse {
	fees := make([]dto.FeeItemResponse, 0, len(quote.Fees))
	for _, fee := range quote.Fees {
		fees = append(fees, dto.FeeItemResponse{Name: fee.Name, Amount: fee.Amount})
	}

	resp := &dto.QuoteResponse{
		ID:                    quote.ID.String(),
		BankName:              quote.BankName,
		CurrencyPair:          quote.CurrencyPair,
		OriginalAmount:        quote.OriginalAmount,
		BankRate:              quote.BankRate,
		MidMarketRate:         quote.MidMarketRate,
		RateSource:            string(quote.RateSource),
		RateCaveat:            quote.RateCaveat,
		Fees:                  fees,
		MarkupCost:            quote.MarkupCost,
		TotalFees:             quote.TotalFees,
		TotalHiddenCost:       quote.TotalHiddenCost,
		SpreadPercentage:      quote.SpreadPercentage,
		TotalHiddenPercentage: quote.TotalHiddenPercentage,
		DisputeRecommended:    quote.DisputeRecommended,
		CannotBenchmark:       quote.CannotBenchmark,
		Status:                string(quote.Status),
		Notes:                 quote.Notes,
		Advisory:              quote.Advisory,
		CreatedAt:             quote.CreatedAt.Format(time.RFC3339),
	}

	if benchmark != nil {
		resp.Benchmark = &dto.BenchmarkResponse{
			IndustryAverageSpread: benchmark.IndustryAverageSpread,
			DeltaPercentage:       benchmark.DeltaPercentage,
			BetterThanAverage:     benchmark.BetterThanAverage,
			AnnualizedCost:        benchmark.AnnualizedCost,
		}
	}
	return resp
}

// recomputeBenchmark rebuilds the benchmark comparison from stored fields;
// the comparison is derived, so it is not persisted.
func recomputeBenchmark(quote *models.Quote) *BenchmarkComparison {
	if quote.CannotBenchmark {
		return nil
	}
	return &BenchmarkComparison{
		IndustryAverageSpread: IndustryAverageSpread,
		DeltaPercentage:       quote.SpreadPercentage - IndustryAverageSpread,
		BetterThanAverage:     quote.SpreadPercentage < IndustryAverageSpread,
		AnnualizedCost:        quote.TotalHiddenCost * 12,
	}
}

// parseValueDate accepts the common formats banks print on confirmations.
// An unparseable or empty date falls back to today.
func parseValueDate(raw string) time.Time {
	layouts := []string{"2006-01-02", "02.01.2006", "01/02/2006", "2 January 2006", "Jan 2, 2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}

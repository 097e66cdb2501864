package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/referral/classifier"
	"cleaning-booking-be/pkg/referral/processor"
	"cleaning-booking-be/pkg/referral/progress"

	"github.com/shopspring/decimal"
)

const (
	referralCodeAttempts = 10
	recentReferralsLimit = 10
)

// CommissionProcessor is the slice of processor.Processor the services use.
type CommissionProcessor interface {
	BookingProcessor
	ProcessAllPending(ctx context.Context) (*processor.BatchResult, error)
	ProcessRecurring(ctx context.Context, invoice processor.RecurringInvoice) (*processor.Result, error)
}

type IReferralService interface {
	ValidateCode(ctx context.Context, code string) (*dto.ValidateCodeResponse, error)
	RegisterReferrer(ctx context.Context, req *dto.RegisterReferrerRequest) (*dto.ReferrerResponse, error)
	GetDashboard(ctx context.Context, code string) (*dto.ReferralDashboardResponse, error)
	ListLevels(ctx context.Context) ([]*dto.LevelResponse, error)
	CreatePromoCode(ctx context.Context, req *dto.CreatePromoCodeRequest) (*dto.PromoCodeResponse, error)
	ProcessBookingCommission(ctx context.Context, bookingCode string) (*processor.Result, error)
	ProcessAllPendingCommissions(ctx context.Context) (*processor.BatchResult, error)
}

type referralService struct {
	uowFactory  unitofwork.RepositoryFactory
	classifier  *classifier.Classifier
	levels      progress.LevelSource
	evaluator   *progress.Evaluator
	processor   CommissionProcessor
	logger      logger.ILogger
	customerPct decimal.Decimal
}

func NewReferralService(
	uowFactory unitofwork.RepositoryFactory,
	codeClassifier *classifier.Classifier,
	levels progress.LevelSource,
	commissionProcessor CommissionProcessor,
	logger logger.ILogger,
	customerDiscountPct int,
) IReferralService {
	return &referralService{
		uowFactory:  uowFactory,
		classifier:  codeClassifier,
		levels:      levels,
		evaluator:   progress.NewEvaluator(levels, logger),
		processor:   commissionProcessor,
		logger:      logger,
		customerPct: decimal.NewFromInt(int64(customerDiscountPct)),
	}
}

// ValidateCode reports on a customer-entered code. Unknown codes and codes
// that only match a naming pattern come back as valid=false with a message,
// never as an error.
func (s *referralService) ValidateCode(ctx context.Context, code string) (*dto.ValidateCodeResponse, error) {
	result, err := s.classifier.Classify(ctx, code)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Source == classifier.SourceNone && len(result.Code) < classifier.MinCodeLength:
		return &dto.ValidateCodeResponse{Success: true, Type: string(classifier.TypeNone), Message: "Please enter a valid code"}, nil
	case !result.Authoritative():
		return &dto.ValidateCodeResponse{Success: true, Type: string(result.Type), Message: "Code not found"}, nil
	case result.Type == classifier.TypeReferral:
		pct := money(s.customerPct)
		return &dto.ValidateCodeResponse{
			Success:            true,
			Valid:              true,
			Type:               string(classifier.TypeReferral),
			DiscountPercentage: &pct,
			Message:            fmt.Sprintf("Referral code from %s applied", result.Referrer.Name),
		}, nil
	default:
		return &dto.ValidateCodeResponse{
			Success:            true,
			Valid:              true,
			Type:               string(classifier.TypePromo),
			DiscountPercentage: moneyPtr(result.Promo.DiscountPercentage),
			DiscountAmount:     moneyPtr(result.Promo.DiscountAmount),
			Message:            "Promo code applied",
		}, nil
	}
}

// codePrefix takes the first four letters of the name, padded with X.
func codePrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	for b.Len() < 4 {
		b.WriteByte('X')
	}
	return b.String()
}

func newReferralCode(name string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", codePrefix(name), n.Int64()), nil
}

func (s *referralService) RegisterReferrer(ctx context.Context, req *dto.RegisterReferrerRequest) (*dto.ReferrerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ReferralUserRepository().FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	levels, err := s.levels.ActiveLevels(ctx)
	if err != nil {
		return nil, err
	}
	var lowest *entity.ReferralLevel
	if len(levels) > 0 {
		lowest = levels[0]
	}

	user := &entity.ReferralUser{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		TotalEarned: decimal.Zero,
		IsActive:    true,
	}
	if lowest != nil {
		user.CurrentLevelId = &lowest.Id
	}

	for attempt := 0; ; attempt++ {
		if attempt == referralCodeAttempts {
			return nil, fmt.Errorf("register referrer: no free referral code after %d attempts", referralCodeAttempts)
		}
		code, err := newReferralCode(user.Name)
		if err != nil {
			return nil, err
		}
		user.ReferralCode = code

		err = uow.ReferralUserRepository().Create(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, contract.ErrDuplicate) {
			return nil, fmt.Errorf("register referrer: %w", err)
		}
		// The email may have been taken concurrently.
		taken, ferr := uow.ReferralUserRepository().FindByEmail(ctx, email)
		if ferr != nil {
			return nil, ferr
		}
		if taken != nil {
			return nil, ErrEmailTaken
		}
	}

	s.logger.Info("REFERRAL", "Referrer registered", map[string]interface{}{
		"referrer_id":   user.Id,
		"referral_code": user.ReferralCode,
	})
	res := toReferrerResponse(user, lowest)
	return &res, nil
}

func (s *referralService) GetDashboard(ctx context.Context, code string) (*dto.ReferralDashboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.ReferralUserRepository().FindActiveByCode(ctx, classifier.Normalize(code))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrReferrerNotFound
	}

	// The level display degrades instead of failing the page.
	level, err := s.evaluator.CurrentLevel(ctx, user.CurrentLevelId, user.TotalEarned)
	if err != nil {
		s.logger.Warn("REFERRAL", "Current level unavailable", map[string]interface{}{"error": err.Error()})
		level = nil
	}
	p := s.evaluator.NextLevelProgress(ctx, level, user.TotalEarned)

	referrals, err := uow.ReferralRepository().FindByReferrer(ctx, user.Id, recentReferralsLimit)
	if err != nil {
		return nil, err
	}
	history := make([]dto.ReferralHistoryItem, 0, len(referrals))
	for _, r := range referrals {
		history = append(history, dto.ReferralHistoryItem{
			Id:               r.Id,
			CustomerName:     r.CustomerName,
			BookingValue:     money(r.BookingValue),
			CommissionEarned: money(r.CommissionEarned),
			Status:           string(r.Status),
			PaymentType:      string(r.PaymentType),
			CreatedAt:        r.CreatedAt,
		})
	}

	return &dto.ReferralDashboardResponse{
		Referrer:     toReferrerResponse(user, level),
		CurrentLevel: toLevelResponse(level),
		Progress: dto.LevelProgressResponse{
			ProgressPercentage: money(p.ProgressPercentage),
			RemainingAmount:    money(p.RemainingAmount),
			NextLevel:          toLevelResponse(p.NextLevel),
		},
		RecentReferrals: history,
	}, nil
}

func (s *referralService) ListLevels(ctx context.Context) ([]*dto.LevelResponse, error) {
	levels, err := s.levels.ActiveLevels(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.LevelResponse, 0, len(levels))
	for _, l := range levels {
		res = append(res, toLevelResponse(l))
	}
	return res, nil
}

func (s *referralService) CreatePromoCode(ctx context.Context, req *dto.CreatePromoCodeRequest) (*dto.PromoCodeResponse, error) {
	if (req.DiscountPercentage == nil) == (req.DiscountAmount == nil) {
		return nil, ErrPromoInvalid
	}

	promo := &entity.PromoCode{
		Code:     classifier.Normalize(req.Code),
		IsActive: true,
	}
	if req.DiscountPercentage != nil {
		pct := decimal.NewFromFloat(*req.DiscountPercentage).Round(2)
		promo.DiscountPercentage = &pct
	}
	if req.DiscountAmount != nil {
		amount := decimal.NewFromFloat(*req.DiscountAmount).Round(2)
		promo.DiscountAmount = &amount
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	// A promo code must not shadow a referral code, which classifies first.
	clash, err := uow.ReferralUserRepository().CodeExists(ctx, promo.Code)
	if err != nil {
		return nil, err
	}
	if clash {
		return nil, ErrPromoExists
	}
	if err := uow.PromoCodeRepository().Create(ctx, promo); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, ErrPromoExists
		}
		return nil, err
	}

	s.logger.Info("REFERRAL", "Promo code created", map[string]interface{}{"code": promo.Code})
	return toPromoResponse(promo), nil
}

func (s *referralService) ProcessBookingCommission(ctx context.Context, bookingCode string) (*processor.Result, error) {
	return s.processor.ProcessBooking(ctx, strings.ToUpper(strings.TrimSpace(bookingCode)))
}

func (s *referralService) ProcessAllPendingCommissions(ctx context.Context) (*processor.BatchResult, error) {
	return s.processor.ProcessAllPending(ctx)
}

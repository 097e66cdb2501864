// Package classifier resolves a customer-entered code to a referral code, a
// promo code, or nothing.
package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/repository/unitofwork"
)

type CodeType string
type Source string

const (
	TypeReferral CodeType = "referral"
	TypePromo    CodeType = "promo"
	TypeNone     CodeType = "none"

	SourceDatabase  Source = "database"
	SourceHeuristic Source = "heuristic"
	SourceNone      Source = "none"

	MinCodeLength = 3
)

var (
	referralPrefixes = []string{"FRIEND", "REF", "USER", "MEMBER"}
	promoPrefixes    = []string{"SUMMER", "SALE", "PROMO"}
	promoPattern     = regexp.MustCompile(`^[A-Z]+[0-9]{1,3}$`)
)

type Classification struct {
	Type   CodeType
	Source Source
	Code   string

	// Set only when Source is database.
	Referrer *entity.ReferralUser
	Level    *entity.ReferralLevel
	Promo    *entity.PromoCode
}

// Authoritative reports whether the result came from a stored record and may
// be persisted on a booking.
func (c *Classification) Authoritative() bool {
	return c.Source == SourceDatabase
}

type Classifier struct {
	uowFactory unitofwork.RepositoryFactory
}

func New(uowFactory unitofwork.RepositoryFactory) *Classifier {
	return &Classifier{uowFactory: uowFactory}
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify looks the code up as a referral code first, then as a promo code.
// Without a stored match it falls back to a naming hint that callers must not
// persist.
func (c *Classifier) Classify(ctx context.Context, code string) (*Classification, error) {
	normalized := Normalize(code)
	if len(normalized) < MinCodeLength {
		return &Classification{Type: TypeNone, Source: SourceNone, Code: normalized}, nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	referrer, err := uow.ReferralUserRepository().FindActiveByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("lookup referral code: %w", err)
	}
	if referrer != nil {
		result := &Classification{Type: TypeReferral, Source: SourceDatabase, Code: normalized, Referrer: referrer}
		if referrer.CurrentLevelId != nil {
			level, err := uow.ReferralLevelRepository().FindById(ctx, *referrer.CurrentLevelId)
			if err != nil {
				return nil, fmt.Errorf("lookup referral level: %w", err)
			}
			result.Level = level
		}
		return result, nil
	}

	promo, err := uow.PromoCodeRepository().FindActiveByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("lookup promo code: %w", err)
	}
	if promo != nil {
		return &Classification{Type: TypePromo, Source: SourceDatabase, Code: normalized, Promo: promo}, nil
	}

	if hint := Hint(normalized); hint != TypeNone {
		return &Classification{Type: hint, Source: SourceHeuristic, Code: normalized}, nil
	}
	return &Classification{Type: TypeNone, Source: SourceNone, Code: normalized}, nil
}

// Hint guesses the code type from its shape alone.
func Hint(code string) CodeType {
	code = Normalize(code)
	if len(code) < MinCodeLength {
		return TypeNone
	}
	for _, p := range referralPrefixes {
		if strings.HasPrefix(code, p) {
			return TypeReferral
		}
	}
	for _, p := range promoPrefixes {
		if strings.HasPrefix(code, p) {
			return TypePromo
		}
	}
	if promoPattern.MatchString(code) {
		return TypePromo
	}
	return TypeNone
}

package processor

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome classifies a processing attempt. Everything except OutcomeFailed is
// an expected business result; OutcomeFailed only appears inside BatchResult.
type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeNoReferralCode   Outcome = "no_referral_code"
	OutcomeNotEligible      Outcome = "not_eligible"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeReferrerNotFound Outcome = "referrer_not_found"
	OutcomeFailed           Outcome = "failed"
)

type Result struct {
	Success     bool        `json:"success"`
	Outcome     Outcome     `json:"outcome"`
	Message     string      `json:"message"`
	BookingCode string      `json:"booking_code,omitempty"`
	Data        *Commission `json:"data,omitempty"`
}

// Commission describes a referral row that was just written.
type Commission struct {
	ReferralId       uuid.UUID       `json:"referral_id"`
	ReferrerId       uuid.UUID       `json:"referrer_id"`
	ReferrerCode     string          `json:"referrer_code"`
	ReferrerName     string          `json:"referrer_name"`
	ReferrerEmail    string          `json:"referrer_email"`
	BookingId        uuid.UUID       `json:"booking_id"`
	BookingCode      string          `json:"booking_code"`
	InvoiceId        string          `json:"invoice_id,omitempty"`
	PaymentType      string          `json:"payment_type"`
	BookingValue     decimal.Decimal `json:"booking_value"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalReferrals   int             `json:"total_referrals"`
	LevelName        string          `json:"level_name,omitempty"`
	Promoted         bool            `json:"promoted"`
}

type BatchResult struct {
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Results   []*Result `json:"results"`
}

func (b *BatchResult) add(r *Result) {
	b.Total++
	switch {
	case r.Success:
		b.Processed++
	case r.Outcome == OutcomeFailed:
		b.Failed++
	default:
		b.Skipped++
	}
	b.Results = append(b.Results, r)
}

// RecurringInvoice is a paid subscription invoice reported by the gateway.
type RecurringInvoice struct {
	InvoiceId      string
	SubscriptionId string
	AmountPaid     decimal.Decimal
}

func skipped(code string, outcome Outcome, message string) *Result {
	return &Result{Outcome: outcome, Message: message, BookingCode: code}
}

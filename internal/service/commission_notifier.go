package service

import (
	"context"
	"strings"

	"cleaning-booking-be/internal/pkg/mailer"
	"cleaning-booking-be/pkg/referral/processor"
)

// commissionMailer e-mails the referrer after each credited commission.
type commissionMailer struct {
	mailer    mailer.IEmailService
	clientURL string
}

func NewCommissionMailer(m mailer.IEmailService, clientURL string) processor.Notifier {
	return &commissionMailer{mailer: m, clientURL: strings.TrimRight(clientURL, "/")}
}

func (n *commissionMailer) NotifyCommissionEarned(ctx context.Context, c *processor.Commission) error {
	if c.ReferrerEmail == "" {
		return nil
	}
	dashboard := ""
	if n.clientURL != "" {
		dashboard = n.clientURL + "/referral/dashboard?code=" + c.ReferrerCode
	}
	return n.mailer.SendCommissionEarned(c.ReferrerEmail, mailer.CommissionEmail{
		ReferrerName:   c.ReferrerName,
		BookingCode:    c.BookingCode,
		PaymentType:    c.PaymentType,
		Amount:         money(c.CommissionAmount),
		TotalEarned:    money(c.TotalEarned),
		TotalReferrals: c.TotalReferrals,
		LevelName:      c.LevelName,
		Promoted:       c.Promoted,
		DashboardURL:   dashboard,
	})
}

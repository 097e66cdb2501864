package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendCommissionEarned(t *testing.T) {
	dialer := &fakeDialer{}
	svc := NewEmailServiceWithDialer(dialer, "noreply@example.com", "Sparkle")

	err := svc.SendCommissionEarned("jane@example.com", CommissionEmail{
		ReferrerName: "Jane",
		BookingCode:  "BK-12345678",
		PaymentType:  "initial",
		Amount:       "100.00",
		LevelName:    "Silver",
		Promoted:     true,
	})
	require.NoError(t, err)
	require.Len(t, dialer.sent, 1)

	msg := dialer.sent[0]
	assert.Equal(t, []string{"jane@example.com"}, msg.GetHeader("To"))

	assert.Equal(t, []string{"You earned a referral commission"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Silver")
}

func TestSendBookingConfirmation_DialError(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("connection refused")}
	svc := NewEmailServiceWithDialer(dialer, "noreply@example.com", "Sparkle")

	err := svc.SendBookingConfirmation("c@example.com", BookingEmail{BookingCode: "BK-1"})
	assert.Error(t, err)
}

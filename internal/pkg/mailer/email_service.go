package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendCommissionEarned(toEmail string, data CommissionEmail) error
	SendBookingConfirmation(toEmail string, data BookingEmail) error
}

type CommissionEmail struct {
	ReferrerName   string
	BookingCode    string
	PaymentType    string
	Amount         string
	TotalEarned    string
	TotalReferrals int
	LevelName      string
	Promoted       bool
	DashboardURL   string
}

type BookingEmail struct {
	CustomerName  string
	BookingCode   string
	ScheduledDate string
	ScheduledTime string
	TotalAmount   string
}

// Dialer is the part of gomail.Dialer the service uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return NewEmailServiceWithDialer(gomail.NewDialer(host, port, username, password), username, senderName)
}

func NewEmailServiceWithDialer(dialer Dialer, senderEmail, senderName string) IEmailService {
	return &emailService{dialer: dialer, senderEmail: senderEmail, senderName: senderName}
}

var commissionTemplate = template.Must(template.New("commission").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>You earned a referral commission!</h2>
	<p>Hi {{.ReferrerName}},</p>
	<p>Booking <strong>{{.BookingCode}}</strong> ({{.PaymentType}} payment) earned you
	<strong style="color: #4CAF50;">${{.Amount}}</strong>.</p>
	<p>Total earned: ${{.TotalEarned}} from {{.TotalReferrals}} referrals.</p>
	{{if .Promoted}}<p>Congratulations, you reached the <strong>{{.LevelName}}</strong> level.</p>{{end}}
	{{if .DashboardURL}}<p><a href="{{.DashboardURL}}">View your dashboard</a></p>{{end}}
</div>`))

var bookingTemplate = template.Must(template.New("booking").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>Booking received</h2>
	<p>Hi {{.CustomerName}}, thanks for booking with us.</p>
	<p>Reference: <strong>{{.BookingCode}}</strong></p>
	<p>Scheduled: {{.ScheduledDate}} {{.ScheduledTime}}</p>
	<p>Total: ${{.TotalAmount}}</p>
</div>`))

func (s *emailService) send(toEmail, subject string, tmpl *template.Template, data interface{}) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s email to %s: %w", tmpl.Name(), toEmail, err)
	}
	return nil
}

func (s *emailService) SendCommissionEarned(toEmail string, data CommissionEmail) error {
	return s.send(toEmail, "You earned a referral commission", commissionTemplate, data)
}

func (s *emailService) SendBookingConfirmation(toEmail string, data BookingEmail) error {
	return s.send(toEmail, "Your cleaning booking "+data.BookingCode, bookingTemplate, data)
}

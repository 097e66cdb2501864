package service

import (
	"context"
	"fmt"
	"strings"

	"cleaning-booking-be/internal/entity"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type CheckoutSession struct {
	Token       string
	RedirectURL string
}

// PaymentGateway opens a hosted payment page for a booking. The booking code
// is the gateway order id.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, booking *entity.Booking) (*CheckoutSession, error)
}

type midtransGateway struct {
	client    snap.Client
	finishURL string
}

func NewMidtransGateway(serverKey, environment, clientURL string) PaymentGateway {
	env := midtrans.Sandbox
	if environment == "production" {
		env = midtrans.Production
	}
	g := &midtransGateway{finishURL: strings.TrimRight(clientURL, "/") + "/booking/complete"}
	g.client.New(serverKey, env)
	return g
}

func (g *midtransGateway) CreateCheckout(ctx context.Context, booking *entity.Booking) (*CheckoutSession, error) {
	// Snap takes whole currency units.
	gross := booking.TotalAmount.Round(0).IntPart()

	firstName, lastName, _ := strings.Cut(booking.CustomerName, " ")
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  booking.BookingCode,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: g.finishURL + "?code=" + booking.BookingCode,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: firstName,
			LName: lastName,
			Email: booking.CustomerEmail,
			Phone: booking.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    booking.BookingCode,
				Price: gross,
				Qty:   1,
				Name:  fmt.Sprintf("%s cleaning (%s)", booking.ServiceType, booking.Frequency),
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, midErr := g.client.CreateTransaction(req)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}
	return &CheckoutSession{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

package service

import "errors"

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidCode        = errors.New("invalid referral or promo code")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrReferrerNotFound   = errors.New("referrer not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPromoInvalid       = errors.New("promo code needs exactly one of discount_percentage or discount_amount")
	ErrPromoExists        = errors.New("promo code already exists")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyPaid        = errors.New("booking already paid")
	ErrInvalidRequest     = errors.New("invalid request")
)

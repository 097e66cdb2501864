package controller

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cleaning-booking-be/internal/config"
	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/repository/memory"
	"cleaning-booking-be/internal/service"
	"cleaning-booking-be/pkg/pricing"
	"cleaning-booking-be/pkg/referral/classifier"
	referralEvents "cleaning-booking-be/pkg/referral/events"
	"cleaning-booking-be/pkg/referral/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	webhookSecret = "whsec_test"
	jwtSecret     = "jwt-test"
)

type stubGateway struct{}

func (stubGateway) CreateCheckout(ctx context.Context, b *entity.Booking) (*service.CheckoutSession, error) {
	return &service.CheckoutSession{Token: "tok-" + b.BookingCode, RedirectURL: "https://pay.example.com"}, nil
}

type mapCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (c *mapCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

type testApp struct {
	app   *fiber.App
	store *memory.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	uow := factory.NewUnitOfWork(ctx)

	pct := decimal.NewFromInt(10)
	require.NoError(t, uow.ReferralLevelRepository().Create(ctx, &entity.ReferralLevel{
		LevelName: "Bronze", CommissionType: entity.CommissionTypePercentage, CommissionPercentage: &pct, IsActive: true,
	}))
	require.NoError(t, uow.ReferralUserRepository().Create(ctx, &entity.ReferralUser{
		ReferralCode: "JANE1234", Name: "Jane", Email: "jane@example.com", IsActive: true,
	}))

	log := logger.NewNopLogger()
	codes := classifier.New(factory)
	catalog := memory.NewLevelCatalog(factory, time.Minute)
	publisher := referralEvents.NewBusPublisher(nil, log)
	proc := processor.New(factory, log, processor.DefaultOptions(), publisher)

	bookingSvc := service.NewBookingService(service.BookingServiceDeps{
		UowFactory:  factory,
		Rates:       pricing.DefaultRateCard(),
		Classifier:  codes,
		Gateway:     stubGateway{},
		Publisher:   publisher,
		Logger:      log,
		ReferralPct: 10,
	})
	referralSvc := service.NewReferralService(factory, codes, catalog, proc, log, 10)
	webhookSvc := service.NewWebhookService(service.WebhookServiceDeps{
		UowFactory:        factory,
		Processor:         proc,
		Publisher:         publisher,
		Logger:            log,
		GatewaySecret:     webhookSecret,
		MidtransServerKey: "server-key",
	})
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	adminSvc := service.NewAdminService(config.AdminConfig{
		Email: "admin@example.com", PasswordHash: string(hash), JWTSecret: jwtSecret, TokenTTL: time.Hour,
	}, log)

	limiter := serverutils.RateLimit(&mapCounter{counts: map[string]int64{}}, "validate-code", 3, time.Minute, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewBookingController(bookingSvc).RegisterRoutes(api)
	NewReferralController(referralSvc, limiter, log).RegisterRoutes(api)
	NewWebhookController(webhookSvc).RegisterRoutes(api)
	NewAdminController(adminSvc, bookingSvc, referralSvc, jwtSecret).RegisterRoutes(api)

	return &testApp{app: app, store: store}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, headers ...string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if raw, ok := body.([]byte); ok {
		reader = bytes.NewReader(raw)
	} else if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func bookingBody(code string) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  "Sam",
		"customer_email": "sam@example.com",
		"customer_phone": "0400000000",
		"address":        "1 Main St",
		"service_type":   "standard",
		"frequency":      "one_time",
		"bedrooms":       1,
		"bathrooms":      1,
		"scheduled_date": "2026-11-02",
		"scheduled_time": "09:00",
		"code":           code,
	}
}

func TestValidateCodeEndpoint(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, http.MethodPost, "/api/referral/validate-code", map[string]string{"code": "jane1234"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "referral", body["type"])
	assert.Equal(t, "10.00", body["discount_percentage"])

	status, body = a.do(t, http.MethodPost, "/api/referral/validate-code", map[string]string{"code": "FRIEND42"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, true, body["success"])

	status, _ = a.do(t, http.MethodPost, "/api/referral/validate-code", []byte("{broken"))
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodPost, "/api/referral/validate-code", map[string]string{"code": "jane1234"})
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestBookingEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, http.MethodPost, "/api/bookings", map[string]interface{}{"customer_email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := body["data"].(map[string]interface{})
	assert.Contains(t, fields, "customer_email")
	assert.Contains(t, fields, "customer_name")

	status, _ = a.do(t, http.MethodPost, "/api/bookings", bookingBody("SALE20"))
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodPost, "/api/bookings", bookingBody("JANE1234"))
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]interface{})
	code := data["booking_code"].(string)
	// 80 + 20 + 25 = 125, less 10% referral.
	assert.Equal(t, "112.50", data["total_amount"])

	status, _ = a.do(t, http.MethodGet, "/api/bookings/"+code, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = a.do(t, http.MethodPost, "/api/bookings/"+code+"/checkout", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "tok-"+code, body["data"].(map[string]interface{})["snap_token"])

	status, body = a.do(t, http.MethodGet, "/api/bookings/BK-MISSING0", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestReferralEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, http.MethodPost, "/api/referral/register", map[string]string{"name": "Bob Stone", "email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, status)
	code := body["data"].(map[string]interface{})["referral_code"].(string)

	status, _ = a.do(t, http.MethodPost, "/api/referral/register", map[string]string{"name": "Bob Stone", "email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = a.do(t, http.MethodGet, "/api/referral/dashboard?code="+code, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0.00", body["data"].(map[string]interface{})["referrer"].(map[string]interface{})["total_earned"])

	status, _ = a.do(t, http.MethodGet, "/api/referral/dashboard", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(t, http.MethodGet, "/api/referral/dashboard?code=NOBODY99", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = a.do(t, http.MethodGet, "/api/referral/levels", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestAdminEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.do(t, http.MethodGet, "/api/admin/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = a.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "admin@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "admin@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	auth := []string{"Authorization", "Bearer " + body["data"].(map[string]interface{})["access_token"].(string)}

	status, body = a.do(t, http.MethodPost, "/api/bookings", bookingBody("JANE1234"))
	require.Equal(t, http.StatusCreated, status)
	code := body["data"].(map[string]interface{})["booking_code"].(string)

	status, _ = a.do(t, http.MethodPatch, "/api/admin/bookings/"+code+"/status", map[string]string{"status": "completed"}, auth...)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = a.do(t, http.MethodPatch, "/api/admin/bookings/"+code+"/status", map[string]string{"status": "bogus"}, auth...)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodPost, "/api/admin/commissions/"+code+"/process", nil, auth...)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not_eligible", body["data"].(map[string]interface{})["outcome"])

	status, body = a.do(t, http.MethodPost, "/api/admin/commissions/process-pending", nil, auth...)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["total"])

	status, _ = a.do(t, http.MethodPost, "/api/admin/promo-codes", map[string]interface{}{"code": "WINTER5", "discount_amount": 5}, auth...)
	assert.Equal(t, http.StatusCreated, status)

	status, body = a.do(t, http.MethodGet, "/api/admin/bookings?status=pending", nil, auth...)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = a.do(t, http.MethodGet, "/api/admin/logs", nil, auth...)
	assert.Equal(t, http.StatusOK, status)
}

func TestGatewayWebhookEndpoint(t *testing.T) {
	a := newTestApp(t)
	payload := []byte(`{"id":"evt_1","type":"customer.created","data":{"object":{}}}`)

	status, _ := a.do(t, http.MethodPost, "/api/webhooks/gateway", payload, GatewaySignatureHeader, "00")
	assert.Equal(t, http.StatusUnauthorized, status)

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	status, body := a.do(t, http.MethodPost, "/api/webhooks/gateway", payload, GatewaySignatureHeader, hex.EncodeToString(mac.Sum(nil)))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]interface{})["received"])

	broken := []byte(`{"type":"x"}`)
	mac = hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(broken)
	status, _ = a.do(t, http.MethodPost, "/api/webhooks/gateway", broken, GatewaySignatureHeader, hex.EncodeToString(mac.Sum(nil)))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMidtransNotificationEndpoint(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, http.MethodPost, "/api/bookings", bookingBody(""))
	require.Equal(t, http.StatusCreated, status)
	code := body["data"].(map[string]interface{})["booking_code"].(string)

	req := map[string]string{
		"transaction_status": "settlement",
		"order_id":           code,
		"status_code":        "200",
		"gross_amount":       "125.00",
		"signature_key":      service.MidtransSignature(code, "200", "125.00", "server-key"),
	}
	status, _ = a.do(t, http.MethodPost, "/api/payment/midtrans/notification", req)
	assert.Equal(t, http.StatusOK, status)

	status, body = a.do(t, http.MethodGet, "/api/bookings/"+code, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", body["data"].(map[string]interface{})["payment_status"])

	req["signature_key"] = "bad"
	status, _ = a.do(t, http.MethodPost, "/api/payment/midtrans/notification", req)
	assert.Equal(t, http.StatusUnauthorized, status)
}

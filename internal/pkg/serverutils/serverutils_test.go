package serverutils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"cleaning-booking-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Code         string `json:"code" validate:"required,min=3"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(sampleRequest{Code: "AB", ContactEmail: "nope"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at least 3", verr.Fields["code"])
	assert.Equal(t, "must be a valid email", verr.Fields["contact_email"])

	assert.NoError(t, ValidateRequest(sampleRequest{Code: "ABC", ContactEmail: "a@b.co"}))
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/validation", func(ctx *fiber.Ctx) error {
		return ValidateRequest(sampleRequest{})
	})
	app.Get("/fiber", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Booking not found")
	})
	app.Get("/plain", func(ctx *fiber.Ctx) error {
		return errors.New("boom")
	})
	return app
}

func decode(t *testing.T, app *fiber.App, path string) (int, BaseResponse[any]) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newApp()

	status, body := decode(t, app, "/validation")
	assert.Equal(t, 400, status)
	assert.False(t, body.Success)
	assert.NotNil(t, body.Data)

	status, body = decode(t, app, "/fiber")
	assert.Equal(t, 404, status)
	assert.Equal(t, "Booking not found", body.Message)

	status, body = decode(t, app, "/plain")
	assert.Equal(t, 500, status)
	assert.Equal(t, "boom", body.Message)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", JwtMiddleware("secret", RoleAdmin), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", ctx.Locals("subject")))
	})

	call := func(header string) int {
		req := httptest.NewRequest("GET", "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	good, _, err := IssueToken("secret", "admin@example.com", RoleAdmin, time.Minute)
	require.NoError(t, err)
	wrongRole, _, err := IssueToken("secret", "x@example.com", "customer", time.Minute)
	require.NoError(t, err)
	wrongSecret, _, err := IssueToken("other", "admin@example.com", RoleAdmin, time.Minute)
	require.NoError(t, err)
	expired, _, err := IssueToken("secret", "admin@example.com", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 200, call("Bearer "+good))
	assert.Equal(t, 401, call(""))
	assert.Equal(t, 401, call("Bearer "+wrongSecret))
	assert.Equal(t, 401, call("Bearer "+expired))
	assert.Equal(t, 403, call("Bearer "+wrongRole))
}

type memCounter struct {
	counts map[string]int64
	err    error
}

func (c *memCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &memCounter{counts: map[string]int64{}}
	app := fiber.New()
	app.Post("/validate", RateLimit(counter, "validate", 2, time.Hour, logger.NewNopLogger()), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(200)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/validate", nil), -1)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, 429}, statuses)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &memCounter{err: errors.New("redis down")}
	app := fiber.New()
	app.Post("/validate", RateLimit(counter, "validate", 1, time.Minute, logger.NewNopLogger()), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(200)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/validate", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

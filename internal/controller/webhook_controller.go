package controller

import (
	"errors"

	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const GatewaySignatureHeader = "X-Gateway-Signature"

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Gateway(ctx *fiber.Ctx) error
	MidtransNotification(ctx *fiber.Ctx) error
}

type webhookController struct {
	service service.IWebhookService
}

func NewWebhookController(service service.IWebhookService) IWebhookController {
	return &webhookController{service: service}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/gateway", c.Gateway)
	r.Post("/payment/midtrans/notification", c.MidtransNotification)
}

// respond returns 5xx for hard failures so the sender retries the delivery.
func (c *webhookController) respond(ctx *fiber.Ctx, res *dto.WebhookResponse, err error) error {
	if err == nil {
		return ctx.JSON(serverutils.SuccessResponse("Webhook received", res))
	}
	if errors.Is(err, service.ErrInvalidSignature) || errors.Is(err, service.ErrInvalidRequest) {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, "Webhook processing failed"))
}

func (c *webhookController) Gateway(ctx *fiber.Ctx) error {
	// Copy: fasthttp reuses the body buffer after the handler returns.
	body := append([]byte(nil), ctx.Body()...)
	if err := c.service.VerifyGatewaySignature(body, ctx.Get(GatewaySignatureHeader)); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.service.HandleGatewayEvent(ctx.UserContext(), body)
	return c.respond(ctx, res, err)
}

func (c *webhookController) MidtransNotification(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid request body"))
	}

	res, err := c.service.HandleMidtransNotification(ctx.UserContext(), &req)
	return c.respond(ctx, res, err)
}

package controller

import (
	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReferralController interface {
	RegisterRoutes(r fiber.Router)
	ValidateCode(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	Dashboard(ctx *fiber.Ctx) error
	Levels(ctx *fiber.Ctx) error
}

type referralController struct {
	service     service.IReferralService
	rateLimiter fiber.Handler
	logger      logger.ILogger
}

// NewReferralController guards validate-code with rateLimiter. A nil limiter
// leaves the route open.
func NewReferralController(service service.IReferralService, rateLimiter fiber.Handler, logger logger.ILogger) IReferralController {
	if rateLimiter == nil {
		rateLimiter = func(ctx *fiber.Ctx) error { return ctx.Next() }
	}
	return &referralController{service: service, rateLimiter: rateLimiter, logger: logger}
}

func (c *referralController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/referral")
	h.Post("/validate-code", c.rateLimiter, c.ValidateCode)
	h.Post("/register", c.Register)
	h.Get("/dashboard", c.Dashboard)
	h.Get("/levels", c.Levels)
}

// ValidateCode answers 200 for every outcome; the UI reads success and valid.
func (c *referralController) ValidateCode(ctx *fiber.Ctx) error {
	var req dto.ValidateCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.JSON(dto.ValidateCodeResponse{Type: "none", Message: "Invalid request body"})
	}

	res, err := c.service.ValidateCode(ctx.UserContext(), req.Code)
	if err != nil {
		c.logger.Error("REFERRAL", "Code validation failed", map[string]interface{}{"error": err.Error()})
		return ctx.JSON(dto.ValidateCodeResponse{Type: "none", Message: "Unable to validate code right now"})
	}
	return ctx.JSON(res)
}

func (c *referralController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterReferrerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RegisterReferrer(ctx.UserContext(), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Referrer registered", res))
}

func (c *referralController) Dashboard(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "code is required"))
	}

	res, err := c.service.GetDashboard(ctx.UserContext(), code)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Referral dashboard", res))
}

func (c *referralController) Levels(ctx *fiber.Ctx) error {
	res, err := c.service.ListLevels(ctx.UserContext())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Referral levels", res))
}

package controller

import (
	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBookingController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
}

type bookingController struct {
	service service.IBookingService
}

func NewBookingController(service service.IBookingService) IBookingController {
	return &bookingController{service: service}
}

func (c *bookingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/bookings")
	h.Post("/", c.Create)
	h.Get("/:code", c.Get)
	h.Post("/:code/checkout", c.Checkout)
}

func (c *bookingController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateBookingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateBooking(ctx.UserContext(), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Booking created", res))
}

func (c *bookingController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.GetBooking(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Booking found", res))
}

func (c *bookingController) Checkout(ctx *fiber.Ctx) error {
	res, err := c.service.Checkout(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

package controller

import (
	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	ListBookings(ctx *fiber.Ctx) error
	UpdateBookingStatus(ctx *fiber.Ctx) error
	ProcessCommission(ctx *fiber.Ctx) error
	ProcessPendingCommissions(ctx *fiber.Ctx) error
	CreatePromoCode(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
}

type adminController struct {
	service         service.IAdminService
	bookingService  service.IBookingService
	referralService service.IReferralService
	jwtSecret       string
}

func NewAdminController(
	service service.IAdminService,
	bookingService service.IBookingService,
	referralService service.IReferralService,
	jwtSecret string,
) IAdminController {
	return &adminController{
		service:         service,
		bookingService:  bookingService,
		referralService: referralService,
		jwtSecret:       jwtSecret,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/login", c.Login)

	auth := serverutils.JwtMiddleware(c.jwtSecret, serverutils.RoleAdmin)
	h.Get("/bookings", auth, c.ListBookings)
	h.Patch("/bookings/:code/status", auth, c.UpdateBookingStatus)
	h.Post("/commissions/process-pending", auth, c.ProcessPendingCommissions)
	h.Post("/commissions/:code/process", auth, c.ProcessCommission)
	h.Post("/promo-codes", auth, c.CreatePromoCode)
	h.Get("/logs", auth, c.GetLogs)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *adminController) ListBookings(ctx *fiber.Ctx) error {
	var req dto.BookingListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	res, err := c.bookingService.ListBookings(ctx.UserContext(), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Bookings", res))
}

func (c *adminController) UpdateBookingStatus(ctx *fiber.Ctx) error {
	var req dto.UpdateBookingStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.bookingService.UpdateStatus(ctx.UserContext(), ctx.Params("code"), entity.BookingStatus(req.Status))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Booking status updated", res))
}

// ProcessCommission always answers 200 with the processor result; declined
// bookings are not errors.
func (c *adminController) ProcessCommission(ctx *fiber.Ctx) error {
	res, err := c.referralService.ProcessBookingCommission(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return ctx.JSON(serverutils.BaseResponse[any]{Success: false, Code: fiber.StatusOK, Message: "Commission processing failed: " + err.Error()})
	}
	return ctx.JSON(serverutils.BaseResponse[any]{Success: res.Success, Code: fiber.StatusOK, Message: res.Message, Data: res})
}

func (c *adminController) ProcessPendingCommissions(ctx *fiber.Ctx) error {
	res, err := c.referralService.ProcessAllPendingCommissions(ctx.UserContext())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Pending commissions processed", res))
}

func (c *adminController) CreatePromoCode(ctx *fiber.Ctx) error {
	var req dto.CreatePromoCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.referralService.CreatePromoCode(ctx.UserContext(), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Promo code created", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	var req dto.LogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	res, err := c.service.GetLogs(ctx.UserContext(), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs", res))
}

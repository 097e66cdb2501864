package controller

import (
	"errors"

	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrBookingNotFound, fiber.StatusNotFound},
	{service.ErrReferrerNotFound, fiber.StatusNotFound},
	{service.ErrInvalidCode, fiber.StatusBadRequest},
	{service.ErrInvalidRequest, fiber.StatusBadRequest},
	{service.ErrPromoInvalid, fiber.StatusBadRequest},
	{service.ErrInvalidTransition, fiber.StatusConflict},
	{service.ErrAlreadyPaid, fiber.StatusConflict},
	{service.ErrEmailTaken, fiber.StatusConflict},
	{service.ErrPromoExists, fiber.StatusConflict},
	{service.ErrInvalidSignature, fiber.StatusUnauthorized},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
}

// writeError maps service sentinels onto HTTP statuses. Anything else goes to
// the error handler middleware as a 500.
func writeError(ctx *fiber.Ctx, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return ctx.Status(s.status).JSON(serverutils.ErrorResponse(s.status, err.Error()))
		}
	}
	return err
}

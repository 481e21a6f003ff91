package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/identity"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/repository"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

const (
	msgSomethingWentWrong = "Something went wrong"

	// statusClientClosedRequest marks requests abandoned by the caller.
	statusClientClosedRequest = 499
)

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

// respondError maps domain errors onto status codes. Anything unrecognised
// is logged, reported to Sentry and hidden behind a generic 500.
func respondError(c *fiber.Ctx, action string, err error) error {
	var fields donor.FieldErrors
	var blocked *donor.BlockedError

	switch {
	case errors.As(err, &fields):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Please fix the highlighted fields", Fields: fields,
		})
	case errors.Is(err, donor.ErrDonationIntervalNotMet):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error:   true,
			Message: err.Error(),
			Fields:  map[string]string{donor.FieldLastDonationDate: err.Error()},
		})
	case errors.As(err, &blocked):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: blocked.Error(), Reasons: blocked.Reasons,
		})
	case errors.Is(err, services.ErrLoginRequired):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrSubmissionInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Your previous submission is still being saved",
		})
	case errors.Is(err, repository.ErrDonorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Donor profile not found",
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Info("request abandoned", "action", action, "error", err)
		return c.Status(statusClientClosedRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Request cancelled",
		})
	}

	slog.Error("request failed",
		"action", action,
		"user_id", identity.From(c).UserID,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err,
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: msgSomethingWentWrong,
	})
}

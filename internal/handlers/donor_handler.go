package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/identity"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/services"
	"github.com/gofiber/fiber/v2"
)

// DonorHandler serves the signed-in donor's own record.
type DonorHandler struct {
	donors *services.DonorService
}

func NewDonorHandler(donors *services.DonorService) *DonorHandler {
	return &DonorHandler{donors: donors}
}

func (h *DonorHandler) Me(c *fiber.Ctx) error {
	rec, err := h.donors.Get(c.UserContext(), identity.From(c))
	if err != nil {
		return respondError(c, "donor_get", err)
	}
	return c.JSON(dto.NewDonorResponse(rec))
}

func (h *DonorHandler) Submit(c *fiber.Ctx) error {
	var req dto.DonorSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	rec, err := h.donors.Submit(c.UserContext(), identity.From(c), &req)
	if err != nil {
		return respondError(c, "donor_submit", err)
	}
	return c.JSON(dto.NewDonorResponse(rec))
}

func (h *DonorHandler) SetAvailability(c *fiber.Ctx) error {
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	rec, err := h.donors.SetAvailability(c.UserContext(), identity.From(c), &req)
	if err != nil {
		return respondError(c, "availability_update", err)
	}
	return c.JSON(dto.NewDonorResponse(rec))
}

func (h *DonorHandler) Toggle(c *fiber.Ctx) error {
	var req dto.ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	rec, err := h.donors.Toggle(c.UserContext(), identity.From(c), req.Available)
	if err != nil {
		return respondError(c, "availability_toggle", err)
	}
	return c.JSON(dto.NewDonorResponse(rec))
}

func (h *DonorHandler) SaveProfile(c *fiber.Ctx) error {
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	rec, err := h.donors.SaveProfile(c.UserContext(), identity.From(c), &req)
	if err != nil {
		return respondError(c, "profile_save", err)
	}
	return c.JSON(dto.NewDonorResponse(rec))
}

func (h *DonorHandler) EligibilityRules(c *fiber.Ctx) error {
	return c.JSON(dto.EligibilityRulesResponse{
		Rules:                   donor.Rules,
		MinDonationIntervalDays: donor.MinDonationIntervalDays,
	})
}

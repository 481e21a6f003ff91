package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AssistantHandler struct {
	assistant *services.AssistantService
}

func NewAssistantHandler(assistant *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.assistant.Reply(c.UserContext(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Message must be between 1 and 1000 characters",
			})
		}
		return respondError(c, "assistant_chat", err)
	}
	return c.JSON(resp)
}

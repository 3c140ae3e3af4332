package controller

import (
	"errors"

	"banking-assistant-be/internal/dto"
	"banking-assistant-be/internal/pkg/serverutils"
	"banking-assistant-be/internal/service"
	"banking-assistant-be/pkg/rag/executor"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("ask", c.Ask)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions", c.GetAllSessions)
	h.Get("sessions/:id/history", c.GetHistory)
	h.Delete("sessions/:id", c.DeleteSession)
}

func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistantService.Ask(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, executor.ErrUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(serverutils.ErrorResponse(503, "Assistant temporarily unavailable, please retry"))
		}
		if err.Error() == "session not found" {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask assistant", res))
}

func (c *assistantController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.assistantService.CreateSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *assistantController) GetAllSessions(ctx *fiber.Ctx) error {
	res, err := c.assistantService.GetAllSessions(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *assistantController) GetHistory(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.assistantService.GetHistory(ctx.Context(), id)
	if err != nil {
		if err.Error() == "session not found" {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *assistantController) DeleteSession(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	err = c.assistantService.DeleteSession(ctx.Context(), id)
	if err != nil {
		if err.Error() == "session not found" {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

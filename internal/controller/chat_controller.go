package controller

import (
	"neuro-chat-be/internal/dto"
	"neuro-chat-be/internal/pkg/serverutils"
	"neuro-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetChat(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetMessagesStatus(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("getChat", c.GetChat)
	h.Post("sendMessage", c.SendMessage)
	h.Post("getMessagesStatus", c.GetMessagesStatus)
}

func (c *chatController) GetChat(ctx *fiber.Ctx) error {
	var req dto.GetChatRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if req.PageNumber == 0 {
		req.PageNumber = 1
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.GetChat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) GetMessagesStatus(ctx *fiber.Ctx) error {
	var req dto.GetMessagesStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.GetMessagesStatus(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

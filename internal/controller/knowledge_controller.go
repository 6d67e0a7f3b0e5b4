package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Link(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Touch(ctx *fiber.Ctx) error
	Unlink(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research/v1/:id/knowledge")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Link)
	h.Get("", c.List)
	h.Put(":linkId/touch", c.Touch)
	h.Delete(":linkId", c.Unlink)
}

func (c *knowledgeController) Link(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	var req dto.LinkKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Link(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success link knowledge", res))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	res, err := c.knowledgeService.List(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list knowledge links", res))
}

func (c *knowledgeController) Touch(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	linkIdParam := ctx.Params("linkId")
	linkId, _ := uuid.Parse(linkIdParam)

	if err := c.knowledgeService.Touch(ctx.Context(), userId, sessionId, linkId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success touch knowledge link", nil))
}

func (c *knowledgeController) Unlink(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	linkIdParam := ctx.Params("linkId")
	linkId, _ := uuid.Parse(linkIdParam)

	if err := c.knowledgeService.Unlink(ctx.Context(), userId, sessionId, linkId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success unlink knowledge", nil))
}

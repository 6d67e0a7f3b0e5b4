package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ToggleBookmark(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
}

type historyController struct {
	historyService service.IHistoryService
}

func NewHistoryController(historyService service.IHistoryService) IHistoryController {
	return &historyController{
		historyService: historyService,
	}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research/v1/:id/history")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Put("bookmark", c.ToggleBookmark)
	h.Post("restore", c.Restore)
}

func (c *historyController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	bookmarkedOnly := ctx.QueryBool("bookmarked")
	limit := ctx.QueryInt("limit")

	res, err := c.historyService.List(ctx.Context(), userId, sessionId, bookmarkedOnly, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list session history", res))
}

func (c *historyController) ToggleBookmark(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	var req dto.ToggleBookmarkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.historyService.ToggleBookmark(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update bookmark", nil))
}

func (c *historyController) Restore(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	var req dto.RestoreVersionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.historyService.Restore(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restore version", res))
}

package handler

import (
	"os"

	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/service"
	internalWS "ai-research-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StreamHandler upgrades authenticated clients onto a session's progress
// stream.
type StreamHandler struct {
	lifecycle service.ILifecycleService
	hub       *internalWS.Hub
	logger    logger.ILogger
}

func NewStreamHandler(lifecycle service.ILifecycleService, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		lifecycle: lifecycle,
		hub:       hub,
		logger:    log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on websocket handshakes, so the token
	// arrives as a query param; tooling may still use the header.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("StreamHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	// Ownership check before the upgrade; NotFound doubles as access denial.
	if _, err := h.lifecycle.Show(c.Context(), userID, sessionID); err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Starting stream session", map[string]interface{}{
				"session_id": sessionID,
				"user_id":    userID,
			})
			internalWS.ServeWs(h.hub, conn, sessionID, userID)
			h.logger.Info("StreamHandler", "Stream session ended", map[string]interface{}{
				"session_id": sessionID,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the stream route.
func (h *StreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/research/v1/:id/stream", h.ServeWs)
}

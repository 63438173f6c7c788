// Package router đăng ký các route thuộc domain voice assistant.
package router

import (
	"fmt"

	assistanthdl "agentic_voice/internal/api/assistant/handler"
	"agentic_voice/internal/api/middleware"
	apirouter "agentic_voice/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký tất cả route assistant lên v1.
// Toàn bộ route yêu cầu role admin; xóa assistant yêu cầu role phá hủy.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	assistantHandler, err := assistanthdl.NewAssistantHandler()
	if err != nil {
		return fmt.Errorf("failed to create assistant handler: %w", err)
	}

	adminMW := []fiber.Handler{middleware.AdminMiddleware()}
	destructive := middleware.RequireDestructiveRole

	// Route tĩnh đăng ký trước route có param để Fiber match đúng
	apirouter.RegisterRouteWithMiddleware(v1, "/assistants", "POST", "/test-connection", adminMW, assistantHandler.HandleTestConnection)
	apirouter.RegisterRouteWithMiddleware(v1, "/assistants", "GET", "", adminMW, assistantHandler.HandleListAssistants)
	apirouter.RegisterRouteWithMiddleware(v1, "/assistants", "POST", "", adminMW, assistantHandler.HandleCreateAssistant)
	apirouter.RegisterRouteWithMiddleware(v1, "/assistants", "GET", "/:id", adminMW, assistantHandler.HandleGetAssistant)
	apirouter.RegisterRouteWithMiddleware(v1, "/assistants", "PUT", "/:id", adminMW, assistantHandler.HandleUpdateAssistant)
	apirouter.RegisterRouteWithMiddleware(v1, "/assistants", "DELETE", "/:id", adminMW, destructive(assistantHandler.HandleDeleteAssistant))

	return nil
}

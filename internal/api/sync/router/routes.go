// Package router đăng ký các route thuộc domain sync.
package router

import (
	"fmt"

	"agentic_voice/internal/api/middleware"
	apirouter "agentic_voice/internal/api/router"
	synchdl "agentic_voice/internal/api/sync/handler"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký tất cả route sync lên v1.
// Toàn bộ route yêu cầu role admin; bulk sync là thao tác nặng, yêu cầu role phá hủy.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	syncHandler, err := synchdl.NewSyncHandler()
	if err != nil {
		return fmt.Errorf("failed to create sync handler: %w", err)
	}

	adminMW := []fiber.Handler{middleware.AdminMiddleware()}
	destructive := middleware.RequireDestructiveRole

	// Các path tĩnh đăng ký trước các path có tham số
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/users", "POST", "/register", adminMW, syncHandler.HandleRegisterUser)
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/users", "POST", "/bulk", adminMW, destructive(syncHandler.HandleBulkSync))
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/users", "GET", "/:userId/status", adminMW, syncHandler.HandleGetSyncStatus)
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/users", "POST", "/:userId/force", adminMW, syncHandler.HandleForceSync)
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/users", "GET", "/:userId/consistency", adminMW, syncHandler.HandleValidateConsistency)
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/users", "POST", "/:userId/resolve", adminMW, syncHandler.HandleResolveConflicts)
	apirouter.RegisterRouteWithMiddleware(v1, "/sync/platforms", "GET", "/health", adminMW, syncHandler.HandlePlatformHealth)

	return nil
}

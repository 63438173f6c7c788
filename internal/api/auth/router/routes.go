// Package router đăng ký các route thuộc domain auth: System, Auth, User CRUD.
package router

import (
	"fmt"

	authhdl "agentic_voice/internal/api/auth/handler"
	basehdl "agentic_voice/internal/api/base/handler"
	"agentic_voice/internal/api/middleware"
	apirouter "agentic_voice/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký tất cả route auth (system, auth, user CRUD) lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}
	if err := registerAuthRoutes(v1); err != nil {
		return err
	}
	if err := registerUserRoutes(v1, r); err != nil {
		return err
	}
	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("failed to create system handler: %w", err)
	}
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}

func registerAuthRoutes(router fiber.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	router.Post("/auth/register", userHandler.HandleRegister)
	router.Post("/auth/login", userHandler.HandleLogin)

	authOnlyMiddleware := middleware.AuthMiddleware()
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "POST", "/logout", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleLogout)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "GET", "/me", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleMe)
	return nil
}

func registerUserRoutes(router fiber.Router, r *apirouter.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	// User CRUD chỉ dành cho admin dashboard; thao tác ghi/xóa yêu cầu role phá hủy
	adminMiddleware := middleware.AdminMiddleware()
	r.RegisterCRUDRoutes(router, "/users", userHandler, apirouter.ReadWriteConfig, adminMiddleware, middleware.RequireDestructiveRole)
	return nil
}

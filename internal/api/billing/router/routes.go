// Package router đăng ký các route thuộc domain billing.
package router

import (
	"fmt"

	billinghdl "agentic_voice/internal/api/billing/handler"
	"agentic_voice/internal/api/middleware"
	apirouter "agentic_voice/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký tất cả route billing lên v1. Toàn bộ route yêu cầu role admin.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	billingHandler, err := billinghdl.NewBillingHandler()
	if err != nil {
		return fmt.Errorf("failed to create billing handler: %w", err)
	}

	adminMW := []fiber.Handler{middleware.AdminMiddleware()}

	apirouter.RegisterRouteWithMiddleware(v1, "/billing", "POST", "/test-connection", adminMW, billingHandler.HandleTestConnection)

	// Route tĩnh đăng ký trước route có param để Fiber match đúng
	apirouter.RegisterRouteWithMiddleware(v1, "/billing/customers", "GET", "/list-all", adminMW, billingHandler.HandleListAllCustomers)
	apirouter.RegisterRouteWithMiddleware(v1, "/billing/customers", "GET", "/find-by-email", adminMW, billingHandler.HandleFindCustomerByEmail)
	apirouter.RegisterRouteWithMiddleware(v1, "/billing/customers", "POST", "/from-user/:userId", adminMW, billingHandler.HandleCreateCustomerForUser)
	apirouter.RegisterRouteWithMiddleware(v1, "/billing/customers", "GET", "/:id", adminMW, billingHandler.HandleGetCustomer)
	apirouter.RegisterRouteWithMiddleware(v1, "/billing/customers", "PUT", "/:id", adminMW, billingHandler.HandleUpdateCustomer)

	return nil
}

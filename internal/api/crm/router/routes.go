// Package router đăng ký các route thuộc domain CRM.
package router

import (
	"fmt"

	crmhdl "agentic_voice/internal/api/crm/handler"
	"agentic_voice/internal/api/middleware"
	apirouter "agentic_voice/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký tất cả route CRM lên v1.
//
// Toàn bộ route CRM yêu cầu role admin (ADMIN, GOD_MODE, MARKETING). Các thao tác
// phá hủy (archive, batch archive) được gate thêm ở tầng handler: chỉ ADMIN và GOD_MODE.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	settingsHandler, err := crmhdl.NewCrmSettingsHandler()
	if err != nil {
		return fmt.Errorf("failed to create crm settings handler: %w", err)
	}

	hubspotHandler, err := crmhdl.NewHubSpotHandler()
	if err != nil {
		return fmt.Errorf("failed to create hubspot handler: %w", err)
	}

	adminMW := []fiber.Handler{middleware.AdminMiddleware()}
	destructive := middleware.RequireDestructiveRole

	// Cấu hình CRM
	apirouter.RegisterRouteWithMiddleware(v1, "/crm", "GET", "/settings", adminMW, settingsHandler.HandleGetSettings)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm", "PUT", "/settings", adminMW, settingsHandler.HandleUpdateSettings)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm", "POST", "/settings/test-connection", adminMW, hubspotHandler.HandleTestConnection)

	// Contacts — route tĩnh đăng ký trước route có param để Fiber match đúng
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "POST", "/search", adminMW, hubspotHandler.HandleSearchContacts)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "GET", "/find-by-email", adminMW, hubspotHandler.HandleFindContactByEmail)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "GET", "/list-all", adminMW, hubspotHandler.HandleListAllContacts)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "POST", "/upsert", adminMW, hubspotHandler.HandleUpsertContact)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "POST", "/batch/update", adminMW, hubspotHandler.HandleBatchUpdateContacts)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "POST", "/batch/archive", adminMW, destructive(hubspotHandler.HandleBatchArchiveContacts))
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "POST", "", adminMW, hubspotHandler.HandleCreateContact)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "GET", "/:id", adminMW, hubspotHandler.HandleGetContact)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "PUT", "/:id", adminMW, hubspotHandler.HandleUpdateContact)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "DELETE", "/:id", adminMW, destructive(hubspotHandler.HandleArchiveContact))
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/contacts", "PUT", "/:id/lead-score", adminMW, hubspotHandler.HandleUpdateLeadScore)

	// Generic objects (companies, deals, tickets)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/objects", "POST", "/:objectType/search", adminMW, hubspotHandler.HandleSearchObjects)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/objects", "POST", "/:objectType", adminMW, hubspotHandler.HandleCreateObject)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/objects", "GET", "/:objectType/:id", adminMW, hubspotHandler.HandleGetObject)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/objects", "PUT", "/:objectType/:id", adminMW, hubspotHandler.HandleUpdateObject)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm/objects", "DELETE", "/:objectType/:id", adminMW, destructive(hubspotHandler.HandleArchiveObject))

	// Associations, engagements, imports
	apirouter.RegisterRouteWithMiddleware(v1, "/crm", "POST", "/associations", adminMW, hubspotHandler.HandleAssociate)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm", "POST", "/engagements", adminMW, hubspotHandler.HandleCreateEngagement)
	apirouter.RegisterRouteWithMiddleware(v1, "/crm", "POST", "/imports", adminMW, hubspotHandler.HandleSubmitImport)

	return nil
}

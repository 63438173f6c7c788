// Package crmhdl - handler cho domain CRM.
package crmhdl

import (
	"fmt"

	models "agentic_voice/internal/api/auth/models"
	basehdl "agentic_voice/internal/api/base/handler"
	crmdto "agentic_voice/internal/api/crm/dto"
	crmsvc "agentic_voice/internal/api/crm/service"
	"agentic_voice/internal/common"

	"github.com/gofiber/fiber/v3"
)

// CrmSettingsHandler xử lý các route cấu hình CRM
type CrmSettingsHandler struct {
	SettingsService *crmsvc.CrmSettingsService
}

// NewCrmSettingsHandler tạo mới CrmSettingsHandler
func NewCrmSettingsHandler() (*CrmSettingsHandler, error) {
	settingsService, err := crmsvc.NewCrmSettingsService()
	if err != nil {
		return nil, fmt.Errorf("failed to create crm settings service: %v", err)
	}

	return &CrmSettingsHandler{
		SettingsService: settingsService,
	}, nil
}

// HandleGetSettings trả về cấu hình CRM hiện tại
// @Router /crm/settings [get]
func (h *CrmSettingsHandler) HandleGetSettings(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		settings, err := h.SettingsService.GetSettings(c.Context())
		basehdl.HandleResponse(c, settings, err)
		return nil
	})
}

// HandleUpdateSettings cập nhật cấu hình CRM
// @Router /crm/settings [put]
func (h *CrmSettingsHandler) HandleUpdateSettings(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.CrmSettingsUpdateInput
		if err := basehdl.ParseBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := basehdl.ValidateStruct(&input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		// Ghi lại admin thực hiện thay đổi để phục vụ audit
		updatedBy := ""
		if user, ok := c.Locals("user").(models.User); ok {
			updatedBy = user.Email
		}

		settings, err := h.SettingsService.UpdateSettings(c.Context(), &input, updatedBy)
		basehdl.HandleResponse(c, settings, err)
		return nil
	})
}

// Package assistanthdl - handler cho domain voice assistant.
package assistanthdl

import (
	"errors"
	"fmt"

	vapiclient "agentic_voice/internal/api/assistant/client"
	basehdl "agentic_voice/internal/api/base/handler"
	"agentic_voice/internal/common"
	"agentic_voice/internal/global"

	"github.com/gofiber/fiber/v3"
)

// AssistantHandler xử lý các route voice assistant (Vapi)
type AssistantHandler struct {
	Vapi *vapiclient.VapiService
}

// NewAssistantHandler tạo mới AssistantHandler từ cấu hình server
func NewAssistantHandler() (*AssistantHandler, error) {
	if global.MongoDB_ServerConfig == nil {
		return nil, fmt.Errorf("server config chưa được khởi tạo")
	}

	vapi, err := vapiclient.NewVapiService(
		global.MongoDB_ServerConfig.Vapi_APIKey,
		global.MongoDB_ServerConfig.Vapi_BaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vapi service: %v", err)
	}

	return &AssistantHandler{Vapi: vapi}, nil
}

// wrapVapiError chuyển lỗi vendor sang lỗi chuẩn EXT_003, không leak body lỗi gốc
func wrapVapiError(err error) error {
	if err == nil {
		return nil
	}

	var customErr *common.Error
	if errors.As(err, &customErr) {
		return err
	}

	if apiErr, ok := vapiclient.AsAPIError(err); ok {
		return common.NewError(
			common.ErrCodeExternalVapi,
			fmt.Sprintf("Vapi trả về HTTP %d", apiErr.StatusCode),
			common.StatusBadGateway,
			nil,
		)
	}

	return common.NewError(
		common.ErrCodeExternalVapi,
		"Không kết nối được Vapi",
		common.StatusServiceUnavailable,
		nil,
	)
}

// HandleCreateAssistant tạo assistant mới
// @Router /assistants [post]
func (h *AssistantHandler) HandleCreateAssistant(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input vapiclient.AssistantInput
		if err := basehdl.ParseBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		assistant, err := h.Vapi.CreateAssistant(c.Context(), &input)
		basehdl.HandleResponse(c, assistant, wrapVapiError(err))
		return nil
	})
}

// HandleGetAssistant lấy assistant theo id. Assistant không tồn tại trả về data null.
// @Router /assistants/:id [get]
func (h *AssistantHandler) HandleGetAssistant(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		assistant, err := h.Vapi.GetAssistant(c.Context(), id)
		basehdl.HandleResponse(c, assistant, wrapVapiError(err))
		return nil
	})
}

// HandleUpdateAssistant cập nhật assistant
// @Router /assistants/:id [put]
func (h *AssistantHandler) HandleUpdateAssistant(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		var input vapiclient.AssistantInput
		if err := basehdl.ParseBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		assistant, err := h.Vapi.UpdateAssistant(c.Context(), id, &input)
		basehdl.HandleResponse(c, assistant, wrapVapiError(err))
		return nil
	})
}

// HandleDeleteAssistant xóa assistant (thao tác phá hủy)
// @Router /assistants/:id [delete]
func (h *AssistantHandler) HandleDeleteAssistant(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		err := h.Vapi.DeleteAssistant(c.Context(), id)
		basehdl.HandleResponse(c, nil, wrapVapiError(err))
		return nil
	})
}

// HandleListAssistants liệt kê assistants
// @Router /assistants [get]
func (h *AssistantHandler) HandleListAssistants(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		assistants, err := h.Vapi.ListAssistants(c.Context())
		basehdl.HandleResponse(c, fiber.Map{
			"total":      len(assistants),
			"assistants": assistants,
		}, wrapVapiError(err))
		return nil
	})
}

// HandleTestConnection kiểm tra kết nối Vapi với API key hiện tại
// @Router /assistants/test-connection [post]
func (h *AssistantHandler) HandleTestConnection(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		message, err := h.Vapi.TestConnection(c.Context())
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeExternalVapi,
				err.Error(),
				common.StatusBadGateway,
				nil,
			))
			return nil
		}
		basehdl.HandleResponse(c, fiber.Map{"message": message}, nil)
		return nil
	})
}

package crmhdl

import (
	"errors"
	"fmt"

	basehdl "agentic_voice/internal/api/base/handler"
	crmclient "agentic_voice/internal/api/crm/client"
	crmdto "agentic_voice/internal/api/crm/dto"
	crmsvc "agentic_voice/internal/api/crm/service"
	"agentic_voice/internal/common"
	"agentic_voice/internal/global"
	"agentic_voice/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// HubSpotHandler xử lý các route thao tác trực tiếp với HubSpot CRM
type HubSpotHandler struct {
	HubSpot  *crmclient.HubSpotService
	Settings *crmsvc.CrmSettingsService
}

// NewHubSpotHandler tạo mới HubSpotHandler từ cấu hình server
func NewHubSpotHandler() (*HubSpotHandler, error) {
	if global.MongoDB_ServerConfig == nil {
		return nil, fmt.Errorf("server config chưa được khởi tạo")
	}

	hubspot, err := crmclient.NewHubSpotService(
		global.MongoDB_ServerConfig.HubSpot_APIKey,
		global.MongoDB_ServerConfig.HubSpot_BaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hubspot service: %v", err)
	}

	settingsService, err := crmsvc.NewCrmSettingsService()
	if err != nil {
		return nil, fmt.Errorf("failed to create crm settings service: %v", err)
	}

	return &HubSpotHandler{HubSpot: hubspot, Settings: settingsService}, nil
}

// wrapHubSpotError chuyển lỗi vendor sang lỗi chuẩn EXT_001.
// Body lỗi gốc của HubSpot không được trả cho client, chỉ có status.
func wrapHubSpotError(err error) error {
	if err == nil {
		return nil
	}

	var customErr *common.Error
	if errors.As(err, &customErr) {
		return err
	}

	if apiErr, ok := crmclient.AsAPIError(err); ok {
		return common.NewError(
			common.ErrCodeExternalHubSpot,
			fmt.Sprintf("HubSpot trả về HTTP %d", apiErr.StatusCode),
			common.StatusBadGateway,
			nil,
		)
	}

	return common.NewError(
		common.ErrCodeExternalHubSpot,
		"Không kết nối được HubSpot",
		common.StatusServiceUnavailable,
		nil,
	)
}

// parseAndValidate parse JSON body và validate input, trả về lỗi chuẩn nếu thất bại
func parseAndValidate(c fiber.Ctx, input interface{}) error {
	if err := basehdl.ParseBody(c, input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return basehdl.ValidateStruct(input)
}

// requireParam lấy param bắt buộc từ URI, trả về lỗi chuẩn nếu rỗng
func requireParam(c fiber.Ctx, name string) (string, error) {
	value := c.Params(name)
	if value == "" {
		return "", common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Thiếu tham số '%s' trong URL", name),
			common.StatusBadRequest,
			nil,
		)
	}
	return value, nil
}

// ====================================
// CONTACTS
// ====================================

// HandleCreateContact tạo contact mới trên HubSpot
// @Router /crm/contacts [post]
func (h *HubSpotHandler) HandleCreateContact(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.ObjectCreateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		contact, err := h.HubSpot.CreateContact(c.Context(), input.Properties)
		basehdl.HandleResponse(c, contact, wrapHubSpotError(err))
		return nil
	})
}

// HandleGetContact lấy contact theo id. Contact không tồn tại trả về data null, không phải lỗi.
// @Router /crm/contacts/:id [get]
func (h *HubSpotHandler) HandleGetContact(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		contact, err := h.HubSpot.GetContact(c.Context(), id, nil)
		basehdl.HandleResponse(c, contact, wrapHubSpotError(err))
		return nil
	})
}

// HandleUpdateContact cập nhật properties của contact
// @Router /crm/contacts/:id [put]
func (h *HubSpotHandler) HandleUpdateContact(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input crmdto.ObjectUpdateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		contact, err := h.HubSpot.UpdateContact(c.Context(), id, input.Properties)
		basehdl.HandleResponse(c, contact, wrapHubSpotError(err))
		return nil
	})
}

// HandleArchiveContact archive contact (thao tác phá hủy)
// @Router /crm/contacts/:id [delete]
func (h *HubSpotHandler) HandleArchiveContact(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		err = h.HubSpot.ArchiveContact(c.Context(), id)
		basehdl.HandleResponse(c, nil, wrapHubSpotError(err))
		return nil
	})
}

// HandleSearchContacts search contacts theo filter HubSpot
// @Router /crm/contacts/search [post]
func (h *HubSpotHandler) HandleSearchContacts(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var req crmclient.SearchRequest
		if err := basehdl.ParseBody(c, &req); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		result, err := h.HubSpot.SearchContacts(c.Context(), &req)
		basehdl.HandleResponse(c, result, wrapHubSpotError(err))
		return nil
	})
}

// HandleFindContactByEmail tìm contact theo email qua query string.
// Không tìm thấy trả về data null.
// @Router /crm/contacts/find-by-email [get]
func (h *HubSpotHandler) HandleFindContactByEmail(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		email := c.Query("email")
		if email == "" {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu tham số 'email' trong query string",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		contact, err := h.HubSpot.FindContactByEmail(c.Context(), email, nil)
		basehdl.HandleResponse(c, contact, wrapHubSpotError(err))
		return nil
	})
}

// HandleUpsertContact tạo hoặc cập nhật contact theo email (lead status chỉ set một lần)
// @Router /crm/contacts/upsert [post]
func (h *HubSpotHandler) HandleUpsertContact(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.ContactUpsertInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		contact, err := h.HubSpot.CreateOrUpdateContact(c.Context(), input.Email, input.Properties)
		basehdl.HandleResponse(c, contact, wrapHubSpotError(err))
		return nil
	})
}

// HandleListAllContacts liệt kê toàn bộ contacts (duyệt hết các trang)
// @Router /crm/contacts/list-all [get]
func (h *HubSpotHandler) HandleListAllContacts(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		contacts, err := h.HubSpot.ListAllContacts(c.Context(), nil)
		basehdl.HandleResponse(c, fiber.Map{
			"total":    len(contacts),
			"contacts": contacts,
		}, wrapHubSpotError(err))
		return nil
	})
}

// HandleUpdateLeadScore cập nhật điểm lead của contact, lead status quy đổi theo bảng chính sách
// @Router /crm/contacts/:id/lead-score [put]
func (h *HubSpotHandler) HandleUpdateLeadScore(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input crmdto.LeadScoreUpdateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		contact, err := h.HubSpot.UpdateContactLeadScore(c.Context(), id, input.Score)
		basehdl.HandleResponse(c, contact, wrapHubSpotError(err))
		return nil
	})
}

// ====================================
// BATCH
// ====================================

// HandleBatchUpdateContacts batch update nhiều contact trong một lời gọi
// @Router /crm/contacts/batch/update [post]
func (h *HubSpotHandler) HandleBatchUpdateContacts(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.BatchUpdateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		items := make([]crmclient.BatchUpdateItem, 0, len(input.Inputs))
		for _, item := range input.Inputs {
			items = append(items, crmclient.BatchUpdateItem{ID: item.ID, Properties: item.Properties})
		}

		result, err := h.HubSpot.BatchUpdateContacts(c.Context(), items)
		basehdl.HandleResponse(c, result, wrapHubSpotError(err))
		return nil
	})
}

// HandleBatchArchiveContacts batch archive nhiều contact (thao tác phá hủy)
// @Router /crm/contacts/batch/archive [post]
func (h *HubSpotHandler) HandleBatchArchiveContacts(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.BatchArchiveInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		err := h.HubSpot.BatchArchiveContacts(c.Context(), input.IDs)
		basehdl.HandleResponse(c, fiber.Map{"archived": len(input.IDs)}, wrapHubSpotError(err))
		return nil
	})
}

// ====================================
// GENERIC OBJECTS (companies, deals, tickets)
// ====================================

// allowedObjectTypes các object type được phép thao tác qua route generic
var allowedObjectTypes = map[string]bool{
	crmclient.ObjectTypeCompanies: true,
	crmclient.ObjectTypeDeals:     true,
	crmclient.ObjectTypeTickets:   true,
}

// parseObjectType lấy và validate objectType từ URI params
func parseObjectType(c fiber.Ctx) (string, error) {
	objectType := c.Params("objectType")
	if !allowedObjectTypes[objectType] {
		return "", common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Object type '%s' không được hỗ trợ (chỉ companies, deals, tickets)", objectType),
			common.StatusBadRequest,
			nil,
		)
	}
	return objectType, nil
}

// HandleCreateObject tạo CRM object generic (company, deal, ticket)
// @Router /crm/objects/:objectType [post]
func (h *HubSpotHandler) HandleCreateObject(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		objectType, err := parseObjectType(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input crmdto.ObjectCreateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		object, err := h.HubSpot.CreateObject(c.Context(), objectType, input.Properties)
		basehdl.HandleResponse(c, object, wrapHubSpotError(err))
		return nil
	})
}

// HandleGetObject lấy CRM object generic theo id
// @Router /crm/objects/:objectType/:id [get]
func (h *HubSpotHandler) HandleGetObject(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		objectType, err := parseObjectType(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		object, err := h.HubSpot.GetObject(c.Context(), objectType, id, nil)
		basehdl.HandleResponse(c, object, wrapHubSpotError(err))
		return nil
	})
}

// HandleUpdateObject cập nhật CRM object generic
// @Router /crm/objects/:objectType/:id [put]
func (h *HubSpotHandler) HandleUpdateObject(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		objectType, err := parseObjectType(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input crmdto.ObjectUpdateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		object, err := h.HubSpot.UpdateObject(c.Context(), objectType, id, input.Properties)
		basehdl.HandleResponse(c, object, wrapHubSpotError(err))
		return nil
	})
}

// HandleArchiveObject archive CRM object generic (thao tác phá hủy)
// @Router /crm/objects/:objectType/:id [delete]
func (h *HubSpotHandler) HandleArchiveObject(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		objectType, err := parseObjectType(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		id, err := requireParam(c, "id")
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		err = h.HubSpot.ArchiveObject(c.Context(), objectType, id)
		basehdl.HandleResponse(c, nil, wrapHubSpotError(err))
		return nil
	})
}

// HandleSearchObjects search CRM object generic
// @Router /crm/objects/:objectType/search [post]
func (h *HubSpotHandler) HandleSearchObjects(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		objectType, err := parseObjectType(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var req crmclient.SearchRequest
		if err := basehdl.ParseBody(c, &req); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		result, err := h.HubSpot.SearchObjects(c.Context(), objectType, &req)
		basehdl.HandleResponse(c, result, wrapHubSpotError(err))
		return nil
	})
}

// ====================================
// ASSOCIATIONS / ENGAGEMENTS / IMPORTS
// ====================================

// HandleAssociate tạo association default-type giữa hai CRM object
// @Router /crm/associations [post]
func (h *HubSpotHandler) HandleAssociate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.AssociationInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		err := h.HubSpot.AssociateObjects(c.Context(), input.FromType, input.FromID, input.ToType, input.ToID)
		basehdl.HandleResponse(c, nil, wrapHubSpotError(err))
		return nil
	})
}

// HandleCreateEngagement tạo note hoặc task gắn với contact
// @Router /crm/engagements [post]
func (h *HubSpotHandler) HandleCreateEngagement(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.EngagementCreateInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		engagement, err := h.HubSpot.CreateEngagement(c.Context(), input.Type, input.ContactID, input.Properties)
		basehdl.HandleResponse(c, engagement, wrapHubSpotError(err))
		return nil
	})
}

// HandleSubmitImport submit một import job CSV lên HubSpot
// @Router /crm/imports [post]
func (h *HubSpotHandler) HandleSubmitImport(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input crmdto.ImportSubmitInput
		if err := parseAndValidate(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.HubSpot.SubmitImport(c.Context(), input.FileName, input.ImportRequest, []byte(input.CsvData))
		basehdl.HandleResponse(c, result, wrapHubSpotError(err))
		return nil
	})
}

// HandleTestConnection kiểm tra kết nối HubSpot với API key hiện tại
// @Router /crm/settings/test-connection [post]
func (h *HubSpotHandler) HandleTestConnection(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		message, err := h.HubSpot.TestConnection(c.Context())

		// Lưu chẩn đoán gần nhất vào cấu hình, lỗi ghi không làm fail request
		diagnostic := message
		if err != nil {
			diagnostic = err.Error()
		}
		if recordErr := h.Settings.RecordDiagnostic(c.Context(), diagnostic); recordErr != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"error": recordErr.Error(),
			}).Warn("Không lưu được kết quả test kết nối HubSpot")
		}

		if err != nil {
			// Trả về chuỗi chẩn đoán ngắn, không trả body lỗi đầy đủ của vendor
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeExternalHubSpot,
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

// Package synchdl - handler cho domain sync.
package synchdl

import (
	"fmt"

	basehdl "agentic_voice/internal/api/base/handler"
	syncdto "agentic_voice/internal/api/sync/dto"
	syncsvc "agentic_voice/internal/api/sync/service"
	"agentic_voice/internal/common"

	"github.com/gofiber/fiber/v3"
)

// SyncHandler xử lý các route đồng bộ user giữa các platform
type SyncHandler struct {
	SyncService *syncsvc.UserSyncService
}

// NewSyncHandler tạo mới SyncHandler
func NewSyncHandler() (*SyncHandler, error) {
	syncService, err := syncsvc.NewUserSyncService()
	if err != nil {
		return nil, fmt.Errorf("failed to create sync service: %v", err)
	}

	return &SyncHandler{SyncService: syncService}, nil
}

// HandleRegisterUser đăng ký user lên tất cả platform.
// Store thất bại trả lỗi ngay; lỗi platform ngoài nằm trong result.errors.
// @Router /sync/users/register [post]
func (h *SyncHandler) HandleRegisterUser(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input syncdto.RegisterUserInput
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

		result, err := h.SyncService.RegisterUserAcrossPlatforms(c.Context(), &input)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleGetSyncStatus trả về trạng thái đồng bộ của user trên từng platform.
// User không tồn tại (hoặc id sai định dạng) trả về 404.
// @Router /sync/users/:userId/status [get]
func (h *SyncHandler) HandleGetSyncStatus(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		statuses, err := h.SyncService.GetUserSyncStatus(c.Context(), c.Params("userId"))
		if err == nil && statuses == nil {
			basehdl.HandleResponse(c, nil, common.ErrNotFound)
			return nil
		}
		basehdl.HandleResponse(c, statuses, err)
		return nil
	})
}

// HandleForceSync đồng bộ lại một user lên tất cả platform
// @Router /sync/users/:userId/force [post]
func (h *SyncHandler) HandleForceSync(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		result, err := h.SyncService.ForceSyncUser(c.Context(), c.Params("userId"))
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleValidateConsistency đối soát dữ liệu user giữa store và các platform
// @Router /sync/users/:userId/consistency [get]
func (h *SyncHandler) HandleValidateConsistency(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		report, err := h.SyncService.ValidateUserConsistency(c.Context(), c.Params("userId"))
		basehdl.HandleResponse(c, report, err)
		return nil
	})
}

// HandleResolveConflicts giải quyết xung đột dữ liệu theo nguyên tắc store thắng
// @Router /sync/users/:userId/resolve [post]
func (h *SyncHandler) HandleResolveConflicts(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		result, err := h.SyncService.ResolveSyncConflicts(c.Context(), c.Params("userId"))
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleBulkSync đồng bộ hàng loạt user (tuần tự, không dừng khi một user lỗi)
// @Router /sync/users/bulk [post]
func (h *SyncHandler) HandleBulkSync(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input syncdto.BulkSyncInput
		// Body rỗng là hợp lệ — đồng bộ toàn bộ user
		if len(c.Body()) > 0 {
			if err := basehdl.ParseBody(c, &input); err != nil {
				basehdl.HandleResponse(c, nil, common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
					common.StatusBadRequest,
					err,
				))
				return nil
			}
		}

		result, err := h.SyncService.BulkSyncUsers(c.Context(), input.UserIDs)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandlePlatformHealth probe sức khỏe của tất cả platform
// @Router /sync/platforms/health [get]
func (h *SyncHandler) HandlePlatformHealth(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		health := h.SyncService.GetPlatformHealthStatus(c.Context())
		basehdl.HandleResponse(c, health, nil)
		return nil
	})
}

// Package authhdl - handler cho domain auth (người dùng).
package authhdl

import (
	"fmt"

	authdto "agentic_voice/internal/api/auth/dto"
	models "agentic_voice/internal/api/auth/models"
	authsvc "agentic_voice/internal/api/auth/service"
	basehdl "agentic_voice/internal/api/base/handler"
	"agentic_voice/internal/common"

	"github.com/gofiber/fiber/v3"
)

// UserHandler xử lý các route liên quan đến người dùng
type UserHandler struct {
	*basehdl.BaseHandler[models.User, authdto.UserCreateInput, authdto.UserUpdateInput]
	UserService *authsvc.UserService
}

// NewUserHandler tạo một instance mới của UserHandler
func NewUserHandler() (*UserHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}

	return &UserHandler{
		BaseHandler: basehdl.NewBaseHandler[models.User, authdto.UserCreateInput, authdto.UserUpdateInput](userService),
		UserService: userService,
	}, nil
}

// HandleRegister đăng ký người dùng mới
// @Router /auth/register [post]
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UserCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Không cho tự đăng ký với role quản trị
		if models.IsAdminRole(input.Role) {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeAuthRole,
				"Không thể tự đăng ký với role quản trị",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		user, err := h.UserService.Create(c.Context(), &input)
		h.HandleResponse(c, user, err)
		return nil
	})
}

// HandleLogin đăng nhập và cấp JWT token
// @Router /auth/login [post]
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UserLoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.UserService.Login(c.Context(), &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, fiber.Map{
			"token": user.Token,
			"user":  user,
		}, nil)
		return nil
	})
}

// HandleMe trả về thông tin người dùng hiện tại (từ token)
// @Router /auth/me [get]
func (h *UserHandler) HandleMe(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			h.HandleResponse(c, nil, common.ErrTokenInvalid)
			return nil
		}
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleLogout đăng xuất người dùng hiện tại
// @Router /auth/logout [post]
func (h *UserHandler) HandleLogout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			h.HandleResponse(c, nil, common.ErrTokenInvalid)
			return nil
		}

		err := h.UserService.Logout(c.Context(), user.ID)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

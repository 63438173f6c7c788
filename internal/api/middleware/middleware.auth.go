// Package middleware chứa các Fiber middleware (xác thực, phân quyền).
package middleware

import (
	"context"
	"strings"
	"sync"

	models "agentic_voice/internal/api/auth/models"
	authsvc "agentic_voice/internal/api/auth/service"
	basehdl "agentic_voice/internal/api/base/handler"
	"agentic_voice/internal/common"
	"agentic_voice/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuthManager quản lý xác thực và phân quyền người dùng
type AuthManager struct {
	UserCRUD *authsvc.UserService
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager trả về instance duy nhất của AuthManager (singleton pattern)
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		userService, err := authsvc.NewUserService()
		if err != nil {
			panic(err)
		}
		authManagerInstance = &AuthManager{UserCRUD: userService}
	})
	return authManagerInstance
}

// HandleErrorResponse trả về error response chuẩn từ middleware
func HandleErrorResponse(c fiber.Ctx, err error) {
	basehdl.HandleResponse(c, nil, err)
}

// AuthMiddleware middleware xác thực cho Fiber.
//
// allowedRoles giới hạn các role được truy cập route; rỗng nghĩa là chỉ cần
// đăng nhập. Token được tra trực tiếp trong collection users (field "token"
// là token mới nhất, cập nhật mỗi lần login).
func AuthMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		authManager := GetAuthManager()

		// Lấy token từ header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		// Kiểm tra định dạng token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		token := parts[1]

		// Tìm user có token
		user, err := authManager.UserCRUD.FindByToken(context.Background(), token)
		if err != nil || user == nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path": c.Path(),
			}).Warn("❌ [AUTH] Token not found in database")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Kiểm tra trạng thái tài khoản
		if user.AccountStatus != models.AccountStatusActive {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"Tài khoản không ở trạng thái hoạt động",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", user.ID.Hex())
		c.Locals("user_role", user.Role)
		c.Locals("user", *user)

		// Không yêu cầu role cụ thể — chỉ cần xác thực
		if len(allowedRoles) == 0 {
			return c.Next()
		}

		// Kiểm tra role
		for _, role := range allowedRoles {
			if user.Role == role {
				return c.Next()
			}
		}

		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id":   user.ID.Hex(),
			"user_role": user.Role,
			"path":      c.Path(),
		}).Warn("❌ [AUTH] Role not allowed for this route")
		HandleErrorResponse(c, common.NewError(
			common.ErrCodeAuthRole,
			common.MsgForbidden,
			common.StatusForbidden,
			nil,
		))
		return nil
	}
}

// AdminMiddleware cho các route admin dashboard (ADMIN, GOD_MODE, MARKETING)
func AdminMiddleware() fiber.Handler {
	return AuthMiddleware(models.RoleAdmin, models.RoleGodMode, models.RoleMarketing)
}

// RequireDestructiveRole bọc handler của các thao tác phá hủy (archive, batch
// archive, bulk sync): chỉ ADMIN và GOD_MODE được phép, MARKETING bị từ chối.
//
// Gate này nằm ở tầng handler thay vì .Use() vì middleware gắn qua group.Use()
// áp dụng cho toàn bộ prefix với mọi method — gắn thêm một tầng role hẹp hơn
// lên cùng prefix sẽ chặn nhầm cả các route chỉ đọc.
func RequireDestructiveRole(handler fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		if !models.IsDestructiveRole(user.Role) {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id":   user.ID.Hex(),
				"user_role": user.Role,
				"path":      c.Path(),
			}).Warn("❌ [AUTH] Destructive operation denied for role")
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthRole,
				"Thao tác này yêu cầu quyền quản trị cao hơn",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		return handler(c)
	}
}

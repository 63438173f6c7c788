package middleware

import (
	"net/http/httptest"
	"testing"

	models "agentic_voice/internal/api/auth/models"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAppWithRole tạo Fiber app có một route phá hủy, user đã xác thực với role cho trước
func newAppWithRole(role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("user", models.User{Role: role})
		return c.Next()
	})
	app.Delete("/danger", RequireDestructiveRole(func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}))
	return app
}

func TestRequireDestructiveRole_AdminDuocPhep(t *testing.T) {
	for _, role := range []string{models.RoleAdmin, models.RoleGodMode} {
		app := newAppWithRole(role)

		resp, err := app.Test(httptest.NewRequest("DELETE", "/danger", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "Role %s phải được phép thao tác phá hủy", role)
	}
}

func TestRequireDestructiveRole_MarketingBiTuChoi(t *testing.T) {
	app := newAppWithRole(models.RoleMarketing)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/danger", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "MARKETING chỉ được đọc, không được thao tác phá hủy")
}

func TestRequireDestructiveRole_ThieuUserTrongContext(t *testing.T) {
	app := fiber.New()
	app.Delete("/danger", RequireDestructiveRole(func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/danger", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "Không có user trong context phải bị từ chối như token không hợp lệ")
}

func TestIsDestructiveRole_BangPhanQuyen(t *testing.T) {
	assert.True(t, models.IsDestructiveRole(models.RoleAdmin))
	assert.True(t, models.IsDestructiveRole(models.RoleGodMode))
	assert.False(t, models.IsDestructiveRole(models.RoleMarketing))
	assert.False(t, models.IsDestructiveRole(models.RoleFree))
	assert.False(t, models.IsDestructiveRole(models.RolePro))
}

// Package syncdto - input DTO cho các route sync.
package syncdto

// RegisterUserInput dữ liệu đăng ký user lên tất cả platform
type RegisterUserInput struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required,min=2,max=100,no_xss"`
	Role         string `json:"role,omitempty" validate:"omitempty,oneof=FREE STARTER PRO ENTERPRISE"`
	IndustryType string `json:"industryType,omitempty" validate:"omitempty,max=100,no_xss"`
}

// BulkSyncInput dữ liệu đồng bộ hàng loạt.
// UserIDs rỗng nghĩa là đồng bộ toàn bộ user trong hệ thống.
type BulkSyncInput struct {
	UserIDs []string `json:"userIds,omitempty"`
}

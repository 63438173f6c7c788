// Package models chứa model cho domain auth (người dùng).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các giá trị role của người dùng.
// FREE/STARTER/PRO/ENTERPRISE là các gói thuê bao; ADMIN/MARKETING/GOD_MODE là role quản trị.
const (
	RoleFree       = "FREE"
	RoleStarter    = "STARTER"
	RolePro        = "PRO"
	RoleEnterprise = "ENTERPRISE"
	RoleAdmin      = "ADMIN"
	RoleMarketing  = "MARKETING"
	RoleGodMode    = "GOD_MODE"
)

// Các giá trị trạng thái tài khoản.
// Sync không bao giờ hard-delete user, chỉ chuyển accountStatus.
const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusSuspended = "SUSPENDED"
	AccountStatusInactive  = "INACTIVE"
)

// User đại diện cho người dùng trong hệ thống.
// MongoDB là hệ thống bản ghi gốc: các id ngoại (customerId, hubspotContactId,
// vapiAssistantId) được gán dần khi sync với từng platform thành công.
type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email,omitempty" index:"unique,sparse"` // Email đăng nhập, duy nhất
	Role          string             `json:"role" bson:"role"`                                   // FREE/STARTER/PRO/ENTERPRISE/ADMIN/MARKETING/GOD_MODE
	IndustryType  string             `json:"industryType" bson:"industryType,omitempty"`
	AccountStatus string             `json:"accountStatus" bson:"accountStatus"` // ACTIVE/SUSPENDED/INACTIVE

	// Các id ngoại trên các platform
	CustomerID       string `json:"customerId" bson:"customerId,omitempty" index:"single:1"`  // Stripe customer id
	HubspotContactID string `json:"hubspotContactId" bson:"hubspotContactId,omitempty"`       // HubSpot contact id
	VapiAssistantID  string `json:"vapiAssistantId" bson:"vapiAssistantId,omitempty"`         // Vapi assistant id

	// Thông tin đăng nhập
	Salt       string `json:"-" bson:"salt,omitempty"`
	Password   string `json:"-" bson:"password,omitempty"`
	Token      string `json:"-" bson:"token,omitempty"` // JWT token mới nhất
	LoginCount int    `json:"loginCount" bson:"loginCount"`
	LastLoginAt int64 `json:"lastLoginAt" bson:"lastLoginAt,omitempty"` // Unix ms

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Unix ms
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Unix ms
}

// IsAdminRole kiểm tra role có thuộc nhóm được truy cập admin dashboard không
func IsAdminRole(role string) bool {
	switch role {
	case RoleAdmin, RoleGodMode, RoleMarketing:
		return true
	}
	return false
}

// IsDestructiveRole kiểm tra role có được thực hiện thao tác phá hủy (archive, bulk sync) không.
// MARKETING chỉ được đọc/ghi thông thường.
func IsDestructiveRole(role string) bool {
	switch role {
	case RoleAdmin, RoleGodMode:
		return true
	}
	return false
}

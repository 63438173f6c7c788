// Package crmmodels - model cho domain CRM.
package crmmodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsKeyDefault là key của document cấu hình CRM duy nhất.
// Cấu hình CRM là singleton: mọi đọc/ghi đều đi qua document này.
const SettingsKeyDefault = "default"

// CrmSettings là cấu hình tích hợp CRM, lưu một document duy nhất trong MongoDB
type CrmSettings struct {
	ID                     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SettingsKey            string             `json:"settingsKey" bson:"settingsKey" index:"unique"`                        // Key định danh document (luôn là "default")
	AutoSyncEnabled        bool               `json:"autoSyncEnabled" bson:"autoSyncEnabled"`                              // Tự động sync user mới lên CRM
	SyncContactsOnRegister bool               `json:"syncContactsOnRegister" bson:"syncContactsOnRegister"`                // Tạo contact HubSpot ngay khi đăng ký
	DefaultOwnerID         string             `json:"defaultOwnerId,omitempty" bson:"defaultOwnerId,omitempty"`            // HubSpot owner gán mặc định cho contact mới
	LifecycleStage         string             `json:"lifecycleStage,omitempty" bson:"lifecycleStage,omitempty"`            // Lifecycle stage mặc định cho contact mới
	DefaultProperties      []string           `json:"defaultProperties,omitempty" bson:"defaultProperties,omitempty"`      // Danh sách property mặc định khi đọc contact
	LastDiagnostic         string             `json:"lastDiagnostic,omitempty" bson:"lastDiagnostic,omitempty"`            // Kết quả test kết nối gần nhất (chuỗi chẩn đoán ngắn)
	LastCheckedAt          int64              `json:"lastCheckedAt,omitempty" bson:"lastCheckedAt,omitempty"`              // Thời điểm test kết nối gần nhất (unix milliseconds)
	UpdatedBy              string             `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`                      // Email admin thay đổi cấu hình lần cuối
	CreatedAt              int64              `json:"createdAt,omitempty" bson:"createdAt,omitempty"`                      // Thời gian tạo (unix milliseconds)
	UpdatedAt              int64              `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`                      // Thời gian cập nhật cuối (unix milliseconds)
}

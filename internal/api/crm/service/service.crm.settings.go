// Package crmsvc - service cấu hình CRM.
package crmsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "agentic_voice/internal/api/base/service"
	crmdto "agentic_voice/internal/api/crm/dto"
	crmmodels "agentic_voice/internal/api/crm/models"
	"agentic_voice/internal/common"
	"agentic_voice/internal/global"

	"go.mongodb.org/mongo-driver/bson"
)

// CrmSettingsService quản lý document cấu hình CRM duy nhất
type CrmSettingsService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.CrmSettings]
}

// NewCrmSettingsService tạo mới CrmSettingsService
func NewCrmSettingsService() (*CrmSettingsService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CrmSettings)
	if !exist {
		return nil, fmt.Errorf("failed to get crm settings collection: %v", common.ErrNotFound)
	}

	return &CrmSettingsService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.CrmSettings](collection),
	}, nil
}

// GetSettings trả về cấu hình CRM hiện tại.
// Chưa có document nào thì trả về cấu hình mặc định (không tự tạo document).
func (s *CrmSettingsService) GetSettings(ctx context.Context) (*crmmodels.CrmSettings, error) {
	settings, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"settingsKey": crmmodels.SettingsKeyDefault}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &crmmodels.CrmSettings{
				SettingsKey:            crmmodels.SettingsKeyDefault,
				AutoSyncEnabled:        true,
				SyncContactsOnRegister: true,
			}, nil
		}
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings cập nhật cấu hình CRM (upsert vào document singleton).
// Chỉ các field được gửi lên mới bị thay đổi.
func (s *CrmSettingsService) UpdateSettings(ctx context.Context, input *crmdto.CrmSettingsUpdateInput, updatedBy string) (*crmmodels.CrmSettings, error) {
	set := map[string]interface{}{
		"settingsKey": crmmodels.SettingsKeyDefault,
		"updatedBy":   updatedBy,
	}
	if input.AutoSyncEnabled != nil {
		set["autoSyncEnabled"] = *input.AutoSyncEnabled
	}
	if input.SyncContactsOnRegister != nil {
		set["syncContactsOnRegister"] = *input.SyncContactsOnRegister
	}
	if input.DefaultOwnerID != "" {
		set["defaultOwnerId"] = input.DefaultOwnerID
	}
	if input.LifecycleStage != "" {
		set["lifecycleStage"] = input.LifecycleStage
	}
	if input.DefaultProperties != nil {
		set["defaultProperties"] = input.DefaultProperties
	}

	settings, err := s.BaseServiceMongoImpl.Upsert(ctx,
		bson.M{"settingsKey": crmmodels.SettingsKeyDefault},
		&basesvc.UpdateData{Set: set},
	)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// RecordDiagnostic lưu kết quả test kết nối gần nhất vào document cấu hình.
// Chuỗi chẩn đoán là bản ngắn dành cho admin, không chứa body lỗi của vendor.
func (s *CrmSettingsService) RecordDiagnostic(ctx context.Context, diagnostic string) error {
	_, err := s.BaseServiceMongoImpl.Upsert(ctx,
		bson.M{"settingsKey": crmmodels.SettingsKeyDefault},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"settingsKey":    crmmodels.SettingsKeyDefault,
			"lastDiagnostic": diagnostic,
			"lastCheckedAt":  time.Now().UnixMilli(),
		}},
	)
	return err
}

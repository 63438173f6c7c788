package main

import (
	"context"

	authdto "agentic_voice/internal/api/auth/dto"
	authmodels "agentic_voice/internal/api/auth/models"
	authsvc "agentic_voice/internal/api/auth/service"
	basesvc "agentic_voice/internal/api/base/service"
	crmdto "agentic_voice/internal/api/crm/dto"
	crmsvc "agentic_voice/internal/api/crm/service"
	"agentic_voice/internal/global"
	"agentic_voice/internal/logger"
)

// InitDefaultData khởi tạo dữ liệu mặc định cho hệ thống.
// Chỉ chạy khi INITMODE=true; idempotent — chạy lại không tạo trùng dữ liệu.
func InitDefaultData() {
	log := logger.GetAppLogger()

	if !global.MongoDB_ServerConfig.InitMode {
		log.Info("INITMODE disabled, skipping default data initialization")
		return
	}

	log.Info("🔄 [INIT] Starting InitDefaultData...")

	// 1. Tạo user admin GOD_MODE mặc định (nếu có config và chưa tồn tại)
	log.Info("🔄 [INIT] Step 1: Initializing admin user...")
	if err := initAdminUser(); err != nil {
		log.Warnf("Failed to initialize admin user: %v", err)
	} else {
		log.Info("✅ [INIT] Step 1: Admin user initialized")
	}

	// 2. Đảm bảo document cấu hình CRM mặc định tồn tại
	log.Info("🔄 [INIT] Step 2: Initializing default CRM settings...")
	if err := initCrmSettings(); err != nil {
		log.Warnf("Failed to initialize CRM settings: %v", err)
	} else {
		log.Info("✅ [INIT] Step 2: Default CRM settings initialized")
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}

// initAdminUser tạo user admin GOD_MODE từ ADMIN_INIT_EMAIL/ADMIN_INIT_PASSWORD.
// Không có config thì bỏ qua — admin có thể được tạo thủ công qua API sau.
func initAdminUser() error {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	if cfg.Admin_InitEmail == "" || cfg.Admin_InitPassword == "" {
		log.Info("ADMIN_INIT_EMAIL/ADMIN_INIT_PASSWORD not set, skipping admin user creation")
		return nil
	}

	userService, err := authsvc.NewUserService()
	if err != nil {
		return err
	}

	ctx := context.TODO()
	existing, err := userService.FindByEmail(ctx, cfg.Admin_InitEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		// Đã tồn tại — chỉ nâng role nếu chưa phải GOD_MODE
		if existing.Role != authmodels.RoleGodMode {
			_, err := userService.UpdateById(ctx, existing.ID, &basesvc.UpdateData{
				Set: map[string]interface{}{"role": authmodels.RoleGodMode},
			})
			if err != nil {
				return err
			}
			log.Infof("Promoted existing user %s to GOD_MODE", cfg.Admin_InitEmail)
		}
		return nil
	}

	created, err := userService.Create(ctx, &authdto.UserCreateInput{
		Name:     "System Administrator",
		Email:    cfg.Admin_InitEmail,
		Password: cfg.Admin_InitPassword,
		Role:     authmodels.RoleGodMode,
	})
	if err != nil {
		return err
	}
	log.Infof("Created admin user %s (ID: %s)", created.Email, created.ID.Hex())
	return nil
}

// initCrmSettings upsert document cấu hình CRM singleton với giá trị mặc định.
// Chỉ tạo khi chưa có — không ghi đè cấu hình admin đã chỉnh.
func initCrmSettings() error {
	settingsService, err := crmsvc.NewCrmSettingsService()
	if err != nil {
		return err
	}

	ctx := context.TODO()
	settings, err := settingsService.GetSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.ID.IsZero() {
		// Document đã tồn tại
		return nil
	}

	autoSync := true
	syncOnRegister := true
	_, err = settingsService.UpdateSettings(ctx, &crmdto.CrmSettingsUpdateInput{
		AutoSyncEnabled:        &autoSync,
		SyncContactsOnRegister: &syncOnRegister,
	}, "system")
	return err
}

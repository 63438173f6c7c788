package main

import (
	"context"

	"agentic_voice/config"
	authmodels "agentic_voice/internal/api/auth/models"
	crmmodels "agentic_voice/internal/api/crm/models"
	"agentic_voice/internal/database"
	"agentic_voice/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo db và các collection nếu chưa có
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	collections := []string{
		global.MongoDB_ColNames.Users,
		global.MongoDB_ColNames.CrmSettings,
	}
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session, dbName, collections); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection theo struct tag
	db := global.MongoDB_Session.Database(dbName)
	if err := database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{}); err != nil {
		logrus.Fatalf("Failed to create indexes for users: %v", err)
	}
	if err := database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CrmSettings), crmmodels.CrmSettings{}); err != nil {
		logrus.Fatalf("Failed to create indexes for crm settings: %v", err)
	}
	logrus.Info("Created collection indexes")
}

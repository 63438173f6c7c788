package global

import (
	"agentic_voice/config"
	"agentic_voice/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users       string // Tên collection cho người dùng
	CrmSettings string // Tên collection cho cấu hình CRM
}

// Các biến toàn cục
var Validate *validator.Validate               // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client              // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{
	Users:       "av_users",
	CrmSettings: "crm_settings",
}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases

// GetDB trả về database chính theo cấu hình server
func GetDB() *mongo.Database {
	if MongoDB_Session == nil || MongoDB_ServerConfig == nil {
		return nil
	}
	return MongoDB_Session.Database(MongoDB_ServerConfig.MongoDB_DBName)
}

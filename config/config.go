package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Các API key của vendor (HubSpot, Stripe, Vapi) là bắt buộc — thiếu key sẽ fail ngay khi khởi tạo,
// không retry (fatal construction error).
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo dữ liệu mặc định
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Port server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật JWT
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu chính
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// HubSpot CRM Configuration
	HubSpot_APIKey  string `env:"HUBSPOT_API_KEY,required"`                          // Private app token của HubSpot
	HubSpot_BaseURL string `env:"HUBSPOT_BASE_URL" envDefault:"https://api.hubapi.com"` // Base URL HubSpot API (override được trong test)

	// Stripe Billing Configuration
	Stripe_SecretKey string `env:"STRIPE_SECRET_KEY,required"` // Secret key của Stripe

	// Vapi Voice Assistant Configuration
	Vapi_APIKey  string `env:"VAPI_API_KEY,required"`                          // API key của Vapi
	Vapi_BaseURL string `env:"VAPI_BASE_URL" envDefault:"https://api.vapi.ai"` // Base URL Vapi API

	// Frontend URL
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // URL dashboard frontend

	// Admin khởi tạo (chỉ dùng khi INITMODE=true)
	Admin_InitEmail    string `env:"ADMIN_INIT_EMAIL"`    // Email của admin mặc định
	Admin_InitPassword string `env:"ADMIN_INIT_PASSWORD"` // Mật khẩu của admin mặc định
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env (nếu tìm thấy) rồi parse từ environment.
// Trả về nil nếu thiếu biến bắt buộc — caller phải Fatal ngay.
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		// File env là tùy chọn — trên môi trường deploy biến được set sẵn
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	err := env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}

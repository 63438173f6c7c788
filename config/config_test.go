package config

import (
	"os"
	"testing"
)

// requiredVars là các biến môi trường bắt buộc — thiếu bất kỳ biến nào thì NewConfig trả về nil
var requiredVars = map[string]string{
	"JWT_SECRET":             "test-secret",
	"MONGODB_CONNECTION_URI": "mongodb://localhost:27017",
	"MONGODB_DBNAME":         "agentic_voice_test",
	"HUBSPOT_API_KEY":        "pat-test-key",
	"STRIPE_SECRET_KEY":      "sk_test_key",
	"VAPI_API_KEY":           "vapi-test-key",
}

// setRequiredEnv set toàn bộ biến bắt buộc, trừ các biến trong danh sách skip
func setRequiredEnv(t *testing.T, skip ...string) {
	t.Helper()
	skipped := make(map[string]bool)
	for _, name := range skip {
		skipped[name] = true
	}
	for name, value := range requiredVars {
		if skipped[name] {
			// t.Setenv đăng ký restore, sau đó unset để mô phỏng biến chưa được khai báo
			t.Setenv(name, "")
			os.Unsetenv(name)
			continue
		}
		t.Setenv(name, value)
	}
}

func TestNewConfig_ThieuBienBatBuoc_TraVeNil(t *testing.T) {
	setRequiredEnv(t, "JWT_SECRET")

	cfg := NewConfig()
	if cfg != nil {
		t.Fatal("Thiếu JWT_SECRET thì NewConfig phải trả về nil")
	}
}

func TestNewConfig_ThieuAPIKeyVendor_TraVeNil(t *testing.T) {
	setRequiredEnv(t, "HUBSPOT_API_KEY")

	cfg := NewConfig()
	if cfg != nil {
		t.Fatal("Thiếu HUBSPOT_API_KEY thì NewConfig phải trả về nil")
	}
}

func TestNewConfig_DuBienBatBuoc_DocDungGiaTri(t *testing.T) {
	setRequiredEnv(t)

	cfg := NewConfig()
	if cfg == nil {
		t.Fatal("Đủ biến bắt buộc mà NewConfig vẫn trả về nil")
	}

	if cfg.JwtSecret != "test-secret" {
		t.Errorf("JwtSecret không đúng: %s", cfg.JwtSecret)
	}
	if cfg.MongoDB_DBName != "agentic_voice_test" {
		t.Errorf("MongoDB_DBName không đúng: %s", cfg.MongoDB_DBName)
	}
	if cfg.HubSpot_APIKey != "pat-test-key" {
		t.Errorf("HubSpot_APIKey không đúng: %s", cfg.HubSpot_APIKey)
	}
}

func TestNewConfig_GiaTriMacDinh(t *testing.T) {
	setRequiredEnv(t)
	for _, name := range []string{"ADDRESS", "HUBSPOT_BASE_URL", "VAPI_BASE_URL", "RATE_LIMIT_MAX", "CORS_ORIGINS"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	cfg := NewConfig()
	if cfg == nil {
		t.Fatal("Đủ biến bắt buộc mà NewConfig vẫn trả về nil")
	}

	if cfg.Address != "8080" {
		t.Errorf("Address mặc định phải là 8080, nhận được %s", cfg.Address)
	}
	if cfg.HubSpot_BaseURL != "https://api.hubapi.com" {
		t.Errorf("HubSpot_BaseURL mặc định không đúng: %s", cfg.HubSpot_BaseURL)
	}
	if cfg.Vapi_BaseURL != "https://api.vapi.ai" {
		t.Errorf("Vapi_BaseURL mặc định không đúng: %s", cfg.Vapi_BaseURL)
	}
	if cfg.RateLimit_Max != 100 {
		t.Errorf("RateLimit_Max mặc định phải là 100, nhận được %d", cfg.RateLimit_Max)
	}
	if cfg.CORS_Origins != "*" {
		t.Errorf("CORS_Origins mặc định phải là *, nhận được %s", cfg.CORS_Origins)
	}
}

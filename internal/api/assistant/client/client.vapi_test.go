package vapiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestVapiService(t *testing.T, handler http.Handler) *VapiService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := NewVapiService("test-key", server.URL)
	if err != nil {
		t.Fatalf("Không tạo được service: %v", err)
	}
	return service
}

func TestNewVapiService_ThieuAPIKey(t *testing.T) {
	_, err := NewVapiService("", "")
	if err == nil {
		t.Fatal("API key rỗng phải trả về lỗi cấu hình ngay khi khởi tạo")
	}
}

func TestGetAssistant_KhongTonTai_TraVeNilNil(t *testing.T) {
	service := newTestVapiService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	assistant, err := service.GetAssistant(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Assistant không tồn tại phải trả về (nil, nil), nhận được lỗi: %v", err)
	}
	if assistant != nil {
		t.Errorf("Mong đợi nil, nhận được: %+v", assistant)
	}
}

func TestCreateAssistant_KhongRetryKhiLoi(t *testing.T) {
	attempts := 0
	service := newTestVapiService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := service.CreateAssistant(context.Background(), &AssistantInput{Name: "Test"})
	if err == nil {
		t.Fatal("HTTP 429 phải trả về lỗi")
	}
	// Vapi không retry — kể cả rate limit cũng chỉ thử một lần
	if attempts != 1 {
		t.Errorf("Vapi không được retry, mong đợi 1 lần thử, nhận được %d", attempts)
	}
}

func TestDeleteAssistant_DaKhongTonTai_CoiNhuThanhCong(t *testing.T) {
	service := newTestVapiService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := service.DeleteAssistant(context.Background(), "gone"); err != nil {
		t.Errorf("Xóa assistant đã không tồn tại phải coi như thành công: %v", err)
	}
}

func TestCreateAssistant_GuiDungPayload(t *testing.T) {
	var body AssistantInput
	service := newTestVapiService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Header Authorization không đúng: %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Assistant{ID: "asst_1", Name: body.Name})
	}))

	assistant, err := service.CreateAssistant(context.Background(), &AssistantInput{
		Name:     "An Assistant",
		Metadata: map[string]interface{}{"mongoUserId": "abc123"},
	})
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if assistant.ID != "asst_1" {
		t.Errorf("ID không đúng: %s", assistant.ID)
	}
	if body.Metadata["mongoUserId"] != "abc123" {
		t.Errorf("Metadata mongoUserId phải nằm trong payload, nhận được: %+v", body.Metadata)
	}
}

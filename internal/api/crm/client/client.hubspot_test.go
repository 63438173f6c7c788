package crmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agentic_voice/internal/retry"
)

// newTestService tạo HubSpotService trỏ vào httptest server, backoff cực nhỏ
func newTestService(t *testing.T, handler http.Handler) (*HubSpotService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := NewHubSpotService("test-key", server.URL)
	if err != nil {
		t.Fatalf("Không tạo được service: %v", err)
	}
	service.SetRetryConfig(&retry.Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 2.0,
	})
	return service, server
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewHubSpotService_ThieuAPIKey(t *testing.T) {
	_, err := NewHubSpotService("", "")
	if err == nil {
		t.Fatal("API key rỗng phải trả về lỗi cấu hình ngay khi khởi tạo")
	}
}

func TestGetContact_KhongTonTai_TraVeNilNil(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "resource not found"})
	}))

	contact, err := service.GetContact(context.Background(), "999", nil)
	if err != nil {
		t.Fatalf("Contact không tồn tại phải trả về (nil, nil), nhận được lỗi: %v", err)
	}
	if contact != nil {
		t.Errorf("Contact không tồn tại phải trả về nil, nhận được: %+v", contact)
	}
}

func TestDoRequest_RateLimit_RetryDung3Lan(t *testing.T) {
	attempts := 0
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "rate limited"})
	}))

	_, err := service.GetContact(context.Background(), "1", nil)
	if err == nil {
		t.Fatal("Rate limit liên tục phải trả về lỗi sau khi hết số lần thử")
	}
	if attempts != 3 {
		t.Errorf("HTTP 429 phải được thử đúng 3 lần, nhận được %d", attempts)
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("Lỗi cuối cùng phải unwrap được về APIError, nhận được: %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Status code phải là 429, nhận được %d", apiErr.StatusCode)
	}
}

func TestDoRequest_Loi400_KhongRetry(t *testing.T) {
	attempts := 0
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid property"})
	}))

	_, err := service.CreateContact(context.Background(), map[string]string{"email": "a@b.c"})
	if err == nil {
		t.Fatal("HTTP 400 phải trả về lỗi")
	}
	if attempts != 1 {
		t.Errorf("HTTP 400 không được retry, mong đợi 1 lần thử, nhận được %d", attempts)
	}
}

func TestFindContactByEmail_KhongCoKetQua_TraVeNilNil(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SearchResult{Total: 0, Results: nil})
	}))

	contact, err := service.FindContactByEmail(context.Background(), "missing@example.com", nil)
	if err != nil {
		t.Fatalf("Không có kết quả search không phải là lỗi: %v", err)
	}
	if contact != nil {
		t.Errorf("Mong đợi nil khi không có contact, nhận được: %+v", contact)
	}
}

func TestCreateOrUpdateContact_TaoMoi_GanLeadStatusNew(t *testing.T) {
	var createBody CreateInput
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crm/v3/objects/contacts/search":
			writeJSON(w, http.StatusOK, SearchResult{Total: 0})
		case r.Method == http.MethodPost && r.URL.Path == "/crm/v3/objects/contacts":
			json.NewDecoder(r.Body).Decode(&createBody)
			writeJSON(w, http.StatusCreated, Object{ID: "101", Properties: createBody.Properties})
		default:
			t.Errorf("Request không mong đợi: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	contact, err := service.CreateOrUpdateContact(context.Background(), "new@example.com", map[string]string{"firstname": "An"})
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if contact.ID != "101" {
		t.Errorf("ID contact không đúng: %s", contact.ID)
	}
	if createBody.Properties["hs_lead_status"] != LeadStatusNew {
		t.Errorf("Contact mới phải nhận hs_lead_status=NEW, nhận được %q", createBody.Properties["hs_lead_status"])
	}
	if createBody.Properties["email"] != "new@example.com" {
		t.Errorf("Email phải nằm trong payload tạo contact, nhận được %q", createBody.Properties["email"])
	}
}

func TestCreateOrUpdateContact_DaCoLeadStatus_KhongGhiDe(t *testing.T) {
	var updateBody CreateInput
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crm/v3/objects/contacts/search":
			writeJSON(w, http.StatusOK, SearchResult{
				Total: 1,
				Results: []*Object{
					{ID: "55", Properties: map[string]string{"email": "sale@example.com", "hs_lead_status": LeadStatusInProgress}},
				},
			})
		case r.Method == http.MethodPatch && r.URL.Path == "/crm/v3/objects/contacts/55":
			json.NewDecoder(r.Body).Decode(&updateBody)
			writeJSON(w, http.StatusOK, Object{ID: "55", Properties: updateBody.Properties})
		default:
			t.Errorf("Request không mong đợi: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	props := map[string]string{"firstname": "Binh", "hs_lead_status": "NEW"}
	_, err := service.CreateOrUpdateContact(context.Background(), "sale@example.com", props)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}

	// Lead status đã được sales chuyển — payload update không được chứa field này
	if _, ok := updateBody.Properties["hs_lead_status"]; ok {
		t.Errorf("Payload update không được chứa hs_lead_status khi contact đã có giá trị, nhận được %q", updateBody.Properties["hs_lead_status"])
	}
	if updateBody.Properties["firstname"] != "Binh" {
		t.Errorf("Các property khác vẫn phải được cập nhật, firstname = %q", updateBody.Properties["firstname"])
	}

	// Map của caller không được bị mutate
	if props["hs_lead_status"] != "NEW" {
		t.Errorf("Map properties của caller bị mutate: %+v", props)
	}
}

func TestCreateOrUpdateContact_LeadStatusRong_GanNew(t *testing.T) {
	var updateBody CreateInput
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crm/v3/objects/contacts/search":
			writeJSON(w, http.StatusOK, SearchResult{
				Total: 1,
				Results: []*Object{
					{ID: "77", Properties: map[string]string{"email": "blank@example.com", "hs_lead_status": ""}},
				},
			})
		case r.Method == http.MethodPatch && r.URL.Path == "/crm/v3/objects/contacts/77":
			json.NewDecoder(r.Body).Decode(&updateBody)
			writeJSON(w, http.StatusOK, Object{ID: "77", Properties: updateBody.Properties})
		default:
			t.Errorf("Request không mong đợi: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	_, err := service.CreateOrUpdateContact(context.Background(), "blank@example.com", nil)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if updateBody.Properties["hs_lead_status"] != LeadStatusNew {
		t.Errorf("Contact có lead status rỗng phải được gán NEW, nhận được %q", updateBody.Properties["hs_lead_status"])
	}
}

func TestListAllContacts_PhanTrangTheoCursor(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v3/objects/contacts" {
			t.Errorf("Path không mong đợi: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("limit") != "100" {
			t.Errorf("Mỗi trang phải request limit=100, nhận được %q", r.URL.Query().Get("limit"))
		}

		switch r.URL.Query().Get("after") {
		case "":
			writeJSON(w, http.StatusOK, ListResult{
				Results: []*Object{{ID: "1"}, {ID: "2"}},
				Paging:  &SearchPaging{Next: SearchPagingNext{After: "cursor-2"}},
			})
		case "cursor-2":
			writeJSON(w, http.StatusOK, ListResult{
				Results: []*Object{{ID: "3"}},
			})
		default:
			t.Errorf("Cursor không mong đợi: %q", r.URL.Query().Get("after"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	contacts, err := service.ListAllContacts(context.Background(), nil)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if len(contacts) != 3 {
		t.Fatalf("Mong đợi 3 contact từ 2 trang, nhận được %d", len(contacts))
	}
	if contacts[0].ID != "1" || contacts[2].ID != "3" {
		t.Errorf("Thứ tự contact không đúng: %s ... %s", contacts[0].ID, contacts[2].ID)
	}
}

func TestUpdateContactLeadScore_GanStatusTheoBang(t *testing.T) {
	var updateBody CreateInput
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&updateBody)
		writeJSON(w, http.StatusOK, Object{ID: "9", Properties: updateBody.Properties})
	}))

	_, err := service.UpdateContactLeadScore(context.Background(), "9", 85)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if updateBody.Properties["hubspotscore"] != "85" {
		t.Errorf("hubspotscore phải là \"85\", nhận được %q", updateBody.Properties["hubspotscore"])
	}
	if updateBody.Properties["hs_lead_status"] != LeadStatusOpenDeal {
		t.Errorf("Điểm 85 phải map sang OPEN_DEAL, nhận được %q", updateBody.Properties["hs_lead_status"])
	}
}

func TestTestConnection_APIKeySai(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid key"})
	}))

	_, err := service.TestConnection(context.Background())
	if err == nil {
		t.Fatal("API key sai phải trả về lỗi chẩn đoán")
	}
}

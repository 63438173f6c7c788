package syncsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	vapiclient "agentic_voice/internal/api/assistant/client"
	models "agentic_voice/internal/api/auth/models"
	crmclient "agentic_voice/internal/api/crm/client"
	syncdto "agentic_voice/internal/api/sync/dto"
	"agentic_voice/internal/common"

	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ====================================
// FAKES
// ====================================

// fakeStore giả lập MongoDB user store trong memory
type fakeStore struct {
	users           map[primitive.ObjectID]*models.User
	upsertErr       error
	setForeignIDErr error
	foreignIDCalls  []string // ghi lại "field=value" theo thứ tự
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeStore) addUser(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) UpsertByEmail(ctx context.Context, email string, data map[string]interface{}) (*models.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	for _, user := range f.users {
		if user.Email == email {
			applyUserData(user, data)
			return user, nil
		}
	}
	user := &models.User{ID: primitive.NewObjectID(), Email: email}
	applyUserData(user, data)
	f.users[user.ID] = user
	return user, nil
}

func applyUserData(user *models.User, data map[string]interface{}) {
	if v, ok := data["name"].(string); ok {
		user.Name = v
	}
	if v, ok := data["role"].(string); ok {
		user.Role = v
	}
	if v, ok := data["industryType"].(string); ok {
		user.IndustryType = v
	}
	if v, ok := data["accountStatus"].(string); ok {
		user.AccountStatus = v
	}
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindOneById(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	return *user, nil
}

func (f *fakeStore) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.User, error) {
	var all []models.User
	for _, user := range f.users {
		all = append(all, *user)
	}
	return all, nil
}

func (f *fakeStore) SetForeignID(ctx context.Context, userID primitive.ObjectID, field string, value string) error {
	if f.setForeignIDErr != nil {
		return f.setForeignIDErr
	}
	f.foreignIDCalls = append(f.foreignIDCalls, field+"="+value)
	user, ok := f.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	switch field {
	case "customerId":
		user.CustomerID = value
	case "hubspotContactId":
		user.HubspotContactID = value
	case "vapiAssistantId":
		user.VapiAssistantID = value
	}
	return nil
}

// fakeBilling giả lập Stripe
type fakeBilling struct {
	customers     map[string]*stripe.Customer
	createErr     error
	createCalls   int
	updateCalls   []string // "id:name:email"
	probeErr      error
	probeDelay    time.Duration
}

func newFakeBilling() *fakeBilling {
	return &fakeBilling{customers: map[string]*stripe.Customer{}}
}

func (f *fakeBilling) CreateCustomer(ctx context.Context, user *models.User) (*stripe.Customer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createCalls++
	customer := &stripe.Customer{ID: fmt.Sprintf("cus_%d", f.createCalls), Email: user.Email, Name: user.Name}
	f.customers[customer.ID] = customer
	return customer, nil
}

func (f *fakeBilling) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	return f.customers[customerID], nil
}

func (f *fakeBilling) UpdateCustomer(ctx context.Context, customerID string, name string, email string) (*stripe.Customer, error) {
	f.updateCalls = append(f.updateCalls, customerID+":"+name+":"+email)
	customer, ok := f.customers[customerID]
	if !ok {
		return nil, errors.New("customer không tồn tại")
	}
	customer.Name = name
	customer.Email = email
	return customer, nil
}

func (f *fakeBilling) TestConnection(ctx context.Context) (string, error) {
	if f.probeDelay > 0 {
		time.Sleep(f.probeDelay)
	}
	if f.probeErr != nil {
		return "", f.probeErr
	}
	return "ok", nil
}

// fakeCrm giả lập HubSpot
type fakeCrm struct {
	contacts    map[string]*crmclient.Object
	upsertErr   error
	upsertCalls int
	updateCalls []string
}

func newFakeCrm() *fakeCrm {
	return &fakeCrm{contacts: map[string]*crmclient.Object{}}
}

func (f *fakeCrm) CreateOrUpdateContact(ctx context.Context, email string, properties map[string]string) (*crmclient.Object, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upsertCalls++
	for _, contact := range f.contacts {
		if contact.Properties["email"] == email {
			for k, v := range properties {
				contact.Properties[k] = v
			}
			return contact, nil
		}
	}
	props := map[string]string{"email": email}
	for k, v := range properties {
		props[k] = v
	}
	contact := &crmclient.Object{ID: fmt.Sprintf("hub_%d", f.upsertCalls), Properties: props}
	f.contacts[contact.ID] = contact
	return contact, nil
}

func (f *fakeCrm) GetContact(ctx context.Context, id string, properties []string) (*crmclient.Object, error) {
	return f.contacts[id], nil
}

func (f *fakeCrm) FindContactByEmail(ctx context.Context, email string, properties []string) (*crmclient.Object, error) {
	for _, contact := range f.contacts {
		if contact.Properties["email"] == email {
			return contact, nil
		}
	}
	return nil, nil
}

func (f *fakeCrm) UpdateContact(ctx context.Context, id string, properties map[string]string) (*crmclient.Object, error) {
	f.updateCalls = append(f.updateCalls, id)
	contact, ok := f.contacts[id]
	if !ok {
		return nil, errors.New("contact không tồn tại")
	}
	for k, v := range properties {
		contact.Properties[k] = v
	}
	return contact, nil
}

func (f *fakeCrm) TestConnection(ctx context.Context) (string, error) {
	return "ok", nil
}

// fakeAssistant giả lập Vapi
type fakeAssistant struct {
	assistants  map[string]*vapiclient.Assistant
	createErr   error
	createCalls int
	updateCalls []string
}

func newFakeAssistant() *fakeAssistant {
	return &fakeAssistant{assistants: map[string]*vapiclient.Assistant{}}
}

func (f *fakeAssistant) CreateAssistant(ctx context.Context, input *vapiclient.AssistantInput) (*vapiclient.Assistant, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createCalls++
	assistant := &vapiclient.Assistant{ID: fmt.Sprintf("asst_%d", f.createCalls), Name: input.Name, Metadata: input.Metadata}
	f.assistants[assistant.ID] = assistant
	return assistant, nil
}

func (f *fakeAssistant) GetAssistant(ctx context.Context, id string) (*vapiclient.Assistant, error) {
	return f.assistants[id], nil
}

func (f *fakeAssistant) UpdateAssistant(ctx context.Context, id string, input *vapiclient.AssistantInput) (*vapiclient.Assistant, error) {
	f.updateCalls = append(f.updateCalls, id)
	assistant, ok := f.assistants[id]
	if !ok {
		return nil, errors.New("assistant không tồn tại")
	}
	assistant.Name = input.Name
	return assistant, nil
}

func (f *fakeAssistant) TestConnection(ctx context.Context) (string, error) {
	return "ok", nil
}

// newTestSyncService tạo service với đầy đủ fake
func newTestSyncService() (*UserSyncService, *fakeStore, *fakeBilling, *fakeCrm, *fakeAssistant) {
	store := newFakeStore()
	billing := newFakeBilling()
	crm := newFakeCrm()
	assistant := newFakeAssistant()
	service := NewUserSyncServiceWithClients(store, billing, crm, assistant, func(ctx context.Context) error { return nil })
	return service, store, billing, crm, assistant
}

// ====================================
// TESTS
// ====================================

func TestRegisterUser_DongBoDuCacPlatform(t *testing.T) {
	service, store, _, _, _ := newTestSyncService()

	result, err := service.RegisterUserAcrossPlatforms(context.Background(), &syncdto.RegisterUserInput{
		Email: "an@example.com",
		Name:  "An Nguyen",
	})
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if !result.Success {
		t.Errorf("Mong đợi Success=true, errors: %v", result.Errors)
	}
	if len(result.Platforms) != 3 {
		t.Errorf("Mong đợi 3 platform được đồng bộ, nhận được: %v", result.Platforms)
	}

	user, _ := store.FindByEmail(context.Background(), "an@example.com")
	if user.CustomerID == "" || user.HubspotContactID == "" || user.VapiAssistantID == "" {
		t.Errorf("Foreign ids phải được ghi về store: %+v", user)
	}
	if user.Role != models.RoleFree {
		t.Errorf("Role rỗng phải mặc định FREE, nhận được %q", user.Role)
	}
	if user.AccountStatus != models.AccountStatusActive {
		t.Errorf("User mới phải ACTIVE, nhận được %q", user.AccountStatus)
	}
}

func TestRegisterUser_StoreLoi_DungNgayKhongGoiPlatform(t *testing.T) {
	service, store, billing, crm, assistant := newTestSyncService()
	store.upsertErr = errors.New("mongo down")

	result, err := service.RegisterUserAcrossPlatforms(context.Background(), &syncdto.RegisterUserInput{
		Email: "an@example.com",
		Name:  "An",
	})
	if err == nil {
		t.Fatal("Store thất bại phải trả lỗi ngay")
	}
	if result != nil {
		t.Errorf("Không được trả result khi store thất bại: %+v", result)
	}
	if billing.createCalls != 0 || crm.upsertCalls != 0 || assistant.createCalls != 0 {
		t.Error("Không platform nào được gọi khi store thất bại")
	}
}

func TestRegisterUser_MotPlatformLoi_VanTiepTucCacPlatformConLai(t *testing.T) {
	service, store, billing, _, _ := newTestSyncService()
	billing.createErr = errors.New("card service unavailable")

	result, err := service.RegisterUserAcrossPlatforms(context.Background(), &syncdto.RegisterUserInput{
		Email: "binh@example.com",
		Name:  "Binh",
	})
	if err != nil {
		t.Fatalf("Lỗi platform không được trả về như lỗi của operation: %v", err)
	}
	if result.Success {
		t.Error("Có lỗi platform thì Success phải là false")
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "stripe:") {
		t.Errorf("Lỗi phải có prefix platform, nhận được: %v", result.Errors)
	}

	// HubSpot và Vapi vẫn phải được đồng bộ, foreign id ghi về store
	user, _ := store.FindByEmail(context.Background(), "binh@example.com")
	if user.HubspotContactID == "" || user.VapiAssistantID == "" {
		t.Errorf("Các platform còn lại vẫn phải sync dù Stripe lỗi: %+v", user)
	}
	if user.CustomerID != "" {
		t.Errorf("CustomerId không được ghi khi Stripe lỗi: %q", user.CustomerID)
	}
}

func TestForceSync_PlatformDaCo_CapNhatKhongTaoTrung(t *testing.T) {
	service, store, billing, _, assistant := newTestSyncService()

	// Giá trị trên platform đã trôi so với store — force sync phải đẩy giá trị store lên
	user := store.addUser(&models.User{Email: "co@example.com", Name: "Ten Moi", CustomerID: "cus_live", VapiAssistantID: "asst_live"})
	billing.customers["cus_live"] = &stripe.Customer{ID: "cus_live", Email: "cu@example.com", Name: "Ten Cu"}
	assistant.assistants["asst_live"] = &vapiclient.Assistant{ID: "asst_live", Name: "Ten Cu Assistant"}

	result, err := service.ForceSyncUser(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if !result.Success {
		t.Errorf("Mong đợi Success=true, errors: %v", result.Errors)
	}
	if billing.createCalls != 0 {
		t.Errorf("Customer còn sống không được tạo lại, createCalls=%d", billing.createCalls)
	}
	if assistant.createCalls != 0 {
		t.Errorf("Assistant còn sống không được tạo lại, createCalls=%d", assistant.createCalls)
	}
	if result.Platforms[PlatformStripe] != "cus_live" {
		t.Errorf("Platform map phải giữ id cũ, nhận được %q", result.Platforms[PlatformStripe])
	}

	// Object còn sống phải được update theo store, không phải chỉ xác nhận tồn tại
	if len(billing.updateCalls) != 1 || billing.updateCalls[0] != "cus_live:Ten Moi:co@example.com" {
		t.Errorf("Customer còn sống phải được update theo store, updateCalls: %v", billing.updateCalls)
	}
	if billing.customers["cus_live"].Name != "Ten Moi" {
		t.Errorf("Name trên Stripe phải được ghi đè theo store, nhận được %q", billing.customers["cus_live"].Name)
	}
	if len(assistant.updateCalls) != 1 || assistant.updateCalls[0] != "asst_live" {
		t.Errorf("Assistant còn sống phải được update theo store, updateCalls: %v", assistant.updateCalls)
	}
	if assistant.assistants["asst_live"].Name != "Ten Moi Assistant" {
		t.Errorf("Name của assistant phải được ghi đè theo store, nhận được %q", assistant.assistants["asst_live"].Name)
	}
}

func TestForceSync_CustomerDaBiXoa_TaoLai(t *testing.T) {
	service, store, billing, _, _ := newTestSyncService()

	// CustomerID trỏ tới customer không còn tồn tại trên Stripe
	user := store.addUser(&models.User{Email: "mat@example.com", Name: "Mat", CustomerID: "cus_deleted"})

	result, err := service.ForceSyncUser(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if billing.createCalls != 1 {
		t.Errorf("Customer đã mất phải được tạo lại, createCalls=%d", billing.createCalls)
	}
	newID := result.Platforms[PlatformStripe]
	if newID == "" || newID == "cus_deleted" {
		t.Errorf("Customer mới phải có id mới, nhận được %q", newID)
	}
	if store.users[user.ID].CustomerID != newID {
		t.Errorf("Id mới phải được ghi về store, store có %q", store.users[user.ID].CustomerID)
	}
}

func TestForceSync_UserIdSaiDinhDang(t *testing.T) {
	service, _, _, _, _ := newTestSyncService()

	_, err := service.ForceSyncUser(context.Background(), "not-an-object-id")
	if err == nil {
		t.Fatal("Id sai định dạng phải trả lỗi validation")
	}
	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("Mong đợi *common.Error, nhận được: %T", err)
	}
	if customErr.StatusCode != common.StatusBadRequest {
		t.Errorf("Id sai định dạng phải là 400, nhận được %d", customErr.StatusCode)
	}
}

func TestGetUserSyncStatus_BaTrangThai(t *testing.T) {
	service, store, billing, _, _ := newTestSyncService()

	// Stripe: có id và customer còn sống. HubSpot: chưa có. Vapi: id trỏ tới assistant đã mất.
	lastWrite := time.Now().UnixMilli()
	user := store.addUser(&models.User{Email: "mix@example.com", CustomerID: "cus_ok", VapiAssistantID: "asst_gone", UpdatedAt: lastWrite})
	billing.customers["cus_ok"] = &stripe.Customer{ID: "cus_ok"}

	statuses, err := service.GetUserSyncStatus(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("Mong đợi 3 platform status, nhận được %d", len(statuses))
	}

	byPlatform := map[string]SyncStatus{}
	for _, st := range statuses {
		byPlatform[st.Platform] = st
	}

	if byPlatform[PlatformStripe].Status != SyncStateSynced {
		t.Errorf("Stripe phải synced: %+v", byPlatform[PlatformStripe])
	}
	if byPlatform[PlatformHubSpot].Status != SyncStateNotSynced {
		t.Errorf("HubSpot chưa có contact phải là not_synced, nhận được %q", byPlatform[PlatformHubSpot].Status)
	}
	if byPlatform[PlatformVapi].Status != SyncStateError {
		t.Errorf("Foreign id không còn resolve được phải là error, nhận được %q", byPlatform[PlatformVapi].Status)
	}
	if byPlatform[PlatformVapi].Detail == "" {
		t.Error("Platform chưa synced phải có detail giải thích")
	}
	for platform, st := range byPlatform {
		if st.LastSyncAt != lastWrite {
			t.Errorf("LastSyncAt của %s phải là lần ghi gần nhất của user document, nhận được %d", platform, st.LastSyncAt)
		}
	}
}

func TestGetUserSyncStatus_KhongTimThay_TraVeNilNil(t *testing.T) {
	service, _, _, _, _ := newTestSyncService()

	// Id sai định dạng và user không tồn tại đều là "không tìm thấy" bình thường
	for _, userID := range []string{"not-an-object-id", primitive.NewObjectID().Hex()} {
		statuses, err := service.GetUserSyncStatus(context.Background(), userID)
		if err != nil {
			t.Errorf("userId %q: mong đợi (nil, nil), nhận được lỗi: %v", userID, err)
		}
		if statuses != nil {
			t.Errorf("userId %q: mong đợi nil, nhận được: %+v", userID, statuses)
		}
	}
}

func TestValidateConsistency_LechEmailStripe(t *testing.T) {
	service, store, billing, crm, _ := newTestSyncService()

	user := store.addUser(&models.User{Email: "store@example.com", Name: "Store Name", CustomerID: "cus_1", HubspotContactID: "hub_1"})
	billing.customers["cus_1"] = &stripe.Customer{ID: "cus_1", Email: "old@example.com", Name: "Store Name"}
	crm.contacts["hub_1"] = &crmclient.Object{ID: "hub_1", Properties: map[string]string{"email": "store@example.com"}}

	report, err := service.ValidateUserConsistency(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if report.Consistent {
		t.Fatal("Email lệch giữa store và Stripe phải được phát hiện")
	}
	if len(report.Issues) != 1 {
		t.Fatalf("Mong đợi đúng 1 issue, nhận được: %+v", report.Issues)
	}
	issue := report.Issues[0]
	if issue.Platform != PlatformStripe || issue.Field != "email" {
		t.Errorf("Issue không đúng: %+v", issue)
	}
	if issue.StoreValue != "store@example.com" || issue.PlatformValue != "old@example.com" {
		t.Errorf("Issue phải ghi rõ hai giá trị lệch nhau: %+v", issue)
	}
}

func TestValidateConsistency_KhongLech(t *testing.T) {
	service, store, billing, crm, assistant := newTestSyncService()

	user := store.addUser(&models.User{Email: "ok@example.com", Name: "Ok", CustomerID: "cus_1", HubspotContactID: "hub_1", VapiAssistantID: "asst_1"})
	billing.customers["cus_1"] = &stripe.Customer{ID: "cus_1", Email: "ok@example.com", Name: "Ok"}
	crm.contacts["hub_1"] = &crmclient.Object{ID: "hub_1", Properties: map[string]string{"email": "ok@example.com"}}
	assistant.assistants["asst_1"] = &vapiclient.Assistant{ID: "asst_1"}

	report, err := service.ValidateUserConsistency(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if !report.Consistent || len(report.Issues) != 0 {
		t.Errorf("Dữ liệu khớp phải Consistent=true, issues: %+v", report.Issues)
	}
}

func TestResolveConflicts_StoreThang(t *testing.T) {
	service, store, billing, crm, _ := newTestSyncService()

	user := store.addUser(&models.User{Email: "win@example.com", Name: "Store Wins", CustomerID: "cus_1", HubspotContactID: "hub_1"})
	billing.customers["cus_1"] = &stripe.Customer{ID: "cus_1", Email: "stale@example.com", Name: "Stale"}
	crm.contacts["hub_1"] = &crmclient.Object{ID: "hub_1", Properties: map[string]string{"email": "win@example.com"}}

	result, err := service.ResolveSyncConflicts(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("Không mong đợi lỗi resolve: %v", result.Errors)
	}
	if len(result.Resolved) != 1 || result.Resolved[0] != PlatformStripe {
		t.Errorf("Chỉ Stripe có xung đột, resolved: %v", result.Resolved)
	}

	// Giá trị store phải được ghi đè lên Stripe
	customer := billing.customers["cus_1"]
	if customer.Email != "win@example.com" || customer.Name != "Store Wins" {
		t.Errorf("Store phải thắng khi resolve, customer: %+v", customer)
	}
}

func TestResolveConflicts_CustomerDaBiXoa_TaoLai(t *testing.T) {
	service, store, billing, _, _ := newTestSyncService()

	// CustomerID trỏ tới customer không còn tồn tại — update trên id chết chỉ có thể thất bại
	user := store.addUser(&models.User{Email: "gone@example.com", Name: "Gone", CustomerID: "cus_gone"})

	result, err := service.ResolveSyncConflicts(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("Không mong đợi lỗi resolve: %v", result.Errors)
	}
	if len(result.Resolved) != 1 || result.Resolved[0] != PlatformStripe {
		t.Errorf("Chỉ Stripe có xung đột, resolved: %v", result.Resolved)
	}

	if billing.createCalls != 1 {
		t.Errorf("Customer đã mất phải được tạo lại, createCalls=%d", billing.createCalls)
	}
	if len(billing.updateCalls) != 0 {
		t.Errorf("Không được gọi update trên customer id đã chết, updateCalls: %v", billing.updateCalls)
	}
	if store.users[user.ID].CustomerID == "cus_gone" || store.users[user.ID].CustomerID == "" {
		t.Errorf("Id customer mới phải được ghi về store, store có %q", store.users[user.ID].CustomerID)
	}
}

func TestResolveConflicts_ContactDaBiXoa_TaoLai(t *testing.T) {
	service, store, billing, crm, assistant := newTestSyncService()

	// Stripe và Vapi khớp hoàn toàn, chỉ contact HubSpot đã mất
	user := store.addUser(&models.User{Email: "mat@example.com", Name: "Mat", CustomerID: "cus_1", HubspotContactID: "hub_gone", VapiAssistantID: "asst_1"})
	billing.customers["cus_1"] = &stripe.Customer{ID: "cus_1", Email: "mat@example.com", Name: "Mat"}
	assistant.assistants["asst_1"] = &vapiclient.Assistant{ID: "asst_1"}

	result, err := service.ResolveSyncConflicts(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("Không mong đợi lỗi resolve: %v", result.Errors)
	}
	if len(result.Resolved) != 1 || result.Resolved[0] != PlatformHubSpot {
		t.Errorf("Chỉ HubSpot có xung đột, resolved: %v", result.Resolved)
	}

	if len(crm.updateCalls) != 0 {
		t.Errorf("Không được gọi update trên contact id đã chết, updateCalls: %v", crm.updateCalls)
	}
	if crm.upsertCalls == 0 {
		t.Error("Contact đã mất phải được tạo lại qua upsert")
	}
	newContactID := store.users[user.ID].HubspotContactID
	if newContactID == "hub_gone" || newContactID == "" {
		t.Errorf("Id contact mới phải được ghi về store, store có %q", newContactID)
	}
}

func TestBulkSync_KhongDungGiuaChung(t *testing.T) {
	service, store, _, _, _ := newTestSyncService()

	user1 := store.addUser(&models.User{Email: "u1@example.com", Name: "U1"})
	user2 := store.addUser(&models.User{Email: "u2@example.com", Name: "U2"})
	missingID := primitive.NewObjectID().Hex()

	// User không tồn tại đứng giữa batch — hai user còn lại vẫn phải được sync
	result, err := service.BulkSyncUsers(context.Background(), []string{user1.ID.Hex(), missingID, user2.ID.Hex()})
	if err != nil {
		t.Fatalf("Bulk sync không được trả lỗi tổng khi một user thất bại: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Total phải là 3, nhận được %d", result.Total)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("Mong đợi 2 thành công / 1 thất bại, nhận được %d/%d", result.Succeeded, result.Failed)
	}
	if len(result.Results) != 3 {
		t.Errorf("Mỗi user phải có một result, nhận được %d", len(result.Results))
	}

	// Result của user lỗi vẫn phải ghi lại userID và lỗi
	failedResult := result.Results[1]
	if failedResult.UserID != missingID || len(failedResult.Errors) == 0 {
		t.Errorf("Result của user thất bại không đúng: %+v", failedResult)
	}
}

func TestBulkSync_DanhSachRong_DongBoToanBo(t *testing.T) {
	service, store, _, _, _ := newTestSyncService()

	store.addUser(&models.User{Email: "a@example.com", Name: "A"})
	store.addUser(&models.User{Email: "b@example.com", Name: "B"})

	result, err := service.BulkSyncUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if result.Total != 2 || result.Succeeded != 2 {
		t.Errorf("Danh sách rỗng phải sync toàn bộ user: total=%d succeeded=%d", result.Total, result.Succeeded)
	}
}

func TestPlatformHealth_DownKhiProbeLoi(t *testing.T) {
	service, _, billing, _, _ := newTestSyncService()
	billing.probeErr = errors.New("connection refused")

	results := service.GetPlatformHealthStatus(context.Background())
	if len(results) != 4 {
		t.Fatalf("Mong đợi 4 platform, nhận được %d", len(results))
	}

	byPlatform := map[string]PlatformHealth{}
	for _, h := range results {
		byPlatform[h.Platform] = h
	}

	if byPlatform[PlatformStripe].Status != HealthStatusDown {
		t.Errorf("Probe lỗi phải là down, nhận được %q", byPlatform[PlatformStripe].Status)
	}
	if byPlatform[PlatformStripe].Detail == "" {
		t.Error("Platform down phải có detail lỗi")
	}
	if byPlatform[PlatformMongoDB].Status != HealthStatusHealthy {
		t.Errorf("MongoDB probe thành công phải healthy, nhận được %q", byPlatform[PlatformMongoDB].Status)
	}
	if byPlatform[PlatformHubSpot].Status != HealthStatusHealthy || byPlatform[PlatformVapi].Status != HealthStatusHealthy {
		t.Error("Các platform còn lại phải healthy")
	}
}

func TestPlatformHealth_DegradedKhiCham(t *testing.T) {
	service, _, billing, _, _ := newTestSyncService()
	billing.probeDelay = healthDegradedThreshold + 100*time.Millisecond

	results := service.GetPlatformHealthStatus(context.Background())
	for _, h := range results {
		if h.Platform != PlatformStripe {
			continue
		}
		if h.Status != HealthStatusDegraded {
			t.Errorf("Probe chậm hơn ngưỡng phải là degraded, nhận được %q", h.Status)
		}
		if h.LatencyMs < healthDegradedThreshold.Milliseconds() {
			t.Errorf("LatencyMs phải phản ánh độ trễ thật, nhận được %d", h.LatencyMs)
		}
	}
}

package syncsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	vapiclient "agentic_voice/internal/api/assistant/client"
	models "agentic_voice/internal/api/auth/models"
	authsvc "agentic_voice/internal/api/auth/service"
	billingsvc "agentic_voice/internal/api/billing/service"
	crmclient "agentic_voice/internal/api/crm/client"
	syncdto "agentic_voice/internal/api/sync/dto"
	"agentic_voice/internal/common"
	"agentic_voice/internal/global"
	"agentic_voice/internal/logger"
	"agentic_voice/internal/utility"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// healthDegradedThreshold: probe chậm hơn ngưỡng này thì platform bị coi là degraded
const healthDegradedThreshold = 2 * time.Second

// healthProbeTimeout: thời gian tối đa cho một lần probe
const healthProbeTimeout = 5 * time.Second

// UserSyncService điều phối đồng bộ user giữa MongoDB (bản ghi gốc) và các
// platform ngoài: Stripe, HubSpot, Vapi.
//
// Nguyên tắc: ghi store trước — store thất bại thì dừng ngay; các platform
// ngoài là best-effort, lỗi được gom lại thay vì dừng giữa chừng. Foreign id
// được ghi về store ngay khi từng platform thành công để không bị mất khi
// bước sau thất bại.
type UserSyncService struct {
	store     UserStore
	billing   BillingClient
	crm       CrmClient
	assistant AssistantClient
	pingStore func(ctx context.Context) error
	log       *logrus.Logger
}

// NewUserSyncService tạo mới UserSyncService với các service thật từ cấu hình server
func NewUserSyncService() (*UserSyncService, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}

	stripeService, err := billingsvc.NewStripeService(global.MongoDB_ServerConfig.Stripe_SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe service: %v", err)
	}

	hubspotService, err := crmclient.NewHubSpotService(
		global.MongoDB_ServerConfig.HubSpot_APIKey,
		global.MongoDB_ServerConfig.HubSpot_BaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hubspot service: %v", err)
	}

	vapiService, err := vapiclient.NewVapiService(
		global.MongoDB_ServerConfig.Vapi_APIKey,
		global.MongoDB_ServerConfig.Vapi_BaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vapi service: %v", err)
	}

	pingStore := func(ctx context.Context) error {
		if global.MongoDB_Session == nil {
			return fmt.Errorf("chưa có kết nối MongoDB")
		}
		return global.MongoDB_Session.Ping(ctx, nil)
	}

	return NewUserSyncServiceWithClients(userService, stripeService, hubspotService, vapiService, pingStore), nil
}

// NewUserSyncServiceWithClients tạo UserSyncService với các client được inject (dùng trong test)
func NewUserSyncServiceWithClients(store UserStore, billing BillingClient, crm CrmClient, assistant AssistantClient, pingStore func(ctx context.Context) error) *UserSyncService {
	return &UserSyncService{
		store:     store,
		billing:   billing,
		crm:       crm,
		assistant: assistant,
		pingStore: pingStore,
		log:       logger.GetAppLogger(),
	}
}

// RegisterUserAcrossPlatforms đăng ký user lên tất cả platform.
//
// Thứ tự: store (bắt buộc) → Stripe → HubSpot → Vapi. Store thất bại thì dừng
// ngay và trả lỗi. Lỗi của từng platform ngoài được gom vào result.Errors,
// các platform còn lại vẫn được thử. Success chỉ true khi không có lỗi nào.
func (s *UserSyncService) RegisterUserAcrossPlatforms(ctx context.Context, input *syncdto.RegisterUserInput) (*SyncResult, error) {
	role := input.Role
	if role == "" {
		role = models.RoleFree
	}

	user, err := s.store.UpsertByEmail(ctx, input.Email, map[string]interface{}{
		"name":          input.Name,
		"role":          role,
		"industryType":  input.IndustryType,
		"accountStatus": models.AccountStatusActive,
	})
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		Platforms: map[string]string{},
		Errors:    []string{},
	}

	s.syncBilling(ctx, user, result, false)
	s.syncCrm(ctx, user, result)
	s.syncAssistant(ctx, user, result, false)

	result.Success = len(result.Errors) == 0

	s.log.WithFields(logrus.Fields{
		"user_id": result.UserID,
		"email":   result.Email,
		"success": result.Success,
		"errors":  len(result.Errors),
	}).Info("🔄 [SYNC] Register user across platforms")
	return result, nil
}

// syncBilling đảm bảo user có Stripe customer, ghi customerId về store ngay khi thành công.
// refresh=true (force sync) thì customer còn sống cũng được ghi đè lại theo giá trị store.
func (s *UserSyncService) syncBilling(ctx context.Context, user *models.User, result *SyncResult, refresh bool) {
	if user.CustomerID != "" {
		// Đã có customer — xác nhận còn tồn tại, nếu đã bị xóa thì tạo lại
		customer, err := s.billing.GetCustomer(ctx, user.CustomerID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("stripe: %v", err))
			return
		}
		if customer != nil {
			if refresh {
				if _, err := s.billing.UpdateCustomer(ctx, user.CustomerID, user.Name, user.Email); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("stripe: %v", err))
					return
				}
			}
			result.Platforms[PlatformStripe] = user.CustomerID
			return
		}
	}

	customer, err := s.billing.CreateCustomer(ctx, user)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("stripe: %v", err))
		return
	}

	if err := s.store.SetForeignID(ctx, user.ID, "customerId", customer.ID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("stripe: lưu customerId thất bại: %v", err))
		return
	}
	user.CustomerID = customer.ID
	result.Platforms[PlatformStripe] = customer.ID
}

// syncCrm đảm bảo user có HubSpot contact, ghi hubspotContactId về store ngay khi thành công
func (s *UserSyncService) syncCrm(ctx context.Context, user *models.User, result *SyncResult) {
	properties := map[string]string{
		"firstname": user.Name,
	}
	if user.IndustryType != "" {
		properties["industry"] = user.IndustryType
	}

	contact, err := s.crm.CreateOrUpdateContact(ctx, user.Email, properties)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("hubspot: %v", err))
		return
	}

	if user.HubspotContactID != contact.ID {
		if err := s.store.SetForeignID(ctx, user.ID, "hubspotContactId", contact.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("hubspot: lưu hubspotContactId thất bại: %v", err))
			return
		}
		user.HubspotContactID = contact.ID
	}
	result.Platforms[PlatformHubSpot] = contact.ID
}

// syncAssistant đảm bảo user có Vapi assistant, ghi vapiAssistantId về store ngay khi thành công.
// refresh=true (force sync) thì assistant còn sống cũng được ghi đè lại theo giá trị store.
func (s *UserSyncService) syncAssistant(ctx context.Context, user *models.User, result *SyncResult, refresh bool) {
	if user.VapiAssistantID != "" {
		assistant, err := s.assistant.GetAssistant(ctx, user.VapiAssistantID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("vapi: %v", err))
			return
		}
		if assistant != nil {
			if refresh {
				if _, err := s.assistant.UpdateAssistant(ctx, user.VapiAssistantID, &vapiclient.AssistantInput{
					Name: fmt.Sprintf("%s Assistant", user.Name),
					Metadata: map[string]interface{}{
						"mongoUserId": user.ID.Hex(),
					},
				}); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("vapi: %v", err))
					return
				}
			}
			result.Platforms[PlatformVapi] = user.VapiAssistantID
			return
		}
	}

	assistant, err := s.assistant.CreateAssistant(ctx, &vapiclient.AssistantInput{
		Name: fmt.Sprintf("%s Assistant", user.Name),
		Metadata: map[string]interface{}{
			"mongoUserId": user.ID.Hex(),
		},
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("vapi: %v", err))
		return
	}

	if err := s.store.SetForeignID(ctx, user.ID, "vapiAssistantId", assistant.ID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("vapi: lưu vapiAssistantId thất bại: %v", err))
		return
	}
	user.VapiAssistantID = assistant.ID
	result.Platforms[PlatformVapi] = assistant.ID
}

// GetUserSyncStatus trả về trạng thái đồng bộ của user trên từng platform.
// Mỗi platform được xác nhận bằng một lời gọi đọc thật, không chỉ dựa vào foreign id.
//
// Id sai định dạng hoặc user không tồn tại trả về (nil, nil) — đây là kết quả
// "không tìm thấy" bình thường của một health probe, không phải lỗi.
func (s *UserSyncService) GetUserSyncStatus(ctx context.Context, userID string) ([]SyncStatus, error) {
	objectID := utility.String2ObjectID(userID)
	if objectID.IsZero() {
		return nil, nil
	}
	user, err := s.store.FindOneById(ctx, objectID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	statuses := make([]SyncStatus, 0, 3)

	// Stripe
	stripeStatus := SyncStatus{Platform: PlatformStripe, ForeignID: user.CustomerID, LastSyncAt: user.UpdatedAt}
	if user.CustomerID == "" {
		stripeStatus.Status = SyncStateNotSynced
		stripeStatus.Detail = "Chưa có Stripe customer"
	} else if customer, err := s.billing.GetCustomer(ctx, user.CustomerID); err != nil {
		stripeStatus.Status = SyncStateError
		stripeStatus.Detail = fmt.Sprintf("Không kiểm tra được: %v", err)
	} else if customer == nil {
		stripeStatus.Status = SyncStateError
		stripeStatus.Detail = "Customer không còn tồn tại trên Stripe"
	} else {
		stripeStatus.Status = SyncStateSynced
	}
	statuses = append(statuses, stripeStatus)

	// HubSpot
	hubspotStatus := SyncStatus{Platform: PlatformHubSpot, ForeignID: user.HubspotContactID, LastSyncAt: user.UpdatedAt}
	if user.HubspotContactID == "" {
		hubspotStatus.Status = SyncStateNotSynced
		hubspotStatus.Detail = "Chưa có HubSpot contact"
	} else if contact, err := s.crm.GetContact(ctx, user.HubspotContactID, nil); err != nil {
		hubspotStatus.Status = SyncStateError
		hubspotStatus.Detail = fmt.Sprintf("Không kiểm tra được: %v", err)
	} else if contact == nil {
		hubspotStatus.Status = SyncStateError
		hubspotStatus.Detail = "Contact không còn tồn tại trên HubSpot"
	} else {
		hubspotStatus.Status = SyncStateSynced
	}
	statuses = append(statuses, hubspotStatus)

	// Vapi
	vapiStatus := SyncStatus{Platform: PlatformVapi, ForeignID: user.VapiAssistantID, LastSyncAt: user.UpdatedAt}
	if user.VapiAssistantID == "" {
		vapiStatus.Status = SyncStateNotSynced
		vapiStatus.Detail = "Chưa có Vapi assistant"
	} else if assistant, err := s.assistant.GetAssistant(ctx, user.VapiAssistantID); err != nil {
		vapiStatus.Status = SyncStateError
		vapiStatus.Detail = fmt.Sprintf("Không kiểm tra được: %v", err)
	} else if assistant == nil {
		vapiStatus.Status = SyncStateError
		vapiStatus.Detail = "Assistant không còn tồn tại trên Vapi"
	} else {
		vapiStatus.Status = SyncStateSynced
	}
	statuses = append(statuses, vapiStatus)

	return statuses, nil
}

// ForceSyncUser đồng bộ lại một user đã có trong store lên tất cả platform.
// Platform đã có object thì cập nhật lại theo giá trị store (không tạo trùng),
// thiếu hoặc đã mất thì tạo mới.
func (s *UserSyncService) ForceSyncUser(ctx context.Context, userID string) (*SyncResult, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		Platforms: map[string]string{},
		Errors:    []string{},
	}

	s.syncBilling(ctx, user, result, true)
	s.syncCrm(ctx, user, result)
	s.syncAssistant(ctx, user, result, true)

	result.Success = len(result.Errors) == 0
	return result, nil
}

// ValidateUserConsistency đối soát dữ liệu user giữa store và các platform.
// Store là bản ghi gốc: mọi sai lệch đều tính là issue của platform.
func (s *UserSyncService) ValidateUserConsistency(ctx context.Context, userID string) (*ConsistencyReport, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		Issues:    []ConsistencyIssue{},
		CheckedAt: time.Now().UnixMilli(),
	}

	// Stripe: so khớp email và name
	if user.CustomerID != "" {
		customer, err := s.billing.GetCustomer(ctx, user.CustomerID)
		if err == nil {
			if customer == nil {
				report.Issues = append(report.Issues, ConsistencyIssue{
					Platform: PlatformStripe, Field: "customer",
					StoreValue: user.CustomerID, PlatformValue: "",
				})
			} else {
				if customer.Email != user.Email {
					report.Issues = append(report.Issues, ConsistencyIssue{
						Platform: PlatformStripe, Field: "email",
						StoreValue: user.Email, PlatformValue: customer.Email,
					})
				}
				if customer.Name != user.Name {
					report.Issues = append(report.Issues, ConsistencyIssue{
						Platform: PlatformStripe, Field: "name",
						StoreValue: user.Name, PlatformValue: customer.Name,
					})
				}
			}
		}
	}

	// HubSpot: so khớp email
	if user.HubspotContactID != "" {
		contact, err := s.crm.GetContact(ctx, user.HubspotContactID, []string{"email", "firstname"})
		if err == nil {
			if contact == nil {
				report.Issues = append(report.Issues, ConsistencyIssue{
					Platform: PlatformHubSpot, Field: "contact",
					StoreValue: user.HubspotContactID, PlatformValue: "",
				})
			} else if contact.Properties["email"] != user.Email {
				report.Issues = append(report.Issues, ConsistencyIssue{
					Platform: PlatformHubSpot, Field: "email",
					StoreValue: user.Email, PlatformValue: contact.Properties["email"],
				})
			}
		}
	}

	// Vapi: assistant còn tồn tại
	if user.VapiAssistantID != "" {
		assistant, err := s.assistant.GetAssistant(ctx, user.VapiAssistantID)
		if err == nil && assistant == nil {
			report.Issues = append(report.Issues, ConsistencyIssue{
				Platform: PlatformVapi, Field: "assistant",
				StoreValue: user.VapiAssistantID, PlatformValue: "",
			})
		}
	}

	report.Consistent = len(report.Issues) == 0
	return report, nil
}

// ResolveSyncConflicts giải quyết xung đột dữ liệu theo nguyên tắc store thắng:
// giá trị trong MongoDB được ghi đè lên các platform.
func (s *UserSyncService) ResolveSyncConflicts(ctx context.Context, userID string) (*ResolveResult, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report, err := s.ValidateUserConsistency(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{
		UserID:   user.ID.Hex(),
		Resolved: []string{},
		Errors:   []string{},
	}

	// Object đã mất trên platform thì không update được nữa — tạo lại qua force sync
	recreate := func(platform string) {
		syncResult, err := s.ForceSyncUser(ctx, userID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", platform, err))
		} else if len(syncResult.Errors) > 0 {
			result.Errors = append(result.Errors, syncResult.Errors...)
		} else {
			result.Resolved = append(result.Resolved, platform)
		}
	}

	resolvedPlatforms := map[string]bool{}
	for _, issue := range report.Issues {
		if resolvedPlatforms[issue.Platform] {
			continue
		}

		switch issue.Platform {
		case PlatformStripe:
			if issue.Field == "customer" {
				recreate(PlatformStripe)
			} else if _, err := s.billing.UpdateCustomer(ctx, user.CustomerID, user.Name, user.Email); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("stripe: %v", err))
			} else {
				result.Resolved = append(result.Resolved, PlatformStripe)
			}
		case PlatformHubSpot:
			if issue.Field == "contact" {
				recreate(PlatformHubSpot)
			} else if _, err := s.crm.UpdateContact(ctx, user.HubspotContactID, map[string]string{
				"email":     user.Email,
				"firstname": user.Name,
			}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("hubspot: %v", err))
			} else {
				result.Resolved = append(result.Resolved, PlatformHubSpot)
			}
		case PlatformVapi:
			recreate(PlatformVapi)
		}
		resolvedPlatforms[issue.Platform] = true
	}

	return result, nil
}

// BulkSyncUsers đồng bộ hàng loạt user, tuần tự từng user một.
// Một user thất bại không dừng cả batch. UserIDs rỗng nghĩa là toàn bộ user.
func (s *UserSyncService) BulkSyncUsers(ctx context.Context, userIDs []string) (*BulkSyncResult, error) {
	if len(userIDs) == 0 {
		users, err := s.store.Find(ctx, bson.M{}, nil)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			userIDs = append(userIDs, user.ID.Hex())
		}
	}

	result := &BulkSyncResult{
		Total:   len(userIDs),
		Results: make([]*SyncResult, 0, len(userIDs)),
	}

	for _, userID := range userIDs {
		syncResult, err := s.ForceSyncUser(ctx, userID)
		if err != nil {
			// User không tồn tại hoặc store lỗi — ghi nhận và đi tiếp
			syncResult = &SyncResult{
				UserID:    userID,
				Platforms: map[string]string{},
				Errors:    []string{err.Error()},
			}
		}

		if syncResult.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, syncResult)
	}

	s.log.WithFields(logrus.Fields{
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("🔄 [SYNC] Bulk sync completed")
	return result, nil
}

// GetPlatformHealthStatus probe thật từng platform và đo độ trễ.
// Trạng thái: down nếu probe lỗi, degraded nếu chậm hơn 2s, còn lại healthy.
func (s *UserSyncService) GetPlatformHealthStatus(ctx context.Context) []PlatformHealth {
	probes := []struct {
		platform string
		probe    func(ctx context.Context) error
	}{
		{PlatformMongoDB, s.pingStore},
		{PlatformStripe, func(ctx context.Context) error {
			_, err := s.billing.TestConnection(ctx)
			return err
		}},
		{PlatformHubSpot, func(ctx context.Context) error {
			_, err := s.crm.TestConnection(ctx)
			return err
		}},
		{PlatformVapi, func(ctx context.Context) error {
			_, err := s.assistant.TestConnection(ctx)
			return err
		}},
	}

	results := make([]PlatformHealth, 0, len(probes))
	for _, p := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		start := time.Now()
		err := p.probe(probeCtx)
		latency := time.Since(start)
		cancel()

		health := PlatformHealth{
			Platform:  p.platform,
			LatencyMs: latency.Milliseconds(),
		}
		switch {
		case err != nil:
			health.Status = HealthStatusDown
			health.Detail = err.Error()
		case latency > healthDegradedThreshold:
			health.Status = HealthStatusDegraded
		default:
			health.Status = HealthStatusHealthy
		}
		results = append(results, health)
	}

	return results
}

// findUser tra user theo id dạng hex, trả về lỗi chuẩn nếu id sai hoặc user không tồn tại
func (s *UserSyncService) findUser(ctx context.Context, userID string) (*models.User, error) {
	objectID := utility.String2ObjectID(userID)
	if objectID.IsZero() {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("userId '%s' không đúng định dạng MongoDB ObjectID", userID),
			common.StatusBadRequest,
			nil,
		)
	}

	user, err := s.store.FindOneById(ctx, objectID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

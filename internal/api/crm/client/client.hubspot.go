package crmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"agentic_voice/internal/logger"
	"agentic_voice/internal/retry"

	"github.com/sirupsen/logrus"
)

// HubSpotService là REST client cho HubSpot CRM v3 API.
//
// Chính sách retry: tối đa 3 lần thử, backoff 1s rồi 2s, chỉ retry khi bị
// rate limit (429) hoặc lỗi transport. Mọi lỗi 4xx/5xx khác trả về ngay.
type HubSpotService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retryCfg   *retry.Config
	log        *logrus.Logger
}

// NewHubSpotService tạo mới HubSpotService.
// API key rỗng là lỗi cấu hình fatal — không retry, không fallback.
func NewHubSpotService(apiKey string, baseURL string) (*HubSpotService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("hubspot API key chưa được cấu hình")
	}
	if baseURL == "" {
		baseURL = "https://api.hubapi.com"
	}

	return &HubSpotService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
		log:      logger.GetAppLogger(),
	}, nil
}

// SetRetryConfig thay cấu hình retry (test dùng backoff nhỏ)
func (s *HubSpotService) SetRetryConfig(cfg *retry.Config) {
	s.retryCfg = cfg
}

// doRequest thực hiện một HTTP request đơn (không retry) và decode JSON response vào out.
// Response không phải 2xx trả về *APIError với status và body giữ nguyên.
func (s *HubSpotService) doRequest(ctx context.Context, method string, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}

	return nil
}

// call bọc doRequest trong retry với chính sách retryable chuẩn
func call[T any](ctx context.Context, s *HubSpotService, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, s.retryCfg, s.log, op, IsRetryableError, fn)
}

// ====================================
// GENERIC OBJECT OPERATIONS
// ====================================

// CreateObject tạo một CRM object (company, deal, ticket...)
func (s *HubSpotService) CreateObject(ctx context.Context, objectType string, properties map[string]string) (*Object, error) {
	return call(ctx, s, "hubspot.create."+objectType, func(ctx context.Context) (*Object, error) {
		var result Object
		err := s.doRequest(ctx, http.MethodPost, "/crm/v3/objects/"+objectType, nil, CreateInput{Properties: properties}, &result)
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// GetObject lấy một CRM object theo id.
// Trả về (nil, nil) nếu object không tồn tại — "không có" là dữ liệu, không phải lỗi.
func (s *HubSpotService) GetObject(ctx context.Context, objectType string, id string, properties []string) (*Object, error) {
	query := url.Values{}
	for _, p := range properties {
		query.Add("properties", p)
	}

	result, err := call(ctx, s, "hubspot.get."+objectType, func(ctx context.Context) (*Object, error) {
		var obj Object
		err := s.doRequest(ctx, http.MethodGet, "/crm/v3/objects/"+objectType+"/"+id, query, nil, &obj)
		if err != nil {
			return nil, err
		}
		return &obj, nil
	})

	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// UpdateObject cập nhật properties của một CRM object
func (s *HubSpotService) UpdateObject(ctx context.Context, objectType string, id string, properties map[string]string) (*Object, error) {
	return call(ctx, s, "hubspot.update."+objectType, func(ctx context.Context) (*Object, error) {
		var result Object
		err := s.doRequest(ctx, http.MethodPatch, "/crm/v3/objects/"+objectType+"/"+id, nil, CreateInput{Properties: properties}, &result)
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// ArchiveObject archive một CRM object (thao tác phá hủy)
func (s *HubSpotService) ArchiveObject(ctx context.Context, objectType string, id string) error {
	_, err := call(ctx, s, "hubspot.archive."+objectType, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.doRequest(ctx, http.MethodDelete, "/crm/v3/objects/"+objectType+"/"+id, nil, nil, nil)
	})
	return err
}

// SearchObjects search CRM objects. Không tự phân trang — caller truyền After nếu cần trang tiếp.
func (s *HubSpotService) SearchObjects(ctx context.Context, objectType string, req *SearchRequest) (*SearchResult, error) {
	return call(ctx, s, "hubspot.search."+objectType, func(ctx context.Context) (*SearchResult, error) {
		var result SearchResult
		err := s.doRequest(ctx, http.MethodPost, "/crm/v3/objects/"+objectType+"/search", nil, req, &result)
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// ====================================
// CONTACTS
// ====================================

// CreateContact tạo contact mới
func (s *HubSpotService) CreateContact(ctx context.Context, properties map[string]string) (*Object, error) {
	return s.CreateObject(ctx, ObjectTypeContacts, properties)
}

// GetContact lấy contact theo id, (nil, nil) nếu không tồn tại
func (s *HubSpotService) GetContact(ctx context.Context, id string, properties []string) (*Object, error) {
	return s.GetObject(ctx, ObjectTypeContacts, id, properties)
}

// UpdateContact cập nhật properties của contact
func (s *HubSpotService) UpdateContact(ctx context.Context, id string, properties map[string]string) (*Object, error) {
	return s.UpdateObject(ctx, ObjectTypeContacts, id, properties)
}

// ArchiveContact archive contact
func (s *HubSpotService) ArchiveContact(ctx context.Context, id string) error {
	return s.ArchiveObject(ctx, ObjectTypeContacts, id)
}

// SearchContacts search contacts
func (s *HubSpotService) SearchContacts(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	return s.SearchObjects(ctx, ObjectTypeContacts, req)
}

// FindContactByEmail tìm contact theo email qua search API.
// Không có kết quả trả về (nil, nil), không bao giờ coi là lỗi.
func (s *HubSpotService) FindContactByEmail(ctx context.Context, email string, properties []string) (*Object, error) {
	if len(properties) == 0 {
		properties = []string{"email", "firstname", "lastname", "hs_lead_status"}
	}

	result, err := s.SearchContacts(ctx, &SearchRequest{
		FilterGroups: []FilterGroup{
			{Filters: []Filter{
				{PropertyName: "email", Operator: "EQ", Value: email},
			}},
		},
		Properties: properties,
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return nil, nil
	}
	return result.Results[0], nil
}

// CreateOrUpdateContact tạo hoặc cập nhật contact theo email.
//
// hs_lead_status là set-once: contact mới nhận NEW; contact đã có lead status
// thì payload update không được chứa field này để không ghi đè giá trị
// sales team đã chuyển (IN_PROGRESS, OPEN_DEAL...).
func (s *HubSpotService) CreateOrUpdateContact(ctx context.Context, email string, properties map[string]string) (*Object, error) {
	existing, err := s.FindContactByEmail(ctx, email, []string{"email", "hs_lead_status"})
	if err != nil {
		return nil, err
	}

	// Copy properties để không mutate map của caller
	props := make(map[string]string, len(properties)+2)
	for k, v := range properties {
		props[k] = v
	}
	props["email"] = email

	if existing == nil {
		props["hs_lead_status"] = LeadStatusNew
		return s.CreateContact(ctx, props)
	}

	if existing.Properties["hs_lead_status"] == "" {
		props["hs_lead_status"] = LeadStatusNew
	} else {
		// Contact đã có lead status — không đưa field vào payload
		delete(props, "hs_lead_status")
	}

	return s.UpdateContact(ctx, existing.ID, props)
}

// ListAllContacts duyệt toàn bộ contacts bằng cursor `after`.
// Dùng cho các thao tác cần toàn bộ tập (đối soát, export) — mỗi trang 100 contact.
func (s *HubSpotService) ListAllContacts(ctx context.Context, properties []string) ([]*Object, error) {
	var all []*Object
	after := ""

	for {
		query := url.Values{}
		query.Set("limit", "100")
		if after != "" {
			query.Set("after", after)
		}
		for _, p := range properties {
			query.Add("properties", p)
		}

		page, err := call(ctx, s, "hubspot.list.contacts", func(ctx context.Context) (*ListResult, error) {
			var result ListResult
			err := s.doRequest(ctx, http.MethodGet, "/crm/v3/objects/contacts", query, nil, &result)
			if err != nil {
				return nil, err
			}
			return &result, nil
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page.Results...)

		if page.Paging == nil || page.Paging.Next.After == "" {
			break
		}
		after = page.Paging.Next.After
	}

	return all, nil
}

// UpdateContactLeadScore cập nhật điểm lead và lead status tương ứng theo bảng chính sách
func (s *HubSpotService) UpdateContactLeadScore(ctx context.Context, contactID string, score int) (*Object, error) {
	return s.UpdateContact(ctx, contactID, map[string]string{
		"hubspotscore":   strconv.Itoa(score),
		"hs_lead_status": LeadStatusForScore(score),
	})
}

// ====================================
// ASSOCIATIONS / BATCH / IMPORT / ENGAGEMENTS
// ====================================

// AssociateObjects tạo association default-type giữa hai object (associations v4)
func (s *HubSpotService) AssociateObjects(ctx context.Context, fromType string, fromID string, toType string, toID string) error {
	path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/default/%s/%s", fromType, fromID, toType, toID)
	_, err := call(ctx, s, "hubspot.associate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.doRequest(ctx, http.MethodPut, path, nil, nil, nil)
	})
	return err
}

// BatchUpdateContacts cập nhật nhiều contact trong một lời gọi.
// Không chia nhỏ batch phía client — HubSpot giới hạn 100 item/batch, caller tự đảm bảo.
func (s *HubSpotService) BatchUpdateContacts(ctx context.Context, inputs []BatchUpdateItem) (*BatchResult, error) {
	return call(ctx, s, "hubspot.batch.update.contacts", func(ctx context.Context) (*BatchResult, error) {
		var result BatchResult
		err := s.doRequest(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/update", nil, BatchInput[BatchUpdateItem]{Inputs: inputs}, &result)
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// BatchArchiveContacts archive nhiều contact trong một lời gọi (thao tác phá hủy)
func (s *HubSpotService) BatchArchiveContacts(ctx context.Context, ids []string) error {
	type idInput struct {
		ID string `json:"id"`
	}
	inputs := make([]idInput, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, idInput{ID: id})
	}

	_, err := call(ctx, s, "hubspot.batch.archive.contacts", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.doRequest(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/archive", nil, BatchInput[idInput]{Inputs: inputs}, nil)
	})
	return err
}

// SubmitImport submit một import job CSV lên HubSpot (một lời gọi cho cả file).
// importRequest là JSON mô tả mapping cột, csvData là nội dung file.
func (s *HubSpotService) SubmitImport(ctx context.Context, fileName string, importRequest map[string]interface{}, csvData []byte) (*ImportResult, error) {
	return call(ctx, s, "hubspot.import", func(ctx context.Context) (*ImportResult, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		requestJSON, err := json.Marshal(importRequest)
		if err != nil {
			return nil, err
		}
		if err := writer.WriteField("importRequest", string(requestJSON)); err != nil {
			return nil, err
		}

		part, err := writer.CreateFormFile("files", fileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(csvData); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/crm/v3/imports", &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
		}

		var result ImportResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// CreateEngagement tạo engagement (note hoặc task) gắn với một contact.
// engagementType: ObjectTypeNotes hoặc ObjectTypeTasks.
func (s *HubSpotService) CreateEngagement(ctx context.Context, engagementType string, contactID string, properties map[string]string) (*Object, error) {
	engagement, err := s.CreateObject(ctx, engagementType, properties)
	if err != nil {
		return nil, err
	}

	if err := s.AssociateObjects(ctx, engagementType, engagement.ID, ObjectTypeContacts, contactID); err != nil {
		return nil, err
	}

	return engagement, nil
}

// TestConnection gọi một request nhẹ để kiểm tra API key và kết nối.
// Trả về chuỗi chẩn đoán ngắn cho admin — không trả body lỗi đầy đủ của vendor.
func (s *HubSpotService) TestConnection(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("limit", "1")

	err := s.doRequest(ctx, http.MethodGet, "/crm/v3/objects/contacts", query, nil, &ListResult{})
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			switch apiErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return "", fmt.Errorf("API key không hợp lệ hoặc thiếu scope (HTTP %d)", apiErr.StatusCode)
			case http.StatusTooManyRequests:
				return "", fmt.Errorf("đang bị rate limit (HTTP 429)")
			default:
				return "", fmt.Errorf("HubSpot trả về HTTP %d", apiErr.StatusCode)
			}
		}
		return "", fmt.Errorf("không kết nối được HubSpot: %w", err)
	}

	return "Kết nối HubSpot thành công", nil
}

// AsAPIError unwrap err về *APIError nếu có
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Package vapiclient là REST client cho Vapi voice assistant API.
package vapiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"agentic_voice/internal/logger"

	"github.com/sirupsen/logrus"
)

// APIError là lỗi trả về từ Vapi khi response không phải 2xx
type APIError struct {
	StatusCode int
	Body       string
}

// Error trả về message của lỗi
func (e *APIError) Error() string {
	return fmt.Sprintf("vapi API trả về status %d: %s", e.StatusCode, e.Body)
}

// AsAPIError unwrap err về *APIError nếu có
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Assistant đại diện cho một voice assistant trên Vapi
type Assistant struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	FirstMessage string                 `json:"firstMessage,omitempty"`
	Model        map[string]interface{} `json:"model,omitempty"`
	Voice        map[string]interface{} `json:"voice,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    string                 `json:"createdAt,omitempty"`
	UpdatedAt    string                 `json:"updatedAt,omitempty"`
}

// AssistantInput dữ liệu tạo/cập nhật assistant
type AssistantInput struct {
	Name         string                 `json:"name,omitempty"`
	FirstMessage string                 `json:"firstMessage,omitempty"`
	Model        map[string]interface{} `json:"model,omitempty"`
	Voice        map[string]interface{} `json:"voice,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// VapiService là REST client cho Vapi API.
// Khác HubSpot, các lời gọi Vapi không retry: assistant không phải dữ liệu
// giao dịch, thao tác thất bại được sync lại ở lượt force-sync tiếp theo.
type VapiService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewVapiService tạo mới VapiService.
// API key rỗng là lỗi cấu hình fatal.
func NewVapiService(apiKey string, baseURL string) (*VapiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vapi API key chưa được cấu hình")
	}
	if baseURL == "" {
		baseURL = "https://api.vapi.ai"
	}

	return &VapiService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.GetAppLogger(),
	}, nil
}

// doRequest thực hiện một HTTP request và decode JSON response vào out.
// Response không phải 2xx trả về *APIError.
func (s *VapiService) doRequest(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
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

// CreateAssistant tạo assistant mới
func (s *VapiService) CreateAssistant(ctx context.Context, input *AssistantInput) (*Assistant, error) {
	var assistant Assistant
	if err := s.doRequest(ctx, http.MethodPost, "/assistant", input, &assistant); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"assistant_id": assistant.ID,
		"name":         assistant.Name,
	}).Info("✅ [VAPI] Assistant created")
	return &assistant, nil
}

// GetAssistant lấy assistant theo id.
// Assistant không tồn tại trả về (nil, nil).
func (s *VapiService) GetAssistant(ctx context.Context, id string) (*Assistant, error) {
	var assistant Assistant
	err := s.doRequest(ctx, http.MethodGet, "/assistant/"+id, nil, &assistant)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &assistant, nil
}

// UpdateAssistant cập nhật assistant
func (s *VapiService) UpdateAssistant(ctx context.Context, id string, input *AssistantInput) (*Assistant, error) {
	var assistant Assistant
	if err := s.doRequest(ctx, http.MethodPatch, "/assistant/"+id, input, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// DeleteAssistant xóa assistant (thao tác phá hủy).
// Assistant đã không tồn tại coi như xóa thành công.
func (s *VapiService) DeleteAssistant(ctx context.Context, id string) error {
	err := s.doRequest(ctx, http.MethodDelete, "/assistant/"+id, nil, nil)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

// ListAssistants liệt kê assistants
func (s *VapiService) ListAssistants(ctx context.Context) ([]*Assistant, error) {
	var assistants []*Assistant
	if err := s.doRequest(ctx, http.MethodGet, "/assistant", nil, &assistants); err != nil {
		return nil, err
	}
	return assistants, nil
}

// TestConnection kiểm tra API key bằng một request list nhẹ
func (s *VapiService) TestConnection(ctx context.Context) (string, error) {
	err := s.doRequest(ctx, http.MethodGet, "/assistant", nil, &[]*Assistant{})
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
				return "", fmt.Errorf("API key không hợp lệ (HTTP %d)", apiErr.StatusCode)
			}
			return "", fmt.Errorf("Vapi trả về HTTP %d", apiErr.StatusCode)
		}
		return "", fmt.Errorf("không kết nối được Vapi: %w", err)
	}
	return "Kết nối Vapi thành công", nil
}

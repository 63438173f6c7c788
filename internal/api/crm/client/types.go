// Package crmclient là REST client cho HubSpot CRM v3.
package crmclient

import (
	"errors"
	"fmt"
)

// Các object type chuẩn của HubSpot
const (
	ObjectTypeContacts  = "contacts"
	ObjectTypeCompanies = "companies"
	ObjectTypeDeals     = "deals"
	ObjectTypeTickets   = "tickets"
	ObjectTypeNotes     = "notes"
	ObjectTypeTasks     = "tasks"
)

// APIError là lỗi trả về từ HubSpot khi response không phải 2xx.
// StatusCode và Body được giữ nguyên để caller quyết định retry hay fail.
type APIError struct {
	StatusCode int
	Body       string
}

// Error trả về message của lỗi
func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot API trả về status %d: %s", e.StatusCode, e.Body)
}

// IsRetryableError kiểm tra lỗi có được retry không.
// Chỉ retry HTTP 429 (rate limit) và lỗi transport; mọi 4xx/5xx khác fail ngay.
func IsRetryableError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	// Lỗi không phải APIError là lỗi transport (timeout, connection refused)
	return true
}

// Object đại diện cho một CRM object (contact, company, deal, ticket).
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
	Archived   bool              `json:"archived"`
}

// CreateInput chứa dữ liệu tạo object mới.
type CreateInput struct {
	Properties map[string]string `json:"properties"`
}

// BatchUpdateItem một phần tử trong batch update.
type BatchUpdateItem struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// BatchInput wrapper cho batch request.
type BatchInput[T any] struct {
	Inputs []T `json:"inputs"`
}

// BatchResult kết quả của một batch operation.
type BatchResult struct {
	Status      string    `json:"status"`
	Results     []*Object `json:"results"`
	StartedAt   string    `json:"startedAt"`
	CompletedAt string    `json:"completedAt"`
	NumErrors   int       `json:"numErrors,omitempty"`
}

// SearchRequest là request của CRM search API.
type SearchRequest struct {
	Query        string        `json:"query,omitempty"`
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
	Sorts        []Sort        `json:"sorts,omitempty"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	After        string        `json:"after,omitempty"`
}

// FilterGroup là nhóm filter kết hợp bằng AND.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// Filter là một filter trên một property.
type Filter struct {
	PropertyName string   `json:"propertyName"`
	Operator     string   `json:"operator"`
	Value        string   `json:"value,omitempty"`
	HighValue    string   `json:"highValue,omitempty"`
	Values       []string `json:"values,omitempty"`
}

// Sort chỉ định thứ tự sắp xếp kết quả search.
type Sort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

// SearchResult là response của CRM search.
type SearchResult struct {
	Total   int           `json:"total"`
	Results []*Object     `json:"results"`
	Paging  *SearchPaging `json:"paging,omitempty"`
}

// SearchPaging chứa thông tin phân trang của search.
type SearchPaging struct {
	Next SearchPagingNext `json:"next"`
}

// SearchPagingNext chứa cursor cho trang tiếp theo.
type SearchPagingNext struct {
	After string `json:"after"`
}

// ListResult là response của list API (GET /crm/v3/objects/{type}).
type ListResult struct {
	Results []*Object     `json:"results"`
	Paging  *SearchPaging `json:"paging,omitempty"`
}

// ImportResult là response khi submit một import job.
type ImportResult struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

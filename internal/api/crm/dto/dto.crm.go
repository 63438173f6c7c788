// Package crmdto - input DTO cho các route CRM.
package crmdto

// CrmSettingsUpdateInput dữ liệu cập nhật cấu hình CRM
type CrmSettingsUpdateInput struct {
	AutoSyncEnabled        *bool    `json:"autoSyncEnabled,omitempty"`
	SyncContactsOnRegister *bool    `json:"syncContactsOnRegister,omitempty"`
	DefaultOwnerID         string   `json:"defaultOwnerId,omitempty" validate:"omitempty,no_xss"`
	LifecycleStage         string   `json:"lifecycleStage,omitempty" validate:"omitempty,no_xss"`
	DefaultProperties      []string `json:"defaultProperties,omitempty" validate:"omitempty,dive,no_xss"`
}

// ObjectCreateInput dữ liệu tạo CRM object (contact, company, deal, ticket)
type ObjectCreateInput struct {
	Properties map[string]string `json:"properties" validate:"required,min=1"`
}

// ObjectUpdateInput dữ liệu cập nhật CRM object
type ObjectUpdateInput struct {
	Properties map[string]string `json:"properties" validate:"required,min=1"`
}

// ContactUpsertInput dữ liệu tạo-hoặc-cập-nhật contact theo email
type ContactUpsertInput struct {
	Email      string            `json:"email" validate:"required,email"`
	Properties map[string]string `json:"properties,omitempty"`
}

// LeadScoreUpdateInput dữ liệu cập nhật điểm lead của contact
type LeadScoreUpdateInput struct {
	Score int `json:"score" validate:"min=0,max=100"`
}

// BatchUpdateInput dữ liệu batch update contacts
type BatchUpdateInput struct {
	Inputs []BatchUpdateItemInput `json:"inputs" validate:"required,min=1,dive"`
}

// BatchUpdateItemInput một contact trong batch update
type BatchUpdateItemInput struct {
	ID         string            `json:"id" validate:"required"`
	Properties map[string]string `json:"properties" validate:"required,min=1"`
}

// BatchArchiveInput dữ liệu batch archive contacts
type BatchArchiveInput struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// AssociationInput dữ liệu tạo association giữa hai CRM object
type AssociationInput struct {
	FromType string `json:"fromType" validate:"required"`
	FromID   string `json:"fromId" validate:"required"`
	ToType   string `json:"toType" validate:"required"`
	ToID     string `json:"toId" validate:"required"`
}

// EngagementCreateInput dữ liệu tạo engagement (note hoặc task) gắn với contact
type EngagementCreateInput struct {
	Type       string            `json:"type" validate:"required,oneof=notes tasks"`
	ContactID  string            `json:"contactId" validate:"required"`
	Properties map[string]string `json:"properties" validate:"required,min=1"`
}

// ImportSubmitInput dữ liệu submit import job CSV lên HubSpot
type ImportSubmitInput struct {
	FileName      string                 `json:"fileName" validate:"required"`
	ImportRequest map[string]interface{} `json:"importRequest" validate:"required"`
	CsvData       string                 `json:"csvData" validate:"required"` // Nội dung file CSV
}

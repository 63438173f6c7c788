package syncsvc

// Tên các platform trong hệ thống sync
const (
	PlatformMongoDB = "mongodb"
	PlatformStripe  = "stripe"
	PlatformHubSpot = "hubspot"
	PlatformVapi    = "vapi"
)

// Trạng thái sức khỏe của một platform
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
	HealthStatusDown     = "down"
)

// SyncResult là kết quả đồng bộ một user lên các platform.
// Success chỉ true khi không có lỗi nào — kết quả một phần vẫn là thất bại,
// nhưng các foreign id đã gán được giữ nguyên để lần sync sau không tạo trùng.
type SyncResult struct {
	UserID    string            `json:"userId"`
	Email     string            `json:"email"`
	Success   bool              `json:"success"`
	Platforms map[string]string `json:"platforms"` // platform → foreign id đã gán
	Errors    []string          `json:"errors"`
}

// Trạng thái đồng bộ của user trên một platform
const (
	SyncStateSynced    = "synced"     // Foreign id còn resolve được trên platform
	SyncStateNotSynced = "not_synced" // Chưa có foreign id
	SyncStateError     = "error"      // Có foreign id nhưng không còn resolve được
)

// SyncStatus là trạng thái đồng bộ của user trên một platform
type SyncStatus struct {
	Platform   string `json:"platform"`
	Status     string `json:"status"` // synced | not_synced | error
	ForeignID  string `json:"foreignId,omitempty"`
	LastSyncAt int64  `json:"lastSyncAt,omitempty"` // Unix ms, lần ghi gần nhất của user document
	Detail     string `json:"detail,omitempty"`
}

// ConsistencyIssue là một điểm lệch dữ liệu giữa store và platform
type ConsistencyIssue struct {
	Platform      string `json:"platform"`
	Field         string `json:"field"`
	StoreValue    string `json:"storeValue"`
	PlatformValue string `json:"platformValue"`
}

// ConsistencyReport là báo cáo đối soát dữ liệu của một user
type ConsistencyReport struct {
	UserID     string             `json:"userId"`
	Email      string             `json:"email"`
	Consistent bool               `json:"consistent"`
	Issues     []ConsistencyIssue `json:"issues"`
	CheckedAt  int64              `json:"checkedAt"` // Unix ms
}

// ResolveResult là kết quả giải quyết xung đột dữ liệu (store thắng)
type ResolveResult struct {
	UserID   string   `json:"userId"`
	Resolved []string `json:"resolved"` // Các platform đã được ghi đè theo store
	Errors   []string `json:"errors"`
}

// BulkSyncResult là kết quả đồng bộ hàng loạt
type BulkSyncResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []*SyncResult `json:"results"`
}

// PlatformHealth là sức khỏe của một platform tại thời điểm probe
type PlatformHealth struct {
	Platform  string `json:"platform"`
	Status    string `json:"status"` // healthy | degraded | down
	LatencyMs int64  `json:"latencyMs"`
	Detail    string `json:"detail,omitempty"`
}

package crmclient

// Các giá trị hs_lead_status của HubSpot
const (
	LeadStatusNew                = "NEW"
	LeadStatusOpen               = "OPEN"
	LeadStatusInProgress         = "IN_PROGRESS"
	LeadStatusOpenDeal           = "OPEN_DEAL"
	LeadStatusAttemptedToContact = "ATTEMPTED_TO_CONTACT"
)

// leadScoreThreshold một ngưỡng điểm và lead status tương ứng
type leadScoreThreshold struct {
	MinScore int
	Status   string
}

// leadScoreTable là bảng chính sách duy nhất map điểm lead sang lead status.
// Mọi chỗ cần quy đổi điểm đều phải đi qua bảng này.
var leadScoreTable = []leadScoreThreshold{
	{MinScore: 80, Status: LeadStatusOpenDeal},
	{MinScore: 60, Status: LeadStatusInProgress},
	{MinScore: 40, Status: LeadStatusOpen},
	{MinScore: 20, Status: LeadStatusAttemptedToContact},
	{MinScore: 0, Status: LeadStatusNew},
}

// LeadStatusForScore quy đổi điểm lead (0-100) sang hs_lead_status theo bảng chính sách.
func LeadStatusForScore(score int) string {
	for _, threshold := range leadScoreTable {
		if score >= threshold.MinScore {
			return threshold.Status
		}
	}
	return LeadStatusNew
}

package crmclient

import "testing"

func TestLeadStatusForScore_TheoNguong(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, LeadStatusOpenDeal},
		{80, LeadStatusOpenDeal}, // biên dưới của OPEN_DEAL
		{79, LeadStatusInProgress},
		{60, LeadStatusInProgress},
		{59, LeadStatusOpen},
		{40, LeadStatusOpen},
		{39, LeadStatusAttemptedToContact},
		{20, LeadStatusAttemptedToContact},
		{19, LeadStatusNew},
		{0, LeadStatusNew},
	}

	for _, c := range cases {
		if got := LeadStatusForScore(c.score); got != c.want {
			t.Errorf("Điểm %d phải map sang %s, nhận được %s", c.score, c.want, got)
		}
	}
}

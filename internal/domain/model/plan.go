package model

import "github.com/upskillhq/backend/internal/domain/enums"

// PlanSelection is what the buyer picked at checkout. The order flow
// validates it and round-trips it through gateway order notes; the
// verify flow materializes a Purchase from it once the signature holds.
type PlanSelection struct {
	Category    enums.PurchaseCategory `json:"category"`
	AmountPaise int64                  `json:"amount_paise"`
	Currency    string                 `json:"currency"`

	// Job-package fields.
	PackageTier   enums.PackageTier `json:"package_tier,omitempty"`
	CreditsGiven  int               `json:"credits_given,omitempty"`
	MaxPackageLPA int               `json:"max_package_lpa,omitempty"`

	// Course fields.
	CourseType       string `json:"course_type,omitempty"`
	TotalSessions    int    `json:"total_sessions,omitempty"`
	LiveSessions     int    `json:"live_sessions,omitempty"`
	RecordedSessions int    `json:"recorded_sessions,omitempty"`
}

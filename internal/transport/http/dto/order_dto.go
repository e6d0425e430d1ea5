package dto

type PackageSelectionDTO struct {
	Tier          string `json:"tier"`
	CreditsGiven  int    `json:"credits_given"`
	MaxPackageLPA int    `json:"max_package_lpa"`
}

type CourseSelectionDTO struct {
	CourseType       string `json:"course_type"`
	TotalSessions    int    `json:"total_sessions"`
	LiveSessions     int    `json:"live_sessions"`
	RecordedSessions int    `json:"recorded_sessions"`
}

type OrderCreateRequest struct {
	Category    string               `json:"category"`
	AmountPaise int64                `json:"amount_paise"`
	Currency    string               `json:"currency"`
	Package     *PackageSelectionDTO `json:"package,omitempty"`
	Course      *CourseSelectionDTO  `json:"course,omitempty"`
}

type OrderCreateResponse struct {
	OrderID     string `json:"order_id"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

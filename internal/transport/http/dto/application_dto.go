package dto

import "time"

type ApplicationCreateRequest struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Mobile    string         `json:"mobile"`
	ResumeURL string         `json:"resume_url"`
	Responses map[string]any `json:"responses,omitempty"`
}

type ApplicationCreateResponse struct {
	ApplicationID    string `json:"application_id"`
	JobID            string `json:"job_id"`
	CreditsRemaining int    `json:"credits_remaining"`
	ApplicantsCount  int    `json:"applicants_count"`
}

type ApplicationListItem struct {
	ApplicationID string    `json:"application_id"`
	JobID         string    `json:"job_id"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
}

type ApplicationListResponse struct {
	Applications []ApplicationListItem `json:"applications"`
}

package dto

import "time"

type PlanCourseItem struct {
	PurchaseID       int64     `json:"purchase_id"`
	CourseType       string    `json:"course_type"`
	TotalSessions    int       `json:"total_sessions"`
	LiveSessions     int       `json:"live_sessions"`
	RecordedSessions int       `json:"recorded_sessions"`
	PurchasedAt      time.Time `json:"purchased_at"`
}

type PlanResponse struct {
	JobCredits       int              `json:"job_credits"`
	PurchasedCourses []PlanCourseItem `json:"purchased_courses"`
}

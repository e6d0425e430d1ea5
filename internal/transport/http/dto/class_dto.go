package dto

import "time"

type ClassJoinResponse struct {
	ClassID           string    `json:"class_id"`
	JoinURL           string    `json:"join_url"`
	SessionsRemaining int       `json:"sessions_remaining"`
	EndsAt            time.Time `json:"ends_at"`
}

package dto

import "time"

type PaymentVerifyRequest struct {
	OrderID     string               `json:"order_id"`
	PaymentID   string               `json:"payment_id"`
	Signature   string               `json:"signature"`
	Category    string               `json:"category"`
	AmountPaise int64                `json:"amount_paise"`
	Currency    string               `json:"currency"`
	Package     *PackageSelectionDTO `json:"package,omitempty"`
	Course      *CourseSelectionDTO  `json:"course,omitempty"`
}

type PaymentVerifyResponse struct {
	OK              bool   `json:"ok"`
	PurchaseID      int64  `json:"purchase_id"`
	PaymentID       string `json:"payment_id"`
	Category        string `json:"category"`
	AlreadyRecorded bool   `json:"already_recorded"`
}

type PaymentHistoryItem struct {
	PurchaseID  int64     `json:"purchase_id"`
	Category    string    `json:"category"`
	AmountPaise int64     `json:"amount_paise"`
	Currency    string    `json:"currency"`
	PaymentID   string    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type PaymentHistoryResponse struct {
	Payments []PaymentHistoryItem `json:"payments"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEvent — запись об одной проверке квитанции
type PaymentEvent struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	Currency        Currency  `json:"currency"`
	Verdict         string    `json:"verdict"` // accepted или rejected
	Reason          string    `json:"reason,omitempty"`
	ExtractedAmount float64   `json:"extracted_amount,omitempty"`
	ExtractedCard   string    `json:"extracted_card,omitempty"`
	Confidence      int       `json:"confidence,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// GenerateID генерирует новый UUID для события, если он еще не установлен
func (e *PaymentEvent) GenerateID() {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
}

package model

import "time"

// Currency — валюта оплаты, выбранная пользователем
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUAH Currency = "UAH"
)

// Symbol возвращает символ валюты для сообщений пользователю
func (c Currency) Symbol() string {
	if c == CurrencyUAH {
		return "₴"
	}
	return "₽"
}

// Step — этап платежного сценария
type Step string

const (
	StepIdle            Step = "idle"
	StepAwaitingReceipt Step = "awaiting_receipt"
	StepCompleted       Step = "completed"
)

// PaymentState представляет текущее состояние оплаты пользователя.
// Валюта заполнена только на этапах awaiting_receipt и completed.
type PaymentState struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Step      Step      `json:"step"`
	Currency  Currency  `json:"currency,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

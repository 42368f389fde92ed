package repository

import (
	"context"
	"time"

	"github.com/mkirsanov/access_bot/internal/model"
)

type Repository interface {
	// Пользователи
	SaveUser(ctx context.Context, user *model.User) error

	// События проверки квитанций
	SavePaymentEvent(ctx context.Context, event *model.PaymentEvent) error
	GetPaymentEvents(ctx context.Context, filter EventFilter) ([]model.PaymentEvent, error)
}

type EventFilter struct {
	Since   *time.Time
	Verdict string // accepted или rejected
	Limit   int
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/mkirsanov/access_bot/internal/model"
)

type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

// SaveUser регистрирует пользователя при первом обращении (upsert по telegram_id)
func (r *SupabaseRepository) SaveUser(ctx context.Context, user *model.User) error {
	if user.FirstSeenAt.IsZero() {
		user.FirstSeenAt = time.Now()
	}

	_, count, err := r.client.From("users").Insert(user, true, "telegram_id", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	_ = count
	return nil
}

func (r *SupabaseRepository) SavePaymentEvent(ctx context.Context, event *model.PaymentEvent) error {
	event.GenerateID()

	data, count, err := r.client.From("payment_events").Insert(event, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to save payment event: %w", err)
	}
	_ = count

	// Парсим ответ для получения created_at, проставленного базой
	var created []model.PaymentEvent
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created payment event: %w", err)
	}
	if len(created) > 0 {
		event.CreatedAt = created[0].CreatedAt
	}
	return nil
}

func (r *SupabaseRepository) GetPaymentEvents(ctx context.Context, filter EventFilter) ([]model.PaymentEvent, error) {
	query := r.client.From("payment_events").Select("*", "", false)

	if filter.Since != nil {
		query = query.Gte("created_at", filter.Since.Format(time.RFC3339))
	}
	if filter.Verdict != "" {
		query = query.Eq("verdict", filter.Verdict)
	}

	// Сначала новые
	query = query.Order("created_at.desc", nil)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, count, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment events: %w", err)
	}
	_ = count

	var events []model.PaymentEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse payment events: %w", err)
	}
	return events, nil
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkirsanov/access_bot/internal/model"
	"github.com/mkirsanov/access_bot/internal/recognition"
)

var (
	// ErrNoPayment — квитанция прислана до выбора валюты
	ErrNoPayment = errors.New("payment flow not started")
	// ErrCurrencyUnset — пользователь ждет проверку, но валюта не записана.
	// Такое состояние достижимо только через дефект, не через действия пользователя.
	ErrCurrencyUnset = errors.New("currency is not set in awaiting state")
	// ErrAnalysisUnavailable — распознавание не состоялось, проверка не проводилась
	ErrAnalysisUnavailable = errors.New("receipt analysis unavailable")
)

const defaultRecognizeTimeout = 45 * time.Second

// Outcome — итог обработки присланной квитанции
type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeRejected         Outcome = "rejected"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
)

// SubmitResult возвращается вызывающему для отрисовки ответа пользователю
type SubmitResult struct {
	Outcome Outcome
	Reason  string // причина отказа, дословно для пользователя
}

// EventRecorder сохраняет записи о проверках квитанций
type EventRecorder interface {
	SavePaymentEvent(ctx context.Context, event *model.PaymentEvent) error
}

// Machine ведет платежный сценарий пользователя:
// idle → awaiting_receipt → completed, с повтором awaiting_receipt при отказе
type Machine struct {
	policy     *Policy
	store      StateStore
	recognizer recognition.Recognizer
	events     EventRecorder
	logger     *zap.SugaredLogger
	timeout    time.Duration
}

func NewMachine(policy *Policy, store StateStore, recognizer recognition.Recognizer, events EventRecorder, logger *zap.SugaredLogger) *Machine {
	return &Machine{
		policy:     policy,
		store:      store,
		recognizer: recognizer,
		events:     events,
		logger:     logger,
		timeout:    defaultRecognizeTimeout,
	}
}

// SelectCurrency записывает выбор валюты и переводит пользователя в ожидание
// квитанции. Допустим повторный выбор с любого этапа — это перезапуск сценария.
// Возвращает реквизиты для показа пользователю.
func (m *Machine) SelectCurrency(userID int64, username string, currency model.Currency) (Expectation, error) {
	expected, err := m.policy.ExpectationFor(currency)
	if err != nil {
		return Expectation{}, err
	}

	err = m.store.Update(userID, func(state *model.PaymentState) error {
		state.UserID = userID
		state.Username = username
		state.Step = model.StepAwaitingReceipt
		state.Currency = currency
		state.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return Expectation{}, err
	}

	m.logger.Infow("currency selected", "user_id", userID, "currency", currency)
	return expected, nil
}

// SubmitReceipt распознает квитанцию и применяет вердикт к состоянию.
// При сбое распознавания состояние не меняется и возвращается
// ErrAnalysisUnavailable. Повторная квитанция после подтверждения — no-op,
// распознавание не запускается.
func (m *Machine) SubmitReceipt(ctx context.Context, userID int64, photoURL string) (SubmitResult, error) {
	var result SubmitResult

	err := m.store.Update(userID, func(state *model.PaymentState) error {
		switch state.Step {
		case model.StepCompleted:
			result = SubmitResult{Outcome: OutcomeAlreadyConfirmed}
			return nil
		case model.StepIdle:
			return ErrNoPayment
		}

		if state.Currency == "" {
			return ErrCurrencyUnset
		}

		expected, err := m.policy.ExpectationFor(state.Currency)
		if err != nil {
			return err
		}

		recognizeCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		analysis, err := m.recognizer.Recognize(recognizeCtx, photoURL)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
		}

		verdict := Validate(analysis, expected)
		m.recordEvent(ctx, userID, state.Currency, analysis, verdict)

		if verdict.Verdict == VerdictAccepted {
			state.Step = model.StepCompleted
			result = SubmitResult{Outcome: OutcomeAccepted}
		} else {
			// отказ оставляет пользователя в ожидании следующей квитанции
			result = SubmitResult{Outcome: OutcomeRejected, Reason: verdict.Reason}
		}
		state.UpdatedAt = time.Now()
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrCurrencyUnset) {
			m.logger.Errorw("invariant violation: awaiting receipt without currency", "user_id", userID)
		} else if errors.Is(err, ErrAnalysisUnavailable) {
			m.logger.Errorw("receipt recognition failed", "user_id", userID, "error", err)
		}
		return SubmitResult{}, err
	}

	m.logger.Infow("receipt processed", "user_id", userID, "outcome", result.Outcome)
	return result, nil
}

// Reset возвращает пользователя к началу сценария (команда /start)
func (m *Machine) Reset(userID int64, username string) {
	_ = m.store.Update(userID, func(state *model.PaymentState) error {
		state.UserID = userID
		state.Username = username
		state.Step = model.StepIdle
		state.Currency = ""
		state.UpdatedAt = time.Now()
		return nil
	})
}

// State возвращает текущее состояние пользователя
func (m *Machine) State(userID int64) (model.PaymentState, bool) {
	return m.store.Get(userID)
}

func (m *Machine) recordEvent(ctx context.Context, userID int64, currency model.Currency, analysis *recognition.Analysis, verdict Result) {
	if m.events == nil {
		return
	}

	event := &model.PaymentEvent{
		UserID:          userID,
		Currency:        currency,
		Verdict:         string(verdict.Verdict),
		Reason:          verdict.Reason,
		ExtractedAmount: analysis.Amount,
		ExtractedCard:   analysis.CardDigits,
		Confidence:      analysis.Confidence,
		CreatedAt:       time.Now(),
	}
	event.GenerateID()

	if err := m.events.SavePaymentEvent(ctx, event); err != nil {
		// статистика не должна ломать платежный сценарий
		m.logger.Warnw("failed to save payment event", "user_id", userID, "error", err)
	}
}

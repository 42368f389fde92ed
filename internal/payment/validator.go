package payment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mkirsanov/access_bot/internal/recognition"
)

// Verdict — итог проверки квитанции
type Verdict string

const (
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

// Result — результат проверки квитанции. Причина заполнена только при отказе.
type Result struct {
	Verdict Verdict
	Reason  string
}

// Validate сверяет распознанную квитанцию с ожидаемыми реквизитами.
// Чистая функция: никаких побочных эффектов и обращений наружу.
// Валюта влияет только на символ в сообщении об отказе.
func Validate(analysis *recognition.Analysis, expected Expectation) Result {
	symbol := expected.Currency.Symbol()

	// Нулевая или отсутствующая сумма без цифр карты — нечитаемое фото,
	// а не расхождение "ожидается 2000, найдено 0"
	if analysis == nil || !analysis.Readable || (analysis.Amount <= 0 && analysis.CardDigits == "") {
		return reject(unreadableReason(analysis))
	}

	if analysis.Fraud {
		details := analysis.Details
		if details == "" {
			details = "Обнаружены визуальные признаки подделки"
		}
		return reject(fmt.Sprintf(
			"⚠️ Обнаружены признаки мошенничества или подделки квитанции!\n\n🔍 Детали:\n%s",
			details))
	}

	if analysis.Amount <= 0 {
		return reject("❌ Не удалось распознать сумму платежа.\n\n" +
			"Пожалуйста, убедитесь, что сумма перевода четко видна на квитанции.")
	}

	if analysis.Amount != float64(expected.Amount) {
		return reject(fmt.Sprintf(
			"❌ Неверная сумма платежа.\n\n💰 Ожидается: %d %s\n💳 Найдено на квитанции: %s %s",
			expected.Amount, symbol, formatAmount(analysis.Amount), symbol))
	}

	found := lastDigits(analysis.CardDigits, 4)
	if found == "" {
		return reject("❌ Не удалось распознать номер карты получателя.\n\n" +
			"Пожалуйста, убедитесь, что номер карты четко виден на квитанции.")
	}

	if found != expected.CardLast4() {
		return reject(fmt.Sprintf(
			"❌ Неверный номер карты получателя.\n\n🎯 Ожидается карта: ...%s\n📱 Найдено на квитанции: ...%s",
			expected.CardLast4(), found))
	}

	return Result{Verdict: VerdictAccepted}
}

func reject(reason string) Result {
	return Result{Verdict: VerdictRejected, Reason: reason}
}

func unreadableReason(analysis *recognition.Analysis) string {
	if analysis != nil && analysis.Description != "" {
		return fmt.Sprintf(
			"❌ Это не платежная квитанция.\n\n🔍 Что я вижу на фото:\n%s",
			analysis.Description)
	}
	return "❌ Не удалось распознать квитанцию.\n\n" +
		"Попробуйте отправить более четкое фото квитанции."
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func lastDigits(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}

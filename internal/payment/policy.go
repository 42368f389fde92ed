package payment

import (
	"fmt"
	"strings"

	"github.com/mkirsanov/access_bot/internal/model"
)

// Expectation — реквизиты, с которыми должна совпасть квитанция
type Expectation struct {
	Currency   model.Currency
	Amount     int
	CardNumber string
}

// CardLast4 возвращает последние четыре цифры карты получателя
func (e Expectation) CardLast4() string {
	digits := strings.ReplaceAll(e.CardNumber, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// FormattedCard возвращает номер карты группами по четыре цифры
func (e Expectation) FormattedCard() string {
	digits := strings.ReplaceAll(e.CardNumber, " ", "")
	var groups []string
	for len(digits) > 4 {
		groups = append(groups, digits[:4])
		digits = digits[4:]
	}
	groups = append(groups, digits)
	return strings.Join(groups, " ")
}

// Policy отображает валюту в ожидаемые реквизиты платежа.
// Неподдерживаемая валюта — дефект конфигурации, не пользовательская ошибка.
type Policy struct {
	expectations map[model.Currency]Expectation
}

func NewPolicy(expectations ...Expectation) (*Policy, error) {
	byCurrency := make(map[model.Currency]Expectation, len(expectations))

	for _, exp := range expectations {
		if exp.Amount <= 0 {
			return nil, fmt.Errorf("policy: %s expected amount must be positive, got %d", exp.Currency, exp.Amount)
		}

		digits := strings.ReplaceAll(exp.CardNumber, " ", "")
		if len(digits) < 4 {
			return nil, fmt.Errorf("policy: %s card number must contain at least 4 digits", exp.Currency)
		}
		for _, r := range digits {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("policy: %s card number must contain only digits", exp.Currency)
			}
		}

		if _, exists := byCurrency[exp.Currency]; exists {
			return nil, fmt.Errorf("policy: duplicate expectation for %s", exp.Currency)
		}
		byCurrency[exp.Currency] = exp
	}

	if len(byCurrency) == 0 {
		return nil, fmt.Errorf("policy: at least one currency expectation is required")
	}

	return &Policy{expectations: byCurrency}, nil
}

func (p *Policy) ExpectationFor(currency model.Currency) (Expectation, error) {
	exp, ok := p.expectations[currency]
	if !ok {
		return Expectation{}, fmt.Errorf("policy: unsupported currency %q", currency)
	}
	return exp, nil
}

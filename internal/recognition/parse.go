package recognition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// geminiReply — сырой JSON, который возвращает модель по промпту
type geminiReply struct {
	ImageDescription string   `json:"imageDescription"`
	IsReceipt        *bool    `json:"isReceipt"`
	Amount           *float64 `json:"amount"`
	CardNumber       any      `json:"cardNumber"`
	IsFraud          bool     `json:"isFraud"`
	Confidence       float64  `json:"confidence"`
	Reason           string   `json:"reason"`
}

// parseAnalysisJSON вытаскивает JSON-объект из ответа модели и нормализует
// его в Analysis. Модель может обернуть ответ в markdown или добавить текст
// вокруг объекта — берем все между первой { и последней }.
func parseAnalysisJSON(text string) (*Analysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	var reply geminiReply
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &reply); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	analysis := &Analysis{
		// isReceipt отсутствует в ответе — считаем квитанцию читаемой
		// и полагаемся на отсутствие суммы и карты
		Readable:    reply.IsReceipt == nil || *reply.IsReceipt,
		Fraud:       reply.IsFraud,
		Confidence:  int(reply.Confidence),
		Description: strings.TrimSpace(reply.ImageDescription),
		Details:     strings.TrimSpace(reply.Reason),
	}

	if reply.Amount != nil {
		analysis.Amount = *reply.Amount
	}
	analysis.CardDigits = cardDigits(reply.CardNumber)

	return analysis, nil
}

// cardDigits приводит номер карты из ответа модели к строке цифр.
// Модель иногда возвращает число вместо строки.
func cardDigits(v any) string {
	var raw string
	switch card := v.(type) {
	case string:
		raw = card
	case float64:
		raw = strconv.FormatInt(int64(card), 10)
	default:
		return ""
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

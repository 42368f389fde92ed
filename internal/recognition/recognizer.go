package recognition

import (
	"context"
	"errors"
)

// ErrUnavailable означает, что распознавание не состоялось: сеть, сервис
// или нечитаемый ответ модели. Это не то же самое, что нечитаемая квитанция.
var ErrUnavailable = errors.New("recognition service unavailable")

// Analysis — нормализованный результат разбора фото квитанции.
// Нулевая сумма и пустые цифры карты означают "не распознано".
type Analysis struct {
	Readable    bool    // модель увидела платежную квитанцию
	Amount      float64 // распознанная сумма перевода
	CardDigits  string  // распознанные цифры карты получателя
	Fraud       bool    // визуальные признаки подделки
	Confidence  int     // уверенность модели, 0-100
	Description string  // что модель увидела на фото
	Details     string  // детали от модели (например, признаки подделки)
}

// Recognizer определяет контракт распознавания квитанции по ссылке на фото
type Recognizer interface {
	Recognize(ctx context.Context, photoURL string) (*Analysis, error)
	Close() error
}

package recognition

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const receiptPrompt = `Проверь платежную квитанцию на фото.

ВАЖНО - ЭТО НОРМАЛЬНО (НЕ мошенничество):
- Скриншот из банка
- Любая дата (даже старая или будущая)
- Разные валюты в одной квитанции (перевод в рублях, валюта зачисления USD - норма для мультивалютных карт!)
- Любые часовые пояса

МОШЕННИЧЕСТВО только если есть ВИЗУАЛЬНЫЕ признаки:
- Следы фотошопа (артефакты, размытия, нечеткие края)
- Нестандартные шрифты
- Видимые следы редактирования

Верни JSON (ТОЛЬКО JSON, без текста):
{
  "imageDescription": "краткое описание",
  "isReceipt": true/false,
  "amount": число или null,
  "cardNumber": "последние 4 цифры" или null,
  "isFraud": true/false,
  "confidence": 0-100,
  "reason": "детальное описание ВИЗУАЛЬНЫХ признаков подделки" или null
}`

// Gemini реализует Recognizer через Gemini Vision API
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	http   *http.Client
}

func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetTopK(40)
	model.SetMaxOutputTokens(4096)

	return &Gemini{
		client: client,
		model:  model,
		http:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Recognize скачивает фото и отправляет его в Gemini. Любой сбой по пути
// возвращается как ErrUnavailable, повторных попыток нет — это дело вызывающего.
func (g *Gemini) Recognize(ctx context.Context, photoURL string) (*Analysis, error) {
	imageData, err := g.downloadImage(ctx, photoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading image: %v", ErrUnavailable, err)
	}

	// Telegram отдает фото в JPEG
	parts := []genai.Part{
		genai.ImageData("jpeg", imageData),
		genai.Text(receiptPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: generating content: %v", ErrUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from gemini", ErrUnavailable)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	analysis, err := parseAnalysisJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrUnavailable, err)
	}

	return analysis, nil
}

func (g *Gemini) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Close закрывает клиент Gemini
func (g *Gemini) Close() error {
	return g.client.Close()
}

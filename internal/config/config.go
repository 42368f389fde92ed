package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken     string   `env:"BOT_TOKEN,required"`
	ChannelID         int64    `env:"CHANNEL_ID"`
	ChannelInviteLink string   `env:"CHANNEL_INVITE_LINK"`
	PaymentAmount     int      `env:"PAYMENT_AMOUNT" envDefault:"2000"`
	CardNumber        string   `env:"CARD_NUMBER,required"`
	PaymentAmountUAH  int      `env:"PAYMENT_AMOUNT_UAH" envDefault:"1050"`
	CardNumberUAH     string   `env:"CARD_NUMBER_UAH" envDefault:"5169155124283993"`
	GeminiAPIKey      string   `env:"GEMINI_API_KEY,required"`
	GeminiModel       string   `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	SupabaseURL       string   `env:"SUPABASE_URL"`
	SupabaseKey       string   `env:"SUPABASE_KEY"`
	AssistantURL      string   `env:"ASSISTANT_URL"`
	VideoFileIDs      []string `env:"VIDEO_FILE_IDS" envSeparator:","`
	AdminIDs          []int64  `env:"ADMIN_IDS" envSeparator:","`
	WebhookAddr       string   `env:"WEBHOOK_ADDR" envDefault:":3000"`
}

func LoadConfig() (*Config, error) {
	// .env опционален: на проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет платежные реквизиты до старта бота: неверная
// конфигурация должна останавливать процесс, а не всплывать на пользователе
func (c *Config) Validate() error {
	if err := validateRequisites("RUB", c.PaymentAmount, c.CardNumber); err != nil {
		return err
	}
	if err := validateRequisites("UAH", c.PaymentAmountUAH, c.CardNumberUAH); err != nil {
		return err
	}
	return nil
}

func validateRequisites(currency string, amount int, cardNumber string) error {
	if amount <= 0 {
		return fmt.Errorf("config: %s payment amount must be positive, got %d", currency, amount)
	}

	digits := strings.ReplaceAll(cardNumber, " ", "")
	if len(digits) < 4 {
		return fmt.Errorf("config: %s card number must contain at least 4 digits", currency)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: %s card number must contain only digits", currency)
		}
	}

	return nil
}

package main

import (
	"context"

	"github.com/mkirsanov/access_bot/internal/bot"
	"github.com/mkirsanov/access_bot/internal/config"
	"github.com/mkirsanov/access_bot/internal/logging"
	"github.com/mkirsanov/access_bot/internal/model"
	"github.com/mkirsanov/access_bot/internal/payment"
	"github.com/mkirsanov/access_bot/internal/recognition"
	"github.com/mkirsanov/access_bot/internal/repository"
)

func main() {
	logger := logging.GetSugaredLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal(err)
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		logger.Fatal(err)
	}

	policy, err := payment.NewPolicy(
		payment.Expectation{Currency: model.CurrencyRUB, Amount: cfg.PaymentAmount, CardNumber: cfg.CardNumber},
		payment.Expectation{Currency: model.CurrencyUAH, Amount: cfg.PaymentAmountUAH, CardNumber: cfg.CardNumberUAH},
	)
	if err != nil {
		logger.Fatal(err)
	}

	recognizer, err := recognition.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal(err)
	}
	defer recognizer.Close()

	machine := payment.NewMachine(policy, payment.NewMemoryStore(), recognizer, repo, logger)

	b, err := bot.NewBot(cfg, machine, policy, repo, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := b.Start(); err != nil {
		logger.Fatal(err)
	}
}

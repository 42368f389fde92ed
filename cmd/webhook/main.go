package main

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkirsanov/access_bot/internal/bot"
	"github.com/mkirsanov/access_bot/internal/config"
	"github.com/mkirsanov/access_bot/internal/logging"
	"github.com/mkirsanov/access_bot/internal/model"
	"github.com/mkirsanov/access_bot/internal/payment"
	"github.com/mkirsanov/access_bot/internal/recognition"
	"github.com/mkirsanov/access_bot/internal/repository"
)

// Точка входа для деплоя за webhook вместо long polling
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

	r := chi.NewRouter()
	r.Post("/webhook", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := b.HandleWebhook(body); err != nil {
			logger.Errorw("error handling webhook update", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	logger.Infow("webhook server starting", "addr", cfg.WebhookAddr)
	if err := http.ListenAndServe(cfg.WebhookAddr, r); err != nil {
		logger.Fatal(err)
	}
}

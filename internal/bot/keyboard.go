package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mkirsanov/access_bot/internal/payment"
)

func (b *Bot) getPaymentKeyboard(rub, uah payment.Expectation) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("💵 Оплатить рублями (%d %s)", rub.Amount, rub.Currency.Symbol()),
				"pay_rub",
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("💴 Оплатить гривнами (%d %s)", uah.Amount, uah.Currency.Symbol()),
				"pay_uah",
			),
		),
	)
}

func (b *Bot) getAssistantKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📨 Связаться с ассистентом", b.cfg.AssistantURL),
		),
	)
}

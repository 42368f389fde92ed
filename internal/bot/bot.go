package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mkirsanov/access_bot/internal/charts"
	"github.com/mkirsanov/access_bot/internal/config"
	"github.com/mkirsanov/access_bot/internal/model"
	"github.com/mkirsanov/access_bot/internal/payment"
	"github.com/mkirsanov/access_bot/internal/repository"
)

// Пауза между видео в приветственной цепочке
const videoDelay = 3 * time.Second

type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	machine *payment.Machine
	policy  *payment.Policy
	repo    repository.Repository
	charts  *charts.ChartGenerator
	logger  *zap.SugaredLogger
}

func NewBot(cfg *config.Config, machine *payment.Machine, policy *payment.Policy, repo repository.Repository, logger *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:     api,
		cfg:     cfg,
		machine: machine,
		policy:  policy,
		repo:    repo,
		charts:  charts.NewChartGenerator(),
		logger:  logger,
	}, nil
}

// Start запускает бота в режиме long polling
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if err := b.handleUpdate(update); err != nil {
			// Логируем ошибку, но продолжаем работу
			b.logger.Errorw("error handling update", "error", err)
		}
	}

	return nil
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	return b.handleUpdate(update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	if update.Message != nil && update.Message.IsCommand() {
		return b.handleCommand(update.Message)
	}

	if update.CallbackQuery != nil {
		return b.handleCallback(update.CallbackQuery)
	}

	if update.Message != nil {
		return b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleCommand(message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "stats":
		b.handleStats(message)
	}

	return nil
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	userID := message.From.ID

	// Регистрируем пользователя, ошибка хранилища не должна ломать сценарий
	if err := b.repo.SaveUser(context.Background(), &model.User{
		TelegramID: userID,
		Username:   message.From.UserName,
	}); err != nil {
		b.logger.Warnw("failed to save user", "user_id", userID, "error", err)
	}

	b.machine.Reset(userID, message.From.UserName)

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"👋 Добро пожаловать!\n\n"+
			"Сейчас я покажу вам несколько интересных видео о нашем продукте.\n\n"+
			"📹 Приготовьтесь к просмотру!")
	b.api.Send(msg)

	go b.sendVideoChain(message.Chat.ID)
}

// sendVideoChain отправляет приветственные видео с паузами, после чего
// показывает выбор валюты оплаты
func (b *Bot) sendVideoChain(chatID int64) {
	for i, fileID := range b.cfg.VideoFileIDs {
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
		video.Caption = fmt.Sprintf("📹 Видео %d из %d", i+1, len(b.cfg.VideoFileIDs))
		if _, err := b.api.Send(video); err != nil {
			b.logger.Errorw("failed to send video", "chat_id", chatID, "index", i, "error", err)
			b.sendErrorMessage(chatID, "Произошла ошибка при отправке видео. Попробуйте снова позже.")
			return
		}
		time.Sleep(videoDelay)
	}

	b.sendPaymentChoice(chatID)
}

func (b *Bot) sendPaymentChoice(chatID int64) {
	rub, err := b.policy.ExpectationFor(model.CurrencyRUB)
	if err != nil {
		b.logger.Errorw("no RUB expectation", "error", err)
		return
	}
	uah, err := b.policy.ExpectationFor(model.CurrencyUAH)
	if err != nil {
		b.logger.Errorw("no UAH expectation", "error", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID,
		"✅ Вы посмотрели все видео!\n\n"+
			"💎 Чтобы получить доступ к закрытому каналу с эксклюзивным контентом, "+
			"выберите способ оплаты:")
	msg.ReplyMarkup = b.getPaymentKeyboard(rub, uah)
	b.api.Send(msg)
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) error {
	var currency model.Currency
	switch callback.Data {
	case "pay_rub":
		currency = model.CurrencyRUB
	case "pay_uah":
		currency = model.CurrencyUAH
	default:
		return nil
	}

	// Отвечаем на callback, чтобы убрать loading indicator
	callbackResponse := tgbotapi.NewCallback(callback.ID, "")
	b.api.Request(callbackResponse)

	expected, err := b.machine.SelectCurrency(callback.From.ID, callback.From.UserName, currency)
	if err != nil {
		b.sendErrorMessage(callback.Message.Chat.ID, "Произошла ошибка. Попробуйте снова позже или обратитесь в поддержку.")
		return fmt.Errorf("selecting currency: %w", err)
	}

	b.sendPaymentInstructions(callback.Message.Chat.ID, expected)
	return nil
}

// sendPaymentInstructions показывает реквизиты для выбранной валюты
func (b *Bot) sendPaymentInstructions(chatID int64, expected payment.Expectation) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"💳 **Реквизиты для оплаты:**\n\n"+
			"💰 Сумма: **%d %s**\n"+
			"🏦 Номер карты: `%s`\n\n"+
			"📋 **Инструкция:**\n"+
			"1. Переведите указанную сумму на карту\n"+
			"2. Сделайте скриншот или сохраните платежную квитанцию\n"+
			"3. Отправьте квитанцию в этот чат\n\n"+
			"⚠️ **Важно:** На квитанции должна быть видна сумма перевода и номер карты получателя!\n\n"+
			"👇 После оплаты отправьте квитанцию сюда",
		expected.Amount, expected.Currency.Symbol(), expected.FormattedCard()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.api.Send(msg)

	if b.cfg.AssistantURL != "" {
		help := tgbotapi.NewMessage(chatID, "💬 Если у вас возникли вопросы или трудности с оплатой:")
		help.ReplyMarkup = b.getAssistantKeyboard()
		b.api.Send(help)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) error {
	if len(message.Photo) > 0 {
		return b.handleReceipt(message)
	}

	state, ok := b.machine.State(message.From.ID)
	if ok && state.Step == model.StepAwaitingReceipt {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"📸 Пожалуйста, отправьте фото или скриншот платежной квитанции.\n\n"+
				"Текстовые сообщения не принимаются.")
		b.api.Send(msg)
		return nil
	}

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Привет! 👋\n\n"+
			"Отправьте команду /start чтобы начать.")
	b.api.Send(msg)
	return nil
}

// handleReceipt обрабатывает фото квитанции
func (b *Bot) handleReceipt(message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID

	b.api.Send(tgbotapi.NewMessage(chatID, "🔍 Проверяю вашу квитанцию..."))

	// Берем фото с максимальным разрешением
	fileID := message.Photo[len(message.Photo)-1].FileID
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		b.sendErrorMessage(chatID, "Не получилось загрузить фото. Попробуйте отправить квитанцию еще раз.")
		return fmt.Errorf("getting file: %w", err)
	}

	result, err := b.machine.SubmitReceipt(context.Background(), userID, file.Link(b.api.Token))
	if err != nil {
		b.replySubmitError(chatID, err)
		return nil
	}

	switch result.Outcome {
	case payment.OutcomeAlreadyConfirmed:
		b.api.Send(tgbotapi.NewMessage(chatID,
			"✅ Ваша оплата уже подтверждена, повторная проверка не требуется."))
	case payment.OutcomeRejected:
		msg := tgbotapi.NewMessage(chatID, result.Reason+"\n\nПожалуйста, отправьте корректную квитанцию.")
		b.api.Send(msg)
	case payment.OutcomeAccepted:
		b.sendInvite(chatID, userID)
	}

	return nil
}

func (b *Bot) replySubmitError(chatID int64, err error) {
	switch {
	case errors.Is(err, payment.ErrNoPayment):
		b.api.Send(tgbotapi.NewMessage(chatID,
			"Пожалуйста, сначала начните процесс с команды /start"))
	case errors.Is(err, payment.ErrAnalysisUnavailable):
		b.api.Send(tgbotapi.NewMessage(chatID,
			"⚠️ Не получилось проверить квитанцию прямо сейчас.\n\n"+
				"Попробуйте отправить ее еще раз через пару минут или обратитесь в поддержку."))
	default:
		// внутренний дефект, пользователю детали не показываем
		b.logger.Errorw("internal error while processing receipt", "chat_id", chatID, "error", err)
		b.sendErrorMessage(chatID,
			"Произошла ошибка при проверке квитанции.\n\n"+
				"Пожалуйста, выберите способ оплаты заново через /start.")
	}
}

// sendInvite генерирует одноразовую ссылку в закрытый канал
func (b *Bot) sendInvite(chatID, userID int64) {
	b.api.Send(tgbotapi.NewMessage(chatID, "✅ Квитанция принята! Генерирую вашу персональную ссылку..."))

	inviteLink, err := b.createInviteLink()
	if err != nil {
		b.logger.Errorw("failed to create invite link", "user_id", userID, "error", err)
		b.sendErrorMessage(chatID, "Произошла ошибка при генерации ссылки. Пожалуйста, обратитесь в поддержку.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🎉 **Поздравляем!**\n\n"+
			"Ваша персональная ссылка для доступа в канал:\n%s\n\n"+
			"⏰ Ссылка действительна 24 часа\n"+
			"👤 Может быть использована только один раз\n\n"+
			"Добро пожаловать в наше сообщество! 🚀", inviteLink))
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.api.Send(msg)
}

func (b *Bot) createInviteLink() (string, error) {
	if b.cfg.ChannelID == 0 {
		if b.cfg.ChannelInviteLink == "" {
			return "", fmt.Errorf("neither CHANNEL_ID nor CHANNEL_INVITE_LINK configured")
		}
		return b.cfg.ChannelInviteLink, nil
	}

	resp, err := b.api.Request(tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: b.cfg.ChannelID},
		MemberLimit: 1, // Только для одного пользователя
		ExpireDate:  int(time.Now().Add(24 * time.Hour).Unix()),
	})
	if err != nil {
		return "", err
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("parsing invite link response: %w", err)
	}
	return link.InviteLink, nil
}

// handleStats показывает администратору сводку по проверкам квитанций
func (b *Bot) handleStats(message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		return
	}

	since := time.Now().AddDate(0, 0, -30)
	events, err := b.repo.GetPaymentEvents(context.Background(), repository.EventFilter{Since: &since})
	if err != nil {
		b.sendErrorMessage(message.Chat.ID, "Ошибка при получении статистики")
		return
	}

	var acceptedCount, rejectedCount int
	for _, event := range events {
		if event.Verdict == string(payment.VerdictAccepted) {
			acceptedCount++
		} else {
			rejectedCount++
		}
	}

	total := acceptedCount + rejectedCount
	conversion := 0.0
	if total > 0 {
		conversion = float64(acceptedCount) / float64(total) * 100
	}

	text := fmt.Sprintf(
		"📊 Статистика за 30 дней\n\n"+
			"🧾 Всего проверок: %d\n"+
			"✅ Принято: %d\n"+
			"❌ Отклонено: %d\n"+
			"📈 Конверсия: %.1f%%",
		total, acceptedCount, rejectedCount, conversion)
	b.api.Send(tgbotapi.NewMessage(message.Chat.ID, text))

	chartData, err := b.charts.GeneratePaymentsChart(events)
	if err != nil {
		b.logger.Errorw("failed to render payments chart", "error", err)
		return
	}
	if chartData == nil {
		return
	}

	photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{
		Name:  "payments.png",
		Bytes: chartData,
	})
	b.api.Send(photo)
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "❌ "+text)
	b.api.Send(msg)
}

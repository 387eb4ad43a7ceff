// Package bot is the Telegram front-end: a thin event dispatcher over the
// answer engine. It owns no pipeline state; every update is either a
// command, a quiz interaction, or a question handed to the engine.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"orgbot/internal/config"
	"orgbot/internal/quiz"
)

// Answerer is the bot-facing subset of the engine.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// api is the subset of *tgbotapi.BotAPI the bot uses; split out so handler
// tests can fake the transport.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot long-polls Telegram and dispatches updates.
type Bot struct {
	api         api
	engine      Answerer
	quiz        quiz.Question
	greeting    string
	quizTrigger string
	topics      []config.Topic
	pollTimeout int
	logger      *slog.Logger
}

// New creates a Bot around an authorized Telegram client.
func New(tg *tgbotapi.BotAPI, engine Answerer, q quiz.Question, cfg config.TelegramConfig, logger *slog.Logger) *Bot {
	return newBot(tg, engine, q, cfg, logger)
}

func newBot(tg api, engine Answerer, q quiz.Question, cfg config.TelegramConfig, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:         tg,
		engine:      engine,
		quiz:        q,
		greeting:    cfg.Greeting,
		quizTrigger: cfg.QuizTrigger,
		topics:      cfg.Topics,
		pollTimeout: cfg.PollTimeoutSecs,
		logger:      logger,
	}
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if msg.Command() != "start" {
		return
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, b.greeting)
	if len(b.topics) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.topics))
		for i, t := range b.topics {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(t.Label, "topic_"+strconv.Itoa(i))))
		}
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	b.send(reply)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if strings.EqualFold(text, b.quizTrigger) {
		b.sendQuiz(msg.Chat.ID)
		return
	}
	b.logger.Info("question received", "chat_id", msg.Chat.ID)
	b.send(tgbotapi.NewMessage(msg.Chat.ID, b.engine.Answer(ctx, msg.Text)))
}

func (b *Bot) sendQuiz(chatID int64) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.quiz.Options))
	for i, opt := range b.quiz.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt, "quiz_"+strconv.Itoa(i))))
	}
	reply := tgbotapi.NewMessage(chatID, b.quiz.Text)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(reply)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge so the client stops its progress indicator.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Warn("callback ack failed", "error", err)
	}
	if cq.Message == nil {
		return
	}

	if data, ok := strings.CutPrefix(cq.Data, "quiz_"); ok {
		b.handleQuizAnswer(cq, data)
		return
	}
	if data, ok := strings.CutPrefix(cq.Data, "topic_"); ok {
		b.handleTopic(ctx, cq, data)
	}
}

func (b *Bot) handleQuizAnswer(cq *tgbotapi.CallbackQuery, data string) {
	selected, err := strconv.Atoi(data)
	if err != nil {
		b.logger.Warn("malformed quiz callback", "data", cq.Data)
		return
	}
	var response string
	if b.quiz.Check(selected) {
		response = "✅ Правильно!!!"
	} else {
		response = fmt.Sprintf("❌ Неправильно(( Правильный ответ был: %s", b.quiz.Correct())
	}
	b.send(tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, response))
}

func (b *Bot) handleTopic(ctx context.Context, cq *tgbotapi.CallbackQuery, data string) {
	idx, err := strconv.Atoi(data)
	if err != nil || idx < 0 || idx >= len(b.topics) {
		b.logger.Warn("malformed topic callback", "data", cq.Data)
		return
	}
	b.send(tgbotapi.NewMessage(cq.Message.Chat.ID, b.engine.Answer(ctx, b.topics[idx].Question)))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("telegram send failed", "error", err)
	}
}

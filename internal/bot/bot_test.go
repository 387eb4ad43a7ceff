package bot

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/internal/config"
	"orgbot/internal/quiz"
)

// fakeAPI records outgoing payloads instead of talking to Telegram.
type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

// stubEngine answers every question with a canned reply.
type stubEngine struct {
	lastQuestion string
}

func (s *stubEngine) Answer(_ context.Context, question string) string {
	s.lastQuestion = question
	return "answer to: " + question
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *stubEngine) {
	t.Helper()
	q, err := quiz.New("Какой актив Latoken запустил первым?", []string{"BTC", "ETH", "LA Token"}, 2)
	require.NoError(t, err)
	api := &fakeAPI{}
	engine := &stubEngine{}
	cfg := config.TelegramConfig{
		Greeting:    "Привет!",
		QuizTrigger: "хочу квиз",
		Topics: []config.Topic{
			{Label: "О компании", Question: "Расскажи о компании."},
		},
	}
	return newBot(api, engine, q, cfg, slog.Default()), api, engine
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 42}}
}

func TestHandleMessage_Question(t *testing.T) {
	b, api, engine := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: message("Когда хакатон?")})

	assert.Equal(t, "Когда хакатон?", engine.lastQuestion)
	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "answer to: Когда хакатон?", msg.Text)
}

func TestHandleMessage_QuizTrigger(t *testing.T) {
	b, api, engine := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: message("Хочу квиз")})

	assert.Empty(t, engine.lastQuestion, "quiz trigger must not hit the engine")
	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "Какой актив Latoken запустил первым?", msg.Text)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, 3)
}

func TestHandleCommand_StartShowsTopics(t *testing.T) {
	b, api, _ := newTestBot(t)

	msg := message("/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})

	require.Len(t, api.sent, 1)
	sent := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "Привет!", sent.Text)
	kb, ok := sent.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "О компании", kb.InlineKeyboard[0][0].Text)
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 42}},
	}
}

func TestHandleCallback_QuizCorrect(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callback("quiz_2")})

	require.Len(t, api.requests, 1, "callback must be acknowledged")
	require.Len(t, api.sent, 1)
	edit, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, "✅ Правильно!!!", edit.Text)
}

func TestHandleCallback_QuizWrong(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callback("quiz_0")})

	require.Len(t, api.sent, 1)
	edit := api.sent[0].(tgbotapi.EditMessageTextConfig)
	assert.Contains(t, edit.Text, "❌")
	assert.Contains(t, edit.Text, "LA Token")
}

func TestHandleCallback_Topic(t *testing.T) {
	b, api, engine := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callback("topic_0")})

	assert.Equal(t, "Расскажи о компании.", engine.lastQuestion)
	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "answer to: Расскажи о компании.", msg.Text)
}

func TestHandleCallback_Malformed(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callback("quiz_zzz")})
	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callback("topic_9")})

	assert.Empty(t, api.sent)
}

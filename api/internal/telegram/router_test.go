package telegram

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"analyze-skin/api/internal/skin"
	"analyze-skin/api/internal/skin/gemini"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

type fakeBot struct {
	mu        sync.Mutex
	sent      []string
	fileIDs   []string
	getErr    error
	sendCalls int
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileIDs = append(f.fileIDs, cfg.FileID)
	if f.getErr != nil {
		return tgbotapi.File{}, f.getErr
	}
	return tgbotapi.File{FileID: cfg.FileID, FilePath: "photos/" + cfg.FileID + ".jpg"}, nil
}

func (f *fakeBot) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type harness struct {
	bot        *fakeBot
	router     *Router
	geminiBody map[string]any
	reply      string
	status     int
}

func newHarness(t *testing.T, apiKey string) *harness {
	t.Helper()
	h := &harness{bot: &fakeBot{}, reply: "Dry"}

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/file/bottest-token/photos/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(jpegBytes)
	}))
	t.Cleanup(files.Close)

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &h.geminiBody)
		if h.status != 0 {
			w.WriteHeader(h.status)
			return
		}
		b, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": h.reply}}}}},
		})
		_, _ = w.Write(b)
	}))
	t.Cleanup(model.Close)

	eng := gemini.New(gemini.Config{APIKey: apiKey, Model: "gemini-test", BaseURL: model.URL}, nil)
	h.router = &Router{
		Bot:          h.bot,
		Token:        "test-token",
		Service:      skin.NewService(eng, zap.NewNop()),
		Logger:       zap.NewNop(),
		FileEndpoint: files.URL + "/file/bot%s/%s",
	}
	return h
}

func commandUpdate(cmd string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Text:     cmd,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func TestPhotoIsClassified(t *testing.T) {
	h := newHarness(t, "key")
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}}

	h.router.HandleUpdate(context.Background(), upd)

	assert.Equal(t, []string{"large"}, h.bot.fileIDs)
	assert.Equal(t, ResultText(skin.Dry), h.bot.last())
	assert.Contains(t, h.bot.sent, PhotoAcceptedText)

	parts := h.geminiBody["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "image/jpeg", inline["mime_type"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpegBytes), inline["data"])
}

func TestImageDocumentUsesDeclaredMime(t *testing.T) {
	h := newHarness(t, "key")
	h.reply = "oily"
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/webp"},
	}}

	h.router.HandleUpdate(context.Background(), upd)

	assert.Equal(t, ResultText(skin.Oily), h.bot.last())
	parts := h.geminiBody["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "image/webp", parts[1].(map[string]any)["inline_data"].(map[string]any)["mime_type"])
}

func TestUpstreamErrorIsNotLeaked(t *testing.T) {
	h := newHarness(t, "key")
	h.status = http.StatusServiceUnavailable
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{{FileID: "p"}},
	}}

	h.router.HandleUpdate(context.Background(), upd)
	assert.Equal(t, "❌ Gemini API request failed with status 503", h.bot.last())
}

func TestMissingKeyReported(t *testing.T) {
	h := newHarness(t, "")
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{{FileID: "p"}},
	}}

	h.router.HandleUpdate(context.Background(), upd)
	assert.Equal(t, "❌ "+skin.MsgAPIKeyMissing, h.bot.last())
	assert.Nil(t, h.geminiBody)
}

func TestDownloadFailure(t *testing.T) {
	h := newHarness(t, "key")
	h.bot.getErr = errors.New("file is too big")
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{{FileID: "p"}},
	}}

	h.router.HandleUpdate(context.Background(), upd)
	assert.Equal(t, DownloadFailedText, h.bot.last())
	assert.Nil(t, h.geminiBody)
}

func TestCommandsAndText(t *testing.T) {
	h := newHarness(t, "")

	h.router.HandleUpdate(context.Background(), commandUpdate("/start"))
	assert.Equal(t, StartText, h.bot.last())

	h.router.HandleUpdate(context.Background(), commandUpdate("/health"))
	assert.Equal(t, "⚠️ "+skin.MsgAPIKeyMissing, h.bot.last())

	h.router.HandleUpdate(context.Background(), commandUpdate("/nope"))
	assert.Equal(t, UnknownCommandText, h.bot.last())

	h.router.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42}, Text: "hello",
	}})
	assert.Equal(t, SendPhotoText, h.bot.last())

	before := h.bot.sendCalls
	h.router.HandleUpdate(context.Background(), tgbotapi.Update{})
	assert.Equal(t, before, h.bot.sendCalls)
}

func TestHealthWithKey(t *testing.T) {
	h := newHarness(t, "key")
	h.router.HandleUpdate(context.Background(), commandUpdate("/health"))
	require.NotEmpty(t, h.bot.sent)
	assert.Equal(t, "✅ OK: rest (gemini-test)", h.bot.last())
}

package telegram

import (
	"context"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/skin"
)

// BotAPI is the subset of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

type Router struct {
	Bot     BotAPI
	Token   string
	Service *skin.Service
	Logger  *zap.Logger

	// FileEndpoint is a format string taking the token and the file path.
	FileEndpoint string
	HTTPClient   *http.Client
	// AnalyzeTimeout bounds download plus analysis for one photo.
	AnalyzeTimeout time.Duration
}

func (r *Router) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(cid, msg.Command())
		return
	}

	switch {
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1]
		r.analyzeFile(ctx, cid, ph.FileID, "")
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.analyzeFile(ctx, cid, msg.Document.FileID, msg.Document.MimeType)
	default:
		r.send(cid, SendPhotoText)
	}
}

func (r *Router) HandleCommand(chatID int64, command string) {
	switch command {
	case "start", "help":
		r.send(chatID, StartText)
	case "health":
		if err := r.Service.Ready(); err != nil {
			r.send(chatID, "⚠️ "+skin.PublicMessage(err))
			return
		}
		r.send(chatID, "✅ OK: "+r.Service.Engine().Name()+" ("+r.Service.Engine().GetModel()+")")
	default:
		r.send(chatID, UnknownCommandText)
	}
}

func (r *Router) analyzeFile(ctx context.Context, chatID int64, fileID, mime string) {
	timeout := r.AnalyzeTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logging.WithOperation(r.logger(), "telegram.analyze_photo", fileID).With(zap.Int64("chat_id", chatID))
	ctx = logging.NewContext(ctx, log)

	r.send(chatID, PhotoAcceptedText)

	dataURI, err := r.fetchAsDataURI(ctx, fileID, mime)
	if err != nil {
		log.Error("photo download failed", zap.Error(err))
		r.send(chatID, DownloadFailedText)
		return
	}

	res, err := r.Service.Analyze(ctx, skin.Request{Image: dataURI})
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		r.SendError(chatID, err)
		return
	}
	r.send(chatID, ResultText(res.SkinType))
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger().Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// SendError replies with the caller-facing message only.
func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, "❌ "+skin.PublicMessage(err))
}

package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"analyze-skin/api/internal/util"
)

// Telegram bots may download files up to 20 MB.
const maxDownload = 20 << 20

// fetchAsDataURI downloads a Telegram file and wraps it as
// data:<mime>;base64,<payload>. The MIME is sniffed when mime is empty.
func (r *Router) fetchAsDataURI(ctx context.Context, fileID, mime string) (string, error) {
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	endpoint := r.FileEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.FileEndpoint
	}
	img, err := download(ctx, r.httpClient(), fmt.Sprintf(endpoint, r.Token, file.FilePath))
	if err != nil {
		return "", err
	}
	if len(img) == 0 {
		return "", fmt.Errorf("empty file")
	}
	return util.MakeDataURL(util.PickMIME(mime, img), base64.StdEncoding.EncodeToString(img)), nil
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func download(ctx context.Context, c *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

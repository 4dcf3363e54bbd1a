package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/skin"
	"analyze-skin/api/internal/util"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash-latest"

	opGenerate   = "gemini.generate"
	maxReplySize = 4 << 20
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Engine calls the generateContent REST endpoint directly.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Engine {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Model:   model,
		BaseURL: base,
		httpc:   httpc,
		logger:  logger.Named("gemini"),
	}
}

func (e *Engine) Name() string     { return "rest" }
func (e *Engine) GetModel() string { return e.Model }
func (e *Engine) Configured() bool { return e.APIKey != "" }

type inlineData struct {
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate posts the prompt and inline image and returns the trimmed text of
// candidates[0].content.parts[0].
func (e *Engine) Generate(ctx context.Context, prompt string, img util.DataURI) (string, error) {
	log := logging.FromContext(ctx, e.logger).With(zap.String("model", e.Model))
	if e.APIKey == "" {
		return "", skin.ConfigurationError(opGenerate, skin.MsgAPIKeyMissing)
	}

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: img.MIMEType, Data: img.Payload}},
			},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &skin.Error{Kind: skin.KindUpstream, Op: opGenerate, Message: "Gemini API request failed", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", &skin.Error{Kind: skin.KindUpstream, Op: opGenerate, Message: "Gemini API request failed", Cause: e.redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", &skin.Error{Kind: skin.KindUpstream, Op: opGenerate, Message: "Gemini API request failed", Cause: e.redact(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return "", &skin.Error{Kind: skin.KindUpstream, Op: opGenerate, Message: "Gemini API request failed", Cause: err}
	}
	log.Debug("gemini replied", zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("Gemini API error", zap.Int("status", resp.StatusCode), zap.String("body", string(raw)))
		return "", skin.UpstreamError(opGenerate, resp.StatusCode, string(raw))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Error("could not decode Gemini response", zap.Error(err), zap.String("body", string(raw)))
		return "", skin.ParseError(opGenerate, err)
	}
	text := firstText(out)
	if text == "" {
		log.Error("could not parse text from Gemini response", zap.String("body", string(raw)))
		return "", skin.ParseError(opGenerate, nil)
	}
	return text, nil
}

func (e *Engine) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", e.BaseURL, url.PathEscape(e.Model), url.QueryEscape(e.APIKey))
}

// redact strips the API key from *url.Error values, which embed the full URL.
func (e *Engine) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && e.APIKey != "" {
		return &url.Error{
			Op:  ue.Op,
			URL: strings.ReplaceAll(ue.URL, url.QueryEscape(e.APIKey), "REDACTED"),
			Err: ue.Err,
		}
	}
	return err
}

func firstText(out generateResponse) string {
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
}

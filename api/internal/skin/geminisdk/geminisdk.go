package geminisdk

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/skin"
	"analyze-skin/api/internal/util"
)

const (
	opGenerate = "geminisdk.generate"

	defaultEndpoint = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-1.5-flash-latest"
	defaultTimeout  = 60 * time.Second
)

type Config struct {
	APIKey string
	Model  string
	// BaseURL accepts the same value as the REST engine; a trailing API
	// version segment is dropped because the SDK appends its own.
	BaseURL string
	Timeout time.Duration
}

// Engine talks to Gemini through the official Go SDK. A client is opened per
// call so no connection state is shared between requests.
type Engine struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
	logger   *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Engine{
		APIKey:   strings.TrimSpace(cfg.APIKey),
		Model:    model,
		Endpoint: endpointFromBaseURL(cfg.BaseURL),
		Timeout:  timeout,
		logger:   logger.Named("geminisdk"),
	}
}

// endpointFromBaseURL turns ".../v1beta" into the host root the SDK expects.
func endpointFromBaseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	for _, v := range []string{"/v1beta", "/v1"} {
		base = strings.TrimSuffix(base, v)
	}
	if base == "" {
		return defaultEndpoint
	}
	return base
}

func (e *Engine) Name() string     { return "sdk" }
func (e *Engine) GetModel() string { return e.Model }
func (e *Engine) Configured() bool { return e.APIKey != "" }

func (e *Engine) Generate(ctx context.Context, prompt string, img util.DataURI) (string, error) {
	if e.APIKey == "" {
		return "", skin.ConfigurationError(opGenerate, skin.MsgAPIKeyMissing)
	}
	data, err := img.Decode()
	if err != nil || len(data) == 0 {
		verr := skin.ValidationError(opGenerate, skin.MsgImageMalformed)
		verr.Cause = err
		return "", verr
	}
	mime := util.PickMIME(img.MIMEType, data)

	log := logging.FromContext(ctx, e.logger).With(zap.String("model", e.Model))

	// option.WithHTTPClient would drop the API key, so the timeout is a deadline.
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	opts := []option.ClientOption{option.WithAPIKey(e.APIKey)}
	if e.Endpoint != defaultEndpoint {
		opts = append(opts, option.WithEndpoint(e.Endpoint))
	}
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", &skin.Error{Kind: skin.KindConfiguration, Op: opGenerate, Message: "Gemini client could not be created", Cause: err}
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt), &genai.Blob{MIMEType: mime, Data: data})
	if err != nil {
		mapped := mapError(err)
		if mapped.Kind == skin.KindUpstream {
			log.Error("Gemini API error", zap.Int("status", mapped.StatusCode), zap.String("body", mapped.Body), zap.Error(err))
		}
		return "", mapped
	}

	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		log.Error("could not parse text from Gemini response", zap.Int("candidates", len(resp.Candidates)))
		return "", skin.ParseError(opGenerate, nil)
	}
	return text, nil
}

// mapError converts SDK failures into the skin error taxonomy.
func mapError(err error) *skin.Error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Body
		if body == "" {
			body = apiErr.Message
		}
		serr := skin.UpstreamError(opGenerate, apiErr.Code, body)
		serr.Cause = err
		return serr
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return skin.ParseError(opGenerate, err)
	}
	return &skin.Error{Kind: skin.KindUpstream, Op: opGenerate, Message: "Gemini API request failed", Cause: err}
}

// firstText returns the first text part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return ""
	}
	if t, ok := c.Content.Parts[0].(genai.Text); ok {
		return string(t)
	}
	return ""
}

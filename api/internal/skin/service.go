package skin

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/util"
)

const opAnalyze = "skin.analyze"

// Service runs one analysis per call. It holds no per-request state.
type Service struct {
	engine     Engine
	classifier Classifier
	prompt     string
	logger     *zap.Logger
}

type Option func(*Service)

// WithRules replaces the keyword table used to classify model replies.
func WithRules(rules []Rule) Option {
	return func(s *Service) { s.classifier = NewClassifier(rules) }
}

func WithPrompt(prompt string) Option {
	return func(s *Service) { s.prompt = prompt }
}

func NewService(engine Engine, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		engine:     engine,
		classifier: NewClassifier(DefaultRules),
		prompt:     Prompt,
		logger:     logger.Named("skin_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Engine() Engine { return s.engine }

// Ready fails with a configuration error when the engine lacks credentials.
// It is checked before any input is looked at.
func (s *Service) Ready() error {
	if !s.engine.Configured() {
		return ConfigurationError(opAnalyze, MsgAPIKeyMissing)
	}
	return nil
}

// Analyze validates req, asks the engine about the image and classifies the
// reply. Every returned error is an *Error.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	log := logging.FromContext(ctx, s.logger).With(
		zap.String("operation", opAnalyze),
		zap.String("engine", s.engine.Name()),
	)

	if err := s.Ready(); err != nil {
		return Result{}, err
	}

	if strings.TrimSpace(req.Image) == "" {
		return Result{}, ValidationError(opAnalyze, MsgImageRequired)
	}

	img, err := util.ParseDataURI(req.Image)
	if err != nil {
		verr := ValidationError(opAnalyze, MsgImageMalformed)
		verr.Cause = err
		return Result{}, verr
	}

	// Both engines get the same verdict on an undecodable payload.
	if data, err := img.Decode(); err != nil || len(data) == 0 {
		verr := ValidationError(opAnalyze, MsgImageMalformed)
		verr.Cause = err
		return Result{}, verr
	}

	text, err := s.engine.Generate(ctx, s.prompt, img)
	if err != nil {
		var typed *Error
		if !errors.As(err, &typed) {
			typed = &Error{Kind: KindUpstream, Op: opAnalyze, Message: "Gemini API request failed", Cause: err}
		}
		return Result{}, typed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ParseError(opAnalyze, nil)
	}

	st := s.classifier.Classify(text)
	log.Info("gemini reply classified",
		zap.String("raw_response", text),
		zap.String("skin_type", string(st)),
		zap.String("model", s.engine.GetModel()),
	)
	return Result{SkinType: st}, nil
}

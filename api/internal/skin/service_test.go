package skin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"analyze-skin/api/internal/util"
)

type stubEngine struct {
	configured bool
	reply      string
	err        error

	calls  int
	prompt string
	img    util.DataURI
}

func (s *stubEngine) Name() string     { return "stub" }
func (s *stubEngine) GetModel() string { return "stub-model" }
func (s *stubEngine) Configured() bool { return s.configured }

func (s *stubEngine) Generate(ctx context.Context, prompt string, img util.DataURI) (string, error) {
	s.calls++
	s.prompt = prompt
	s.img = img
	return s.reply, s.err
}

const testImage = "data:image/jpeg;base64,/9j/4AAQ"

func TestAnalyzeClassifiesReply(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	eng := &stubEngine{configured: true, reply: "  The skin appears Oily.\n"}
	svc := NewService(eng, zap.New(core))

	res, err := svc.Analyze(context.Background(), Request{Image: testImage})
	require.NoError(t, err)
	assert.Equal(t, Oily, res.SkinType)

	assert.Equal(t, 1, eng.calls)
	assert.Equal(t, Prompt, eng.prompt)
	assert.Equal(t, "image/jpeg", eng.img.MIMEType)
	assert.Equal(t, "/9j/4AAQ", eng.img.Payload)

	entries := logs.FilterMessage("gemini reply classified").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "The skin appears Oily.", fields["raw_response"])
	assert.Equal(t, "Oily", fields["skin_type"])
}

func TestAnalyzeTieBreak(t *testing.T) {
	svc := NewService(&stubEngine{configured: true, reply: "This looks dry and oily"}, zap.NewNop())
	res, err := svc.Analyze(context.Background(), Request{Image: testImage})
	require.NoError(t, err)
	assert.Equal(t, Oily, res.SkinType)
}

func TestAnalyzeUnknownWordIsUncertain(t *testing.T) {
	svc := NewService(&stubEngine{configured: true, reply: "sensitive"}, zap.NewNop())
	res, err := svc.Analyze(context.Background(), Request{Image: testImage})
	require.NoError(t, err)
	assert.Equal(t, Uncertain, res.SkinType)
}

func TestAnalyzeMissingKeySkipsEngine(t *testing.T) {
	eng := &stubEngine{configured: false, reply: "Oily"}
	svc := NewService(eng, zap.NewNop())

	for _, img := range []string{testImage, ""} {
		_, err := svc.Analyze(context.Background(), Request{Image: img})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindConfiguration))
		assert.Equal(t, MsgAPIKeyMissing, PublicMessage(err))
	}
	assert.Zero(t, eng.calls)
}

func TestAnalyzeMissingImage(t *testing.T) {
	eng := &stubEngine{configured: true}
	svc := NewService(eng, zap.NewNop())

	for _, img := range []string{"", "   "} {
		_, err := svc.Analyze(context.Background(), Request{Image: img})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
		assert.Equal(t, MsgImageRequired, PublicMessage(err))
	}
	assert.Zero(t, eng.calls)
}

func TestAnalyzeMalformedDataURI(t *testing.T) {
	eng := &stubEngine{configured: true}
	svc := NewService(eng, zap.NewNop())

	_, err := svc.Analyze(context.Background(), Request{Image: "not-a-data-uri"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.ErrorIs(t, err, util.ErrMalformedDataURI)
	assert.Zero(t, eng.calls)
}

func TestAnalyzeEmptyReplyIsParseError(t *testing.T) {
	svc := NewService(&stubEngine{configured: true, reply: " \n "}, zap.NewNop())
	_, err := svc.Analyze(context.Background(), Request{Image: testImage})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindParse))
}

func TestAnalyzePassesThroughTypedEngineErrors(t *testing.T) {
	upstream := UpstreamError("gemini.generate", 503, "overloaded")
	svc := NewService(&stubEngine{configured: true, err: upstream}, zap.NewNop())

	_, err := svc.Analyze(context.Background(), Request{Image: testImage})
	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Same(t, upstream, typed)
}

func TestAnalyzeWrapsUntypedEngineErrors(t *testing.T) {
	cause := errors.New("connection reset")
	svc := NewService(&stubEngine{configured: true, err: cause}, zap.NewNop())

	_, err := svc.Analyze(context.Background(), Request{Image: testImage})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, PublicMessage(err), "connection reset")
}

func TestServiceOptions(t *testing.T) {
	eng := &stubEngine{configured: true, reply: "dry and oily"}
	svc := NewService(eng, nil,
		WithPrompt("custom"),
		WithRules([]Rule{{Keyword: "dry", Type: Dry}}),
	)

	res, err := svc.Analyze(context.Background(), Request{Image: testImage})
	require.NoError(t, err)
	assert.Equal(t, Dry, res.SkinType)
	assert.Equal(t, "custom", eng.prompt)
	assert.Same(t, eng, svc.Engine())
}

func TestAnalyzeRejectsUndecodablePayload(t *testing.T) {
	eng := &stubEngine{configured: true, reply: "Oily"}
	svc := NewService(eng, zap.NewNop())

	for _, image := range []string{"data:image/png;base64,%%%not-base64%%%", "data:image/png;base64,"} {
		_, err := svc.Analyze(context.Background(), Request{Image: image})
		require.Error(t, err, image)
		assert.True(t, IsKind(err, KindValidation), image)
		assert.Equal(t, MsgImageMalformed, PublicMessage(err))
	}
	assert.Zero(t, eng.calls)
}

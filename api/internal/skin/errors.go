package skin

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindParse         Kind = "parse"
)

// Caller-facing messages.
const (
	MsgImageRequired   = "Image base64 string is required."
	MsgImageMalformed  = "Image must be a data URI (data:<mime>;base64,<payload>)."
	MsgInvalidJSON     = "Invalid JSON body."
	MsgAPIKeyMissing   = "GEMINI_API_KEY is not configured."
	MsgUnparsableReply = "Could not parse skin type from Gemini response."
	MsgInternal        = "Internal server error."
)

// Error is the single error type produced by the analysis flow.
// StatusCode and Body are set for upstream failures only.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	StatusCode int
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func ConfigurationError(op, message string) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: message}
}

// UpstreamError records a non-2xx reply from the model provider.
func UpstreamError(op string, status int, body string) *Error {
	return &Error{
		Kind:       KindUpstream,
		Op:         op,
		Message:    fmt.Sprintf("Gemini API request failed with status %d", status),
		StatusCode: status,
		Body:       body,
	}
}

func ParseError(op string, cause error) *Error {
	return &Error{Kind: KindParse, Op: op, Message: MsgUnparsableReply, Cause: cause}
}

// IsKind reports whether the first *Error in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// HTTPStatus maps err to the status returned to the caller.
func HTTPStatus(err error) int {
	if IsKind(err, KindValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text placed in the error envelope. It never includes
// the upstream response body.
func PublicMessage(err error) string {
	var target *Error
	if errors.As(err, &target) && target.Message != "" {
		return target.Message
	}
	return MsgInternal
}

package util

import (
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// ErrMalformedDataURI is returned when the input carries no payload section.
var ErrMalformedDataURI = errors.New("data uri has no payload")

var reDataURIMime = regexp.MustCompile(`data:([a-zA-Z0-9]+/[a-zA-Z0-9\-.+]+).*,`)

// DataURI is a parsed data:<mime>;base64,<payload> string.
// MIMEType may be empty when the prefix does not name one.
type DataURI struct {
	MIMEType string
	Payload  string
}

// ParseDataURI splits s into MIME type and payload. The payload is everything
// after the first comma; the MIME type is left empty when the prefix does not
// match data:<type>/<subtype>.
func ParseDataURI(s string) (DataURI, error) {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return DataURI{}, ErrMalformedDataURI
	}
	var out DataURI
	if m := reDataURIMime.FindStringSubmatch(s); len(m) == 2 {
		out.MIMEType = m[1]
	}
	out.Payload = s[idx+1:]
	return out, nil
}

// Decode returns the raw bytes of the payload. Standard base64 is tried first,
// then the URL-safe alphabet.
func (d DataURI) Decode() ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(d.Payload); err == nil {
		return b, nil
	} else if b2, err2 := base64.URLEncoding.DecodeString(d.Payload); err2 == nil {
		return b2, nil
	} else {
		return nil, err
	}
}

// String renders the data URI back in data:<mime>;base64,<payload> form.
func (d DataURI) String() string {
	return MakeDataURL(d.MIMEType, d.Payload)
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// SniffMimeHTTP detects an image MIME type from magic bytes.
func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) > 0 {
		return http.DetectContentType(b)
	}
	return "application/octet-stream"
}

// PickMIME prefers the MIME named in the data URI, then sniffs the bytes.
func PickMIME(hint string, data []byte) string {
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	return SniffMimeHTTP(data)
}

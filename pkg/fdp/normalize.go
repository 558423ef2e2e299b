package fdp

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/fdp-http-api/pkg/httpclient"
)

const contentTypePlain = "text/plain"

// Body is a normalized response body: raw text, plus the decoded JSON value
// when the response was a 200 that did not declare plain text.
type Body struct {
	Text       string
	JSON       any
	Structured bool
}

// Value returns the decoded JSON for structured bodies and the text otherwise.
func (b Body) Value() any {
	if b.Structured {
		return b.JSON
	}
	return b.Text
}

// String returns the raw body text.
func (b Body) String() string { return b.Text }

// ContentType resolves the declared content type. Servers behind FDP differ
// in header casing, so both spellings are looked up by raw key before
// falling back to plain text.
func ContentType(h http.Header) string {
	for _, key := range []string{"Content-Type", "content-type"} {
		if vals, ok := h[key]; ok && len(vals) > 0 {
			return vals[0]
		}
	}
	return contentTypePlain
}

func isPlainText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, contentTypePlain)
}

// Normalize decides whether the caller sees structured data or raw text.
// Non-200 responses and plain-text responses are returned as text; anything
// else is decoded as JSON and a decode failure is returned as an error.
func Normalize(resp httpclient.Response) (Body, error) {
	if resp == nil {
		return Body{}, fmt.Errorf("nil response")
	}
	text := resp.String()
	if resp.StatusCode() != http.StatusOK || isPlainText(ContentType(resp.Header())) {
		return Body{Text: text}, nil
	}

	var decoded any
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return Body{}, fmt.Errorf("decode json response: %w", err)
	}
	return Body{Text: text, JSON: decoded, Structured: true}, nil
}

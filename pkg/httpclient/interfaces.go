package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
	String() string
}

// File is a multipart attachment streamed from Reader under the form field Field.
type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Request describes a single outbound call. Body is JSON-encoded when non-nil.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	Body    any
	File    *File
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, req Request) (Response, error)
}

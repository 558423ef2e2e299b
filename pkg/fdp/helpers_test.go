package fdp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/Adda-Baaj/fdp-http-api/pkg/httpclient"
	"github.com/stretchr/testify/require"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	status int
	header http.Header
	body   string
}

func (s stubResponse) Body() []byte        { return []byte(s.body) }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return s.header }
func (s stubResponse) String() string      { return s.body }

// recordingTransport captures every request and answers with resp.
type recordingTransport struct {
	reqs []httpclient.Request
	resp httpclient.Response
	err  error
}

func (r *recordingTransport) Get(ctx context.Context, u string, headers map[string]string) (httpclient.Response, error) {
	return r.Do(ctx, httpclient.Request{Method: http.MethodGet, URL: u, Headers: headers})
}

func (r *recordingTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	r.reqs = append(r.reqs, req)
	if r.err != nil {
		return nil, r.err
	}
	if r.resp == nil {
		return stubResponse{status: http.StatusOK, header: http.Header{}}, nil
	}
	return r.resp, nil
}

func (r *recordingTransport) last(t *testing.T) httpclient.Request {
	t.Helper()
	require.NotEmpty(t, r.reqs, "no request recorded")
	return r.reqs[len(r.reqs)-1]
}

// newServerClient returns a client pointed at an httptest server running h.
func newServerClient(t *testing.T, user string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return New(user, u.Hostname(), port)
}

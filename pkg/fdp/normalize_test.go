package fdp

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeLookup(t *testing.T) {
	t.Run("canonical key", func(t *testing.T) {
		assert.Equal(t, "application/json", ContentType(http.Header{"Content-Type": {"application/json"}}))
	})
	t.Run("lowercase key", func(t *testing.T) {
		assert.Equal(t, "application/json", ContentType(http.Header{"content-type": {"application/json"}}))
	})
	t.Run("canonical key wins", func(t *testing.T) {
		h := http.Header{"Content-Type": {"text/csv"}, "content-type": {"application/json"}}
		assert.Equal(t, "text/csv", ContentType(h))
	})
	t.Run("missing defaults to plain text", func(t *testing.T) {
		assert.Equal(t, "text/plain", ContentType(http.Header{}))
		assert.Equal(t, "text/plain", ContentType(nil))
	})
}

func TestNormalize(t *testing.T) {
	jsonBody := `{"rows":[1,2],"name":"x"}`

	tests := []struct {
		name       string
		resp       stubResponse
		structured bool
	}{
		{
			name: "plain text ok",
			resp: stubResponse{status: 200, header: http.Header{"content-type": {"text/plain"}}, body: "ok"},
		},
		{
			name: "server error with json declared",
			resp: stubResponse{status: 500, header: http.Header{"Content-Type": {"application/json"}}, body: `{"error":"bad"}`},
		},
		{
			name: "missing content type",
			resp: stubResponse{status: 200, header: http.Header{}, body: jsonBody},
		},
		{
			name: "plain text with charset",
			resp: stubResponse{status: 200, header: http.Header{"Content-Type": {"text/plain; charset=utf-8"}}, body: jsonBody},
		},
		{
			name:       "json canonical key",
			resp:       stubResponse{status: 200, header: http.Header{"Content-Type": {"application/json"}}, body: jsonBody},
			structured: true,
		},
		{
			name:       "json lowercase key",
			resp:       stubResponse{status: 200, header: http.Header{"content-type": {"application/json; charset=utf-8"}}, body: jsonBody},
			structured: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Normalize(tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.structured, body.Structured)
			assert.Equal(t, tt.resp.body, body.Text)
			if !tt.structured {
				assert.Equal(t, tt.resp.body, body.Value())
				assert.Nil(t, body.JSON)
				return
			}
			var want any
			require.NoError(t, json.Unmarshal([]byte(tt.resp.body), &want))
			assert.Equal(t, want, body.Value())
		})
	}
}

func TestNormalizeDecodeFailure(t *testing.T) {
	_, err := Normalize(stubResponse{
		status: 200,
		header: http.Header{"Content-Type": {"application/json"}},
		body:   "not json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json response")
}

func TestNormalizeNilResponse(t *testing.T) {
	_, err := Normalize(nil)
	assert.Error(t, err)
}

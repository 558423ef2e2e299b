package fdp

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNotificationEmailList(t *testing.T) {
	t.Run("success hides body", func(t *testing.T) {
		c := newServerClient(t, "alice", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, []string{"a@uber.com", "b@uber.com"}, r.URL.Query()["email_list"])
			_, _ = w.Write([]byte("saved"))
		})
		status, text, err := c.SetNotificationEmailList(context.Background(), []string{"a@uber.com", "b@uber.com"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, text)
	})

	t.Run("failure surfaces text", func(t *testing.T) {
		c := newServerClient(t, "alice", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("not an admin"))
		})
		status, text, err := c.SetNotificationEmailList(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "not an admin", text)
	})
}

func TestGetNotificationEmailList(t *testing.T) {
	c := newServerClient(t, "alice", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["a@uber.com"]`))
	})
	status, body, err := c.GetNotificationEmailList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"a@uber.com"}, body.Value())
}

func TestRequestServiceOnboardingParams(t *testing.T) {
	tr := &recordingTransport{resp: stubResponse{status: http.StatusOK, body: "17"}}
	c := New("alice", "", 0, WithHTTPClient(tr))

	status, text, err := c.RequestServiceOnboarding(context.Background(), OnboardingRequest{
		ServiceName:    "ltv",
		DataSourceList: []string{"trips", "drivers"},
		Description:    "the LTV service",
		RequesterEmail: "test@uber.com",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "17", text)

	q := tr.last(t).Query
	assert.Equal(t, "ltv", q.Get("service_name"))
	assert.Equal(t, []string{"trips", "drivers"}, q["data_source_list"])
	assert.Equal(t, "the LTV service", q.Get("description"))
	assert.Equal(t, "test@uber.com", q.Get("requester_email"))
	assert.Equal(t, "False", q.Get("to_withdraw"))
	assert.Nil(t, tr.last(t).Body)
}

func TestApproveServiceOnboardingParams(t *testing.T) {
	tr := &recordingTransport{}
	c := New("alice", "", 0, WithHTTPClient(tr))

	_, _, err := c.ApproveServiceOnboarding(context.Background(), OnboardingApproval{
		RequestID: "17",
		Operator:  "test@uber.com",
		ToReject:  true,
	})
	require.NoError(t, err)

	q := tr.last(t).Query
	assert.Equal(t, "17", q.Get("request_id"))
	assert.Equal(t, "True", q.Get("to_reject"))
	_, hasList := q["data_source_list"]
	assert.False(t, hasList)
}

func TestListServiceOnboardingFilter(t *testing.T) {
	p := OnboardingFilter{PendingOnly: Bool(true)}.params()
	for _, key := range []string{"later_than", "request_id", "operator", "requested_by", "service_name"} {
		require.Contains(t, p, key)
		assert.Nil(t, p[key], key)
	}
	assert.Equal(t, true, p["pending_only"])

	c := newServerClient(t, "alice", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "True", r.URL.Query().Get("pending_only"))
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(`[{"service_name":"ltv"}]`))
	})
	status, body, err := c.ListServiceOnboarding(context.Background(), OnboardingFilter{PendingOnly: Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Structured)
}

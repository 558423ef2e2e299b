package fdp

import (
	"context"
	"net/http"
)

const qbPath = "/qb/api/v1/qabc"

// Sink is the output encoding requested from a QB query execution.
type Sink string

const (
	SinkCSV   Sink = "CSV"
	SinkJSON  Sink = "JSON"
	SinkKafka Sink = "KAFKA"
)

// ExecuteOnQB runs a query (or a saved query when isPermalink is set, in
// which case query holds the permalink id) with the given parameters. An
// empty sink defaults to CSV. Only the normalized body is returned; callers
// needing the status must rely on the text of failed calls.
func (c *Client) ExecuteOnQB(ctx context.Context, query string, params map[string]any, isPermalink bool, sink Sink) (Body, error) {
	if sink == "" {
		sink = SinkCSV
	}

	q := make(Params, len(params)+4)
	for k, v := range params {
		q[k] = v
	}
	q["query"] = query
	q["sink"] = string(sink)
	if isPermalink {
		q["is_permalink"] = 1
	}
	q[HeaderEmail] = c.email

	resp, err := c.call(ctx, http.MethodGet, qbPath, q, nil)
	if err != nil {
		return Body{}, err
	}
	return Normalize(resp)
}

package fdp

import (
	"context"
	"net/http"
)

const (
	sqlPath   = "/api/v1/sql"
	adminPath = sqlPath + "/admin"
)

// GetNotificationEmailList returns the administrative notification list.
func (c *Client) GetNotificationEmailList(ctx context.Context) (int, Body, error) {
	return c.callBody(ctx, http.MethodGet, adminPath+"/getNotificationEmailList", nil, nil)
}

// SetNotificationEmailList replaces the administrative notification list.
// A 200 yields empty text; any other status yields the service's text.
func (c *Client) SetNotificationEmailList(ctx context.Context, emails []string) (int, string, error) {
	status, text, err := c.callText(ctx, http.MethodPut, adminPath+"/setNotificationEmailList", Params{
		"email_list": emails,
	}, nil)
	if err != nil {
		return 0, "", err
	}
	if status == http.StatusOK {
		return status, "", nil
	}
	return status, text, nil
}

// OnboardingRequest issues, or withdraws, a service onboarding request.
type OnboardingRequest struct {
	ServiceName    string
	DataSourceList []string
	Description    string
	RequesterEmail string
	ToWithdraw     bool
}

// RequestServiceOnboarding submits req. On success the text is the request id.
func (c *Client) RequestServiceOnboarding(ctx context.Context, req OnboardingRequest) (int, string, error) {
	return c.callText(ctx, http.MethodPut, adminPath+"/requestServiceOnboarding", Params{
		"service_name":     req.ServiceName,
		"data_source_list": req.DataSourceList,
		"description":      req.Description,
		"requester_email":  req.RequesterEmail,
		"to_withdraw":      req.ToWithdraw,
	}, nil)
}

// OnboardingApproval approves or rejects a pending onboarding request.
type OnboardingApproval struct {
	RequestID      string
	DataSourceList []string
	Operator       string
	ToReject       bool
}

// ApproveServiceOnboarding approves, or rejects, a pending request.
func (c *Client) ApproveServiceOnboarding(ctx context.Context, a OnboardingApproval) (int, string, error) {
	return c.callText(ctx, http.MethodPut, adminPath+"/approveServiceOnboarding", Params{
		"request_id":       a.RequestID,
		"data_source_list": a.DataSourceList,
		"operator":         a.Operator,
		"to_reject":        a.ToReject,
	}, nil)
}

// OnboardingFilter narrows ListServiceOnboarding. Nil fields do not filter.
type OnboardingFilter struct {
	LaterThan   *string
	RequestID   *string
	PendingOnly *bool
	RequestedBy *string
	Operator    *string
	ServiceName *string
}

func (f OnboardingFilter) params() Params {
	return Params{
		"later_than":   optional(f.LaterThan),
		"request_id":   optional(f.RequestID),
		"pending_only": optional(f.PendingOnly),
		"operator":     optional(f.Operator),
		"requested_by": optional(f.RequestedBy),
		"service_name": optional(f.ServiceName),
	}
}

// ListServiceOnboarding lists onboarding requests matching f.
func (c *Client) ListServiceOnboarding(ctx context.Context, f OnboardingFilter) (int, Body, error) {
	return c.callBody(ctx, http.MethodGet, adminPath+"/listServiceOnboarding", f.params(), nil)
}

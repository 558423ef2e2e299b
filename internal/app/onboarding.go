package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/fdp-http-api/internal/logger"
	"github.com/Adda-Baaj/fdp-http-api/pkg/fdp"
)

// Onboarder registers a service with FDP once.
type Onboarder struct {
	api         API
	log         logger.Logger
	service     string
	requester   string
	description string
}

// NewOnboarder builds an onboarder for service; requester is used both as
// the requester and as the approving operator.
func NewOnboarder(api API, log logger.Logger, service, requester, description string) *Onboarder {
	return &Onboarder{
		api:         api,
		log:         logger.Ensure(log),
		service:     service,
		requester:   requester,
		description: description,
	}
}

// Ensure onboards the service unless an onboarding entry already names it.
// It reports whether a new onboarding was made.
func (o *Onboarder) Ensure(ctx context.Context) (bool, error) {
	status, body, err := o.api.ListServiceOnboarding(ctx, fdp.OnboardingFilter{})
	if err != nil {
		return false, fmt.Errorf("list service onboarding: %w", err)
	}
	if status != http.StatusOK || !body.Structured {
		return false, fmt.Errorf("list service onboarding: status %d: %s", status, body.Text)
	}

	if containsService(body.JSON, o.service) {
		o.log.InfoObj("service already onboarded", "service_name", o.service)
		return false, nil
	}

	requestStatus, requestID, err := o.api.RequestServiceOnboarding(ctx, fdp.OnboardingRequest{
		ServiceName:    o.service,
		DataSourceList: []string{},
		Description:    o.description,
		RequesterEmail: o.requester,
	})
	if err != nil {
		return false, fmt.Errorf("request service onboarding: %w", err)
	}

	approveStatus := http.StatusBadRequest
	if requestStatus == http.StatusOK {
		approveStatus, _, err = o.api.ApproveServiceOnboarding(ctx, fdp.OnboardingApproval{
			RequestID:      strings.TrimSpace(requestID),
			DataSourceList: []string{},
			Operator:       o.requester,
		})
		if err != nil {
			return false, fmt.Errorf("approve service onboarding: %w", err)
		}
	}

	if requestStatus != http.StatusOK || approveStatus != http.StatusOK {
		return false, fmt.Errorf("onboard service %s failed: request status %d, approve status %d", o.service, requestStatus, approveStatus)
	}
	o.log.InfoObj("service onboarded", "service_name", o.service)
	return true, nil
}

func containsService(list any, service string) bool {
	entries, ok := list.([]any)
	if !ok {
		return false
	}
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := m["service_name"].(string); name == service {
			return true
		}
	}
	return false
}

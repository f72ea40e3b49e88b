package service

import (
	"context"
	"net/http"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
)

// IntegrationService lists connected channels.
type IntegrationService struct {
	client Executor
	policy *fallback.Policy
}

// NewIntegrationService constructs the service.
func NewIntegrationService(deps Dependencies) *IntegrationService {
	return &IntegrationService{client: deps.client(), policy: deps.Policy}
}

// List returns integrations, or none when the backend does not expose them.
func (s *IntegrationService) List(ctx context.Context) ([]domain.Integration, error) {
	var payloads []dto.IntegrationPayload
	if err := s.client.Do(ctx, http.MethodGet, "/integrations", nil, &payloads); err != nil {
		return fallback.Recover(s.policy, fallback.IntegrationsList, err, []domain.Integration{}, nil)
	}
	out := make([]domain.Integration, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, integration(p))
	}
	return out, nil
}

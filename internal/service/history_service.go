package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// HistoryService reads the audit trail of a ticket.
type HistoryService struct {
	client Executor
	policy *fallback.Policy
}

// NewHistoryService constructs the service.
func NewHistoryService(deps Dependencies) *HistoryService {
	return &HistoryService{client: deps.client(), policy: deps.Policy}
}

// List returns history entries; an unavailable history reads as empty.
func (s *HistoryService) List(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	var payloads []dto.HistoryPayload
	err := s.client.Do(ctx, http.MethodGet, "/tickets/{id}/history", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": ticketID},
	}, &payloads)
	if err != nil {
		return fallback.Recover(s.policy, fallback.HistoryList, err, []domain.HistoryEntry{}, nil)
	}
	out := make([]domain.HistoryEntry, 0, len(payloads))
	for _, p := range payloads {
		entry := historyEntry(p)
		if entry.TicketID == "" {
			entry.TicketID = ticketID
		}
		out = append(out, entry)
	}
	return out, nil
}

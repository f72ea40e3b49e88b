package service

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// FeedbackService submits CSAT ratings.
type FeedbackService struct {
	client     Executor
	sessions   *session.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	gen        domain.Generation
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps Dependencies) *FeedbackService {
	return &FeedbackService{
		client:     deps.client(),
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.logger().Named("feedback"),
		gen:        deps.generation(),
	}
}

// SubmitCSAT rates a ticket from 1 to 5 with an optional comment.
func (s *FeedbackService) SubmitCSAT(ctx context.Context, ticketID string, score int, comment string) error {
	if strings.TrimSpace(ticketID) == "" {
		return apperrors.NewValidationError("ticket id is required", nil)
	}
	if score < 1 || score > 5 {
		return apperrors.NewValidationError("score must be between 1 and 5", map[string]any{"score": score})
	}
	var note *string
	if c := strings.TrimSpace(comment); c != "" {
		note = &c
	}

	path := "/tickets/{id}/feedback"
	var body any = dto.FeedbackRequest{Rating: score, Comment: note}
	if s.gen == domain.GenerationLegacy {
		path = "/tickets/{id}/csat"
		body = dto.LegacyCSATRequest{Score: score, Comment: note}
	}
	err := s.client.Do(ctx, http.MethodPost, path, &apiclient.RequestOptions{
		PathParams: map[string]string{"id": ticketID},
		Body:       body,
	}, nil)
	if err != nil {
		return err
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventFeedbackSubmitted,
		TicketID: ticketID,
		Actor:    sessionActor(s.sessions.Session(ctx)),
		Payload:  events.FeedbackSubmittedPayload{Score: score},
	})
	return nil
}

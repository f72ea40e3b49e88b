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
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// CommentService adapts the ticket comment thread.
type CommentService struct {
	client     Executor
	sessions   *session.Store
	policy     *fallback.Policy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	gen        domain.Generation
}

// NewCommentService constructs the service.
func NewCommentService(deps Dependencies) *CommentService {
	return &CommentService{
		client:     deps.client(),
		sessions:   deps.Sessions,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		logger:     deps.logger().Named("comments"),
		gen:        deps.generation(),
	}
}

// List returns the thread of a ticket, oldest first as the backend sends it.
func (s *CommentService) List(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	var payloads []dto.CommentPayload
	err := s.client.Do(ctx, http.MethodGet, "/tickets/{id}/comments", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": ticketID},
	}, &payloads)
	if err != nil {
		return fallback.Recover(s.policy, fallback.CommentsList, err, []domain.Comment{}, nil)
	}
	out := make([]domain.Comment, 0, len(payloads))
	for _, p := range payloads {
		c := comment(p)
		if c.TicketID == "" {
			c.TicketID = ticketID
		}
		out = append(out, c)
	}
	return out, nil
}

// Add appends a comment authored by the current user.
func (s *CommentService) Add(ctx context.Context, ticketID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	if text == "" {
		return nil, apperrors.NewValidationError("comment text is required", map[string]any{"field": "text"})
	}
	sess := s.sessions.Session(ctx)

	var body any = dto.CommentCreateRequest{CommentText: text}
	if s.gen == domain.GenerationLegacy {
		author := "guest"
		if sess != nil {
			author = sess.Email
		}
		body = dto.LegacyCommentCreateRequest{Text: text, Author: author, AuthorType: string(domain.RoleUser)}
	}

	var payload dto.CommentPayload
	err := s.client.Do(ctx, http.MethodPost, "/tickets/{id}/comments", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": ticketID},
		Body:       body,
	}, &payload)
	if err != nil {
		return nil, err
	}
	c := comment(payload)
	if c.TicketID == "" {
		c.TicketID = ticketID
	}
	if c.Text == "" {
		c.Text = text
	}
	if c.Author == "" && sess != nil {
		c.Author = firstNonEmpty(sess.Name, sess.Email)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticketID,
		Actor:    sessionActor(sess),
		Payload:  events.CommentAddedPayload{CommentID: c.ID, BodyPreview: preview(text, 80)},
	})
	return &c, nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

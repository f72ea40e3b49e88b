package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

const defaultListLimit = 50

// TicketService adapts ticket endpoints of both backend generations.
type TicketService struct {
	client     Executor
	sessions   *session.Store
	policy     *fallback.Policy
	sim        *fallback.Simulator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	adapter    ticketAdapter
	gen        domain.Generation
	source     string
	language   string
	offline    bool
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	return &TicketService{
		client:     deps.client(),
		sessions:   deps.Sessions,
		policy:     deps.Policy,
		sim:        deps.simulator(),
		dispatcher: deps.Dispatcher,
		logger:     deps.logger().Named("tickets"),
		adapter: ticketAdapter{
			dir:       directory{categories: deps.Backend.CategoryNames, departments: deps.Backend.DepartmentNames},
			threshold: deps.threshold(),
		},
		gen:      deps.generation(),
		source:   firstNonEmpty(deps.Backend.DefaultSource, "portal"),
		language: firstNonEmpty(deps.Backend.DefaultLanguage, "ru"),
		offline:  deps.Offline,
	}
}

// Submit sends a free-text problem description for classification.
func (s *TicketService) Submit(ctx context.Context, text string) (*domain.SubmissionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("problem description is required", map[string]any{"field": "text"})
	}
	sess, err := currentSession(ctx, s.sessions)
	if err != nil {
		return nil, err
	}

	var result domain.SubmissionResult
	if s.offline {
		result = s.simulateSubmission(sess, text)
	} else {
		result, err = s.submitRemote(ctx, sess, text)
		result, err = fallback.Recover(s.policy, fallback.TicketsCreate, err, result, func() domain.SubmissionResult {
			return s.simulateSubmission(sess, text)
		})
		if err != nil {
			return nil, err
		}
	}

	ev := events.Event{
		Type:    events.EventTicketSubmitted,
		Actor:   sessionActor(sess),
		Offline: s.offline || result.Simulated,
		Payload: events.TicketSubmittedPayload{
			Outcome:            result.Status,
			Message:            result.Message,
			Queue:              result.Queue,
			NeedsClarification: result.NeedsClarification,
			Simulated:          result.Simulated,
		},
	}
	if result.Ticket != nil {
		ev.TicketID = result.Ticket.ID
	}
	publish(ctx, s.dispatcher, s.logger, ev)
	return &result, nil
}

func (s *TicketService) simulateSubmission(sess *domain.Session, text string) domain.SubmissionResult {
	result := s.sim.Submission(text)
	ticket := s.sim.Ticket(sess.UserID, text, result)
	result.Ticket = &ticket
	return result
}

func (s *TicketService) submitRemote(ctx context.Context, sess *domain.Session, text string) (domain.SubmissionResult, error) {
	if s.gen == domain.GenerationLegacy {
		var resp dto.LegacySubmitResponse
		err := s.client.Do(ctx, http.MethodPost, "/submit_ticket", &apiclient.RequestOptions{
			Body: dto.LegacySubmitRequest{UserID: firstNonEmpty(sess.UserID, sess.Email), ProblemDescription: text},
		}, &resp)
		if err != nil {
			return domain.SubmissionResult{}, err
		}
		return legacySubmission(resp, s.adapter.threshold), nil
	}

	var payload dto.TicketPayload
	err := s.client.Do(ctx, http.MethodPost, "/tickets/create", &apiclient.RequestOptions{
		Body: dto.TicketCreateRequest{
			Source:   s.source,
			UserID:   sess.UserID,
			Body:     text,
			Language: s.language,
		},
	}, &payload)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	ticket := s.adapter.ticket(payload)
	return submissionFromTicket(ticket), nil
}

func legacySubmission(resp dto.LegacySubmitResponse, threshold float64) domain.SubmissionResult {
	status := domain.SubmissionWarning
	if strings.EqualFold(resp.Status, string(domain.SubmissionSuccess)) {
		status = domain.SubmissionSuccess
	}
	needs := resp.NeedsClarification || NeedsClarification(resp.Confidence.Ptr(), threshold)
	out := domain.SubmissionResult{
		Status:             status,
		Message:            resp.Message,
		NeedsClarification: needs,
		ConfidenceWarning:  resp.ConfidenceWarning,
		Queue:              resp.Queue,
	}
	if needs && out.ConfidenceWarning == "" {
		out.ConfidenceWarning = confidenceWarning(resp.Confidence.Ptr())
	}
	if resp.TicketID != "" {
		out.Ticket = &domain.Ticket{
			ID:                 string(resp.TicketID),
			Status:             domain.TicketStatusOpen,
			Queue:              resp.Queue,
			AIConfidence:       resp.Confidence.Ptr(),
			NeedsClarification: needs,
			Generation:         domain.GenerationLegacy,
		}
	}
	return out
}

func submissionFromTicket(t domain.Ticket) domain.SubmissionResult {
	out := domain.SubmissionResult{
		NeedsClarification: t.NeedsClarification,
		Queue:              t.Queue,
		Ticket:             &t,
	}
	switch {
	case t.AutoClosed || t.Status == domain.TicketStatusClosed:
		out.Status = domain.SubmissionSuccess
		out.Message = "Request closed automatically (AI)"
	case t.Queue != "":
		out.Status = domain.SubmissionWarning
		out.Message = fmt.Sprintf("Routed to department: %s", t.Queue)
	default:
		out.Status = domain.SubmissionWarning
		out.Message = "Ticket created and waiting for routing"
	}
	if t.NeedsClarification {
		out.ConfidenceWarning = confidenceWarning(t.AIConfidence)
	}
	return out
}

func confidenceWarning(conf *float64) string {
	if conf == nil {
		return "Classification is uncertain; an operator may ask for details"
	}
	return fmt.Sprintf("Classification confidence is %.0f%%; an operator may ask for details", *conf*100)
}

// List returns the user's tickets. Filters the backend cannot apply are
// applied locally.
func (s *TicketService) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.list(ctx, filter)
	return fallback.Recover(s.policy, fallback.TicketsList, err, tickets, nil)
}

func (s *TicketService) list(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := map[string]any{
		"skip":  filter.Skip,
		"limit": limit,
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, backendStatus(st, s.gen))
		}
		query["status"] = statuses
	}
	if len(filter.Categories) > 0 {
		query["category"] = filter.Categories
	}
	if len(filter.Priorities) > 0 {
		query["priority"] = filter.Priorities
	}
	if filter.DateFrom != nil {
		query["date_from"] = filter.DateFrom.Format(time.DateOnly)
	}
	if filter.DateTo != nil {
		query["date_to"] = filter.DateTo.Format(time.DateOnly)
	}
	if filter.Search != "" {
		query["search"] = filter.Search
	}
	if s.gen == domain.GenerationLegacy {
		if sess := s.sessions.Session(ctx); sess != nil {
			query["user_id"] = sess.Email
		}
	}

	var payloads dto.TicketList
	if err := s.client.Do(ctx, http.MethodGet, "/tickets", &apiclient.RequestOptions{Query: query}, &payloads); err != nil {
		return []domain.Ticket{}, err
	}
	if payloads.Skipped > 0 {
		s.logger.Warn("skipped undecodable tickets", zap.Int("skipped", payloads.Skipped), zap.Int("kept", len(payloads.Items)))
	}
	return FilterTickets(s.adapter.tickets(payloads.Items), filter), nil
}

// FilterTickets applies filter to tickets in memory.
func FilterTickets(tickets []domain.Ticket, filter domain.TicketFilter) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, t := range tickets {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Categories) > 0 && !containsFold(filter.Categories, t.Category) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsFold(filter.Priorities, t.Priority) {
			continue
		}
		if filter.DateFrom != nil && t.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && !t.CreatedAt.Before(endOfDay(*filter.DateTo)) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// endOfDay extends a date-only bound to cover the whole day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	if t.Equal(time.Date(y, m, d, 0, 0, 0, 0, t.Location())) {
		return t.AddDate(0, 0, 1)
	}
	return t.Add(time.Nanosecond)
}

func matchesSearch(t domain.Ticket, needle string) bool {
	for _, hay := range []string{t.ID, t.Subject, t.ProblemDescription, t.Category, t.Queue} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func containsStatus(set []domain.TicketStatus, st domain.TicketStatus) bool {
	for _, v := range set {
		if v == st {
			return true
		}
	}
	return false
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// Search records query in the local search history and lists matching tickets.
func (s *TicketService) Search(ctx context.Context, query string, filter domain.TicketFilter) ([]domain.Ticket, error) {
	query = strings.TrimSpace(query)
	if query != "" && s.sessions != nil {
		if err := s.sessions.RecordSearch(ctx, query); err != nil {
			s.logger.Warn("record search history", zap.Error(err))
		}
	}
	filter.Search = query
	return s.List(ctx, filter)
}

// Get fetches one ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	var payload dto.TicketPayload
	err := s.client.Do(ctx, http.MethodGet, "/tickets/{id}", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": id},
	}, &payload)
	if err != nil {
		if _, err = fallback.Recover(s.policy, fallback.TicketsGet, err, (*domain.Ticket)(nil), nil); err != nil {
			return nil, err
		}
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	t := s.adapter.ticket(payload)
	return &t, nil
}

// Update changes mutable ticket fields.
func (s *TicketService) Update(ctx context.Context, id string, upd domain.TicketUpdate) (*domain.Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}
	req := dto.TicketUpdateRequest{
		Priority:             upd.Priority,
		CategoryID:           upd.CategoryID,
		AssignedDepartmentID: upd.AssignedDepartmentID,
		AssignedOperatorID:   upd.AssignedOperatorID,
	}
	if upd.Status != nil {
		token := backendStatus(*upd.Status, s.gen)
		req.Status = &token
	}

	method := http.MethodPut
	if s.gen == domain.GenerationLegacy {
		method = http.MethodPatch
	}
	var payload dto.TicketPayload
	err := s.client.Do(ctx, method, "/tickets/{id}", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": id},
		Body:       req,
	}, &payload)
	if err != nil {
		return nil, err
	}
	t := s.adapter.ticket(payload)
	if t.ID == "" {
		t.ID = id
	}
	if upd.Status != nil {
		sess := s.sessions.Session(ctx)
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: t.ID,
			Actor:    sessionActor(sess),
			Payload:  events.TicketStatusChangedPayload{NewStatus: *upd.Status},
		})
	}
	return &t, nil
}

// UpdateStatus moves a ticket into a display bucket.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status string) (*domain.Ticket, error) {
	st, ok := ParseDisplayStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	return s.Update(ctx, id, domain.TicketUpdate{Status: &st})
}

// Delete asks the backend to soft-delete (close) a ticket.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("ticket id is required", nil)
	}
	err := s.client.Do(ctx, http.MethodDelete, "/tickets/{id}", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": id},
	}, nil)
	if err != nil {
		return err
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Actor:    sessionActor(s.sessions.Session(ctx)),
	})
	return nil
}

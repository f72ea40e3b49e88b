package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// AssignmentService lets operators route tickets to departments and people.
// It is a thin layer over ticket updates plus a role check.
type AssignmentService struct {
	tickets    *TicketService
	sessions   *session.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps Dependencies, tickets *TicketService) *AssignmentService {
	return &AssignmentService{
		tickets:    tickets,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.logger().Named("assignment"),
	}
}

// SelfAssign assigns the ticket to the logged-in operator and moves it into work.
func (s *AssignmentService) SelfAssign(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	sess, err := s.requireAssignPriv(ctx)
	if err != nil {
		return nil, err
	}
	if sess.UserID == "" {
		return nil, apperrors.NewValidationError("session has no user id", nil)
	}
	inWork := domain.TicketStatusInProgress
	return s.assign(ctx, sess, ticketID, domain.TicketUpdate{AssignedOperatorID: &sess.UserID, Status: &inWork})
}

// AssignToOperator hands the ticket to another operator.
func (s *AssignmentService) AssignToOperator(ctx context.Context, ticketID, operatorID string) (*domain.Ticket, error) {
	sess, err := s.requireAssignPriv(ctx)
	if err != nil {
		return nil, err
	}
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return nil, apperrors.NewValidationError("operator id is required", map[string]any{"field": "operator_id"})
	}
	return s.assign(ctx, sess, ticketID, domain.TicketUpdate{AssignedOperatorID: &operatorID})
}

// AssignToDepartment reroutes the ticket to another department queue.
func (s *AssignmentService) AssignToDepartment(ctx context.Context, ticketID, departmentID string) (*domain.Ticket, error) {
	sess, err := s.requireAssignPriv(ctx)
	if err != nil {
		return nil, err
	}
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		return nil, apperrors.NewValidationError("department id is required", map[string]any{"field": "department_id"})
	}
	return s.assign(ctx, sess, ticketID, domain.TicketUpdate{AssignedDepartmentID: &departmentID})
}

func (s *AssignmentService) assign(ctx context.Context, sess *domain.Session, ticketID string, upd domain.TicketUpdate) (*domain.Ticket, error) {
	ticket, err := s.tickets.Update(ctx, ticketID, upd)
	if err != nil {
		return nil, err
	}
	payload := events.TicketAssignedPayload{
		OperatorID:   deref(upd.AssignedOperatorID),
		DepartmentID: deref(upd.AssignedDepartmentID),
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    sessionActor(sess),
		Payload:  payload,
	})
	return ticket, nil
}

func (s *AssignmentService) requireAssignPriv(ctx context.Context) (*domain.Session, error) {
	sess, err := currentSession(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if !auth.IsOperator(auth.NormalizeRole(sess.Role)) {
		return nil, apperrors.NewForbidden("operator or admin role required")
	}
	return sess, nil
}

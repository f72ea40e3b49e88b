package service

import (
	"strings"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

const defaultClarifyThreshold = 0.7

// backendToDisplay maps current-generation status tokens to display buckets.
var backendToDisplay = map[string]domain.TicketStatus{
	"new":           domain.TicketStatusOpen,
	"in_work":       domain.TicketStatusInProgress,
	"waiting":       domain.TicketStatusWaiting,
	"auto_resolved": domain.TicketStatusClosed,
	"closed":        domain.TicketStatusClosed,
}

var displayToBackend = map[domain.TicketStatus]string{
	domain.TicketStatusOpen:       "new",
	domain.TicketStatusInProgress: "in_work",
	domain.TicketStatusWaiting:    "waiting",
	domain.TicketStatusClosed:     "closed",
}

// DisplayStatus maps a backend status of either generation to its display
// bucket. Unknown values pass through unchanged.
func DisplayStatus(raw string) domain.TicketStatus {
	if st, ok := backendToDisplay[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	switch st := domain.TicketStatus(raw); st {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusWaiting, domain.TicketStatusClosed:
		return st
	}
	return domain.TicketStatus(raw)
}

// ParseDisplayStatus accepts display buckets and backend tokens, case-insensitively.
func ParseDisplayStatus(raw string) (domain.TicketStatus, bool) {
	for _, st := range []domain.TicketStatus{
		domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusWaiting, domain.TicketStatusClosed,
	} {
		if strings.EqualFold(raw, string(st)) {
			return st, true
		}
	}
	if st, ok := backendToDisplay[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st, true
	}
	return "", false
}

// backendStatus maps a display bucket to what the given generation expects.
func backendStatus(st domain.TicketStatus, gen domain.Generation) string {
	if gen == domain.GenerationLegacy {
		return string(st)
	}
	if token, ok := displayToBackend[st]; ok {
		return token
	}
	return string(st)
}

// NeedsClarification reports whether a classification is too uncertain.
func NeedsClarification(confidence *float64, threshold float64) bool {
	return confidence != nil && *confidence < threshold
}

// directory resolves category/department ids to display names.
type directory struct {
	categories  map[string]string
	departments map[string]string
}

func (d directory) category(id, name string) string {
	if name != "" {
		return name
	}
	if n, ok := d.categories[id]; ok {
		return n
	}
	return id
}

func (d directory) department(id, name string) string {
	if name != "" {
		return name
	}
	if n, ok := d.departments[id]; ok {
		return n
	}
	return id
}

// ticketAdapter turns decoded payloads into view-models.
type ticketAdapter struct {
	dir       directory
	threshold float64
}

func (a ticketAdapter) ticket(p dto.TicketPayload) domain.Ticket {
	if p.Current != nil {
		return a.fromCurrent(*p.Current)
	}
	if p.Legacy != nil {
		return a.fromLegacy(*p.Legacy)
	}
	return domain.Ticket{Generation: p.Generation}
}

func (a ticketAdapter) tickets(payloads []dto.TicketPayload) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, a.ticket(p))
	}
	return out
}

func (a ticketAdapter) fromCurrent(c dto.CurrentTicket) domain.Ticket {
	conf := c.AIConfidence.Ptr()
	status := DisplayStatus(c.Status)
	return domain.Ticket{
		ID:                 string(c.ID),
		UserID:             string(c.UserID),
		Subject:            deref(c.Subject),
		ProblemDescription: c.Body,
		Status:             status,
		Category:           a.dir.category(string(c.CategoryID), c.CategoryName),
		Priority:           deref(c.Priority),
		ProblemType:        deref(c.IssueType),
		Queue:              a.dir.department(string(c.AssignedDepartmentID), c.DepartmentName),
		AIConfidence:       conf,
		NeedsClarification: NeedsClarification(conf, a.threshold),
		AutoClosed:         c.AutoResolved || strings.EqualFold(c.Status, "auto_resolved"),
		IsEscalated:        c.IsEscalated,
		SLADeadline:        c.SLADeadline.Ptr(),
		CreatedAt:          c.CreatedAt.Time,
		UpdatedAt:          c.UpdatedAt.Time,
		ClosedAt:           c.ClosedAt.Ptr(),
		Generation:         domain.GenerationCurrent,
	}
}

func (a ticketAdapter) fromLegacy(l dto.LegacyTicket) domain.Ticket {
	conf := l.Confidence.Ptr()
	needs := NeedsClarification(conf, a.threshold)
	if l.NeedsClarification != nil {
		needs = *l.NeedsClarification
	}
	return domain.Ticket{
		ID:                 string(l.ID),
		UserID:             string(l.UserID),
		Subject:            l.Subject,
		ProblemDescription: l.ProblemDescription,
		Status:             DisplayStatus(l.Status),
		Category:           l.Category,
		Priority:           l.Priority,
		ProblemType:        l.ProblemType,
		Queue:              l.Queue,
		AIConfidence:       conf,
		NeedsClarification: needs,
		AutoClosed:         l.AutoClosed,
		SLADeadline:        l.SLADeadline.Ptr(),
		CSATScore:          l.CSATScore,
		CSATComment:        l.CSATComment,
		CreatedAt:          l.CreatedAt.Time,
		UpdatedAt:          l.UpdatedAt.Time,
		ClosedAt:           l.ClosedAt.Ptr(),
		Generation:         domain.GenerationLegacy,
	}
}

func comment(p dto.CommentPayload) domain.Comment {
	text := p.CommentText
	if text == "" {
		text = p.Text
	}
	author := firstNonEmpty(p.UserName, p.UserEmail, p.Author)
	role := p.UserRole
	if role == "" {
		role = p.AuthorType
	}
	normalized := auth.NormalizeRole(role)
	if p.IsAutoReply && role == "" {
		normalized = domain.RoleSystem
	}
	return domain.Comment{
		ID:          string(p.ID),
		TicketID:    string(p.TicketID),
		Author:      author,
		AuthorRole:  normalized,
		Text:        text,
		IsAutoReply: p.IsAutoReply,
		CreatedAt:   p.CreatedAt.Time,
	}
}

func historyEntry(p dto.HistoryPayload) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          string(p.ID),
		TicketID:    string(p.TicketID),
		Action:      p.Action,
		ChangedBy:   firstNonEmpty(p.UserName, p.ChangedBy, string(p.UserID)),
		OldValue:    deref(p.OldValue),
		NewValue:    deref(p.NewValue),
		Description: deref(p.Description),
		CreatedAt:   p.CreatedAt.Time,
	}
}

func (a ticketAdapter) template(p dto.TemplatePayload) domain.Template {
	content := p.Content
	if content == "" {
		content = p.Text
	}
	category := p.Category
	if category == "" {
		category = a.dir.category(string(p.CategoryID), p.CategoryName)
	}
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return domain.Template{
		ID:       string(p.ID),
		Name:     p.Name,
		Category: category,
		Content:  content,
		Language: p.Language,
		IsActive: active,
	}
}

func notification(p dto.NotificationPayload) domain.Notification {
	return domain.Notification{
		ID:        string(p.ID),
		UserID:    string(p.UserID),
		TicketID:  string(p.TicketID),
		Type:      p.NotificationType,
		Title:     p.Title,
		Message:   p.Message,
		IsRead:    p.IsRead,
		CreatedAt: p.CreatedAt.Time,
	}
}

func integration(p dto.IntegrationPayload) domain.Integration {
	enabled := false
	switch {
	case p.Enabled != nil:
		enabled = *p.Enabled
	case p.Active != nil:
		enabled = *p.Active
	}
	status := p.Status
	if status == "" {
		status = "disconnected"
		if enabled {
			status = "connected"
		}
	}
	return domain.Integration{
		ID:      string(p.ID),
		Name:    p.Name,
		Type:    p.Type,
		Enabled: enabled,
		Status:  status,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

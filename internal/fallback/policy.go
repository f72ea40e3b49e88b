package fallback

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// Mode decides what a failed backend read turns into.
type Mode string

const (
	HardFail  Mode = "hard_fail"
	SoftEmpty Mode = "soft_empty"
	Simulated Mode = "simulated"
)

// Endpoint names a facade operation in the fallback table.
type Endpoint string

const (
	AuthLogin    Endpoint = "auth.login"
	AuthRegister Endpoint = "auth.register"
	AuthMe       Endpoint = "auth.me"

	TicketsCreate Endpoint = "tickets.create"
	TicketsUpdate Endpoint = "tickets.update"
	TicketsGet    Endpoint = "tickets.get"
	TicketsDelete Endpoint = "tickets.delete"
	TicketsList   Endpoint = "tickets.list"

	CommentsAdd  Endpoint = "comments.add"
	CommentsList Endpoint = "comments.list"
	HistoryList  Endpoint = "history.list"

	FeedbackSubmit Endpoint = "feedback.submit"

	TemplatesList  Endpoint = "templates.list"
	TemplatesWrite Endpoint = "templates.write"

	IntegrationsList Endpoint = "integrations.list"

	NotificationsList        Endpoint = "notifications.list"
	NotificationsUnreadCount Endpoint = "notifications.unread_count"
	NotificationsMarkRead    Endpoint = "notifications.mark_read"

	MetricsGet Endpoint = "metrics.get"
)

// defaultTable is the single place where degradation behavior is decided.
var defaultTable = map[Endpoint]Mode{
	AuthLogin:    HardFail,
	AuthRegister: HardFail,
	AuthMe:       HardFail,

	TicketsCreate: HardFail,
	TicketsUpdate: HardFail,
	TicketsGet:    HardFail,
	TicketsDelete: HardFail,
	TicketsList:   SoftEmpty,

	CommentsAdd:  HardFail,
	CommentsList: SoftEmpty,
	HistoryList:  SoftEmpty,

	FeedbackSubmit: HardFail,

	TemplatesList:  Simulated,
	TemplatesWrite: HardFail,

	IntegrationsList: SoftEmpty,

	NotificationsList:        SoftEmpty,
	NotificationsUnreadCount: SoftEmpty,
	NotificationsMarkRead:    HardFail,

	MetricsGet: Simulated,
}

// writeEndpoints always propagate failures; a write must never look
// successful when the backend did not take it.
var writeEndpoints = map[Endpoint]bool{
	AuthLogin:             true,
	AuthRegister:          true,
	TicketsUpdate:         true,
	TicketsDelete:         true,
	CommentsAdd:           true,
	FeedbackSubmit:        true,
	TemplatesWrite:        true,
	NotificationsMarkRead: true,
}

// Policy resolves backend failures according to the fallback table.
type Policy struct {
	table   map[Endpoint]Mode
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewPolicy builds the table from defaults plus startup overrides
// ("endpoint" -> "mode"). Unknown endpoints or modes are rejected.
func NewPolicy(overrides map[string]string, logger *zap.Logger, metrics *observability.Metrics) (*Policy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := make(map[Endpoint]Mode, len(defaultTable))
	for ep, mode := range defaultTable {
		table[ep] = mode
	}
	for rawEP, rawMode := range overrides {
		ep := Endpoint(rawEP)
		if _, ok := defaultTable[ep]; !ok {
			return nil, fmt.Errorf("unknown fallback endpoint %q", rawEP)
		}
		mode := Mode(rawMode)
		switch mode {
		case HardFail, SoftEmpty, Simulated:
		default:
			return nil, fmt.Errorf("unknown fallback mode %q for %s", rawMode, rawEP)
		}
		if writeEndpoints[ep] && mode != HardFail {
			return nil, fmt.Errorf("fallback endpoint %s is a write and must stay %s", rawEP, HardFail)
		}
		if ep == TicketsCreate && mode == SoftEmpty {
			return nil, fmt.Errorf("fallback endpoint %s cannot be %s", rawEP, SoftEmpty)
		}
		table[ep] = mode
	}
	return &Policy{table: table, logger: logger, metrics: metrics}, nil
}

// Mode returns the configured mode; unlisted endpoints hard-fail.
func (p *Policy) Mode(ep Endpoint) Mode {
	if p == nil {
		return defaultTable[ep]
	}
	if mode, ok := p.table[ep]; ok {
		return mode
	}
	return HardFail
}

// Entry is one row of the effective table.
type Entry struct {
	Endpoint Endpoint `json:"endpoint"`
	Mode     Mode     `json:"mode"`
}

// Entries lists the effective table sorted by endpoint.
func (p *Policy) Entries() []Entry {
	out := make([]Entry, 0, len(defaultTable))
	for ep := range defaultTable {
		out = append(out, Entry{Endpoint: ep, Mode: p.Mode(ep)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// Recover turns err into a fallback value when the endpoint allows it.
// simulate may be nil; a simulated endpoint without a simulator degrades
// to the empty value. Local validation errors always propagate.
func Recover[T any](p *Policy, ep Endpoint, err error, empty T, simulate func() T) (T, error) {
	if err == nil {
		return empty, nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return empty, err
	}

	mode := p.Mode(ep)
	if mode == Simulated && simulate == nil {
		mode = SoftEmpty
	}

	switch mode {
	case SoftEmpty:
		p.note(ep, mode, err)
		return empty, nil
	case Simulated:
		p.note(ep, mode, err)
		return simulate(), nil
	default:
		return empty, err
	}
}

func (p *Policy) note(ep Endpoint, mode Mode, err error) {
	if p == nil {
		return
	}
	p.metrics.RecordFallback(string(ep), string(mode))
	p.logger.Warn("backend read degraded",
		zap.String("endpoint", string(ep)),
		zap.String("mode", string(mode)),
		zap.Error(err))
}

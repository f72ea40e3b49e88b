package fallback

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// autoResolveKeywords mark requests the simulated classifier closes itself.
var autoResolveKeywords = []string{"password", "login", "пароль", "войти"}

var simulatedDepartments = []string{"IT", "HR", "Finance", "Support"}

// Simulator produces locally generated data shaped like backend answers.
type Simulator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewSimulator returns a simulator seeded from the clock.
func NewSimulator() *Simulator {
	seed := uint64(time.Now().UnixNano())
	return NewSeededSimulator(seed, seed>>1)
}

// NewSeededSimulator returns a deterministic simulator.
func NewSeededSimulator(seed1, seed2 uint64) *Simulator {
	return &Simulator{
		rnd: rand.New(rand.NewPCG(seed1, seed2)),
		now: time.Now,
	}
}

// between returns an integer in [min, max].
func (s *Simulator) between(min, max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rnd.IntN(max-min+1)
}

// Metrics returns a plausible snapshot flagged as simulated.
func (s *Simulator) Metrics() domain.Metrics {
	return domain.Metrics{
		Auto:      float64(s.between(68, 93)),
		Accuracy:  float64(s.between(84, 97)),
		SLA:       float64(s.between(95, 99)),
		Backlog:   s.between(8, 32),
		Simulated: true,
	}
}

// Templates returns the stock templates, optionally narrowed by category.
func (s *Simulator) Templates(category string) []domain.Template {
	stock := []domain.Template{
		stockTemplate("Standard reply", "Technical support",
			"Thank you for contacting us. Our technical team is already working on your problem."),
		stockTemplate("Billing", "Billing and payments",
			"Your billing request has been received. We will process it within 1-2 business days."),
	}
	if category == "" {
		return stock
	}
	out := make([]domain.Template, 0, len(stock))
	for _, tpl := range stock {
		if strings.EqualFold(tpl.Category, category) {
			out = append(out, tpl)
		}
	}
	return out
}

func stockTemplate(name, category, content string) domain.Template {
	return domain.Template{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte("template:"+name)).String(),
		Name:     name,
		Category: category,
		Content:  content,
		Language: "ru",
		IsActive: true,
	}
}

// Submission classifies text locally: credential problems close automatically,
// everything else is routed to a random department.
func (s *Simulator) Submission(text string) domain.SubmissionResult {
	lower := strings.ToLower(text)
	for _, kw := range autoResolveKeywords {
		if strings.Contains(lower, kw) {
			return domain.SubmissionResult{
				Status:    domain.SubmissionSuccess,
				Message:   "Request closed automatically (AI)",
				Simulated: true,
			}
		}
	}
	dept := simulatedDepartments[s.between(0, len(simulatedDepartments)-1)]
	return domain.SubmissionResult{
		Status:    domain.SubmissionWarning,
		Message:   fmt.Sprintf("Routed to department: %s", dept),
		Queue:     dept,
		Simulated: true,
	}
}

// Ticket fabricates a ticket for an offline submission.
func (s *Simulator) Ticket(userID, text string, result domain.SubmissionResult) domain.Ticket {
	now := s.now().UTC()
	t := domain.Ticket{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Subject:            subjectFrom(text),
		ProblemDescription: text,
		Status:             domain.TicketStatusOpen,
		Queue:              result.Queue,
		CreatedAt:          now,
		UpdatedAt:          now,
		Generation:         domain.GenerationCurrent,
	}
	if result.Status == domain.SubmissionSuccess {
		t.Status = domain.TicketStatusClosed
		t.AutoClosed = true
		t.ClosedAt = &now
	}
	return t
}

func subjectFrom(text string) string {
	text = strings.TrimSpace(text)
	if line, _, ok := strings.Cut(text, "\n"); ok {
		text = line
	}
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return text
}

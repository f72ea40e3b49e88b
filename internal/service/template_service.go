package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// TemplateService manages canned replies.
type TemplateService struct {
	client  Executor
	policy  *fallback.Policy
	sim     *fallback.Simulator
	adapter ticketAdapter
	gen     domain.Generation
}

// NewTemplateService constructs the service.
func NewTemplateService(deps Dependencies) *TemplateService {
	return &TemplateService{
		client: deps.client(),
		policy: deps.Policy,
		sim:    deps.simulator(),
		adapter: ticketAdapter{
			dir: directory{categories: deps.Backend.CategoryNames, departments: deps.Backend.DepartmentNames},
		},
		gen: deps.generation(),
	}
}

// List returns templates, optionally filtered by category name or id.
func (s *TemplateService) List(ctx context.Context, category string) ([]domain.Template, error) {
	category = strings.TrimSpace(category)
	query := map[string]any{}
	if category != "" {
		switch {
		case s.gen == domain.GenerationLegacy:
			query["category"] = category
		case isUUID(category):
			query["category_id"] = category
		default:
			query["category_name"] = category
		}
	}
	var payloads []dto.TemplatePayload
	err := s.client.Do(ctx, http.MethodGet, "/templates", &apiclient.RequestOptions{Query: query}, &payloads)
	if err != nil {
		return fallback.Recover(s.policy, fallback.TemplatesList, err, []domain.Template{}, func() []domain.Template {
			return s.sim.Templates(category)
		})
	}
	out := make([]domain.Template, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, s.adapter.template(p))
	}
	return out, nil
}

// Get fetches one template.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("template id is required", nil)
	}
	var p dto.TemplatePayload
	err := s.client.Do(ctx, http.MethodGet, "/templates/{id}", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": id},
	}, &p)
	if err != nil {
		return nil, err
	}
	tpl := s.adapter.template(p)
	return &tpl, nil
}

// Create adds a template.
func (s *TemplateService) Create(ctx context.Context, in domain.TemplateInput) (*domain.Template, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.NewValidationError("template name is required", map[string]any{"field": "name"})
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperrors.NewValidationError("template content is required", map[string]any{"field": "content"})
	}
	return s.write(ctx, http.MethodPost, "/templates", nil, in)
}

// Update changes a template; empty fields are left as they are.
func (s *TemplateService) Update(ctx context.Context, id string, in domain.TemplateInput) (*domain.Template, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("template id is required", nil)
	}
	return s.write(ctx, http.MethodPut, "/templates/{id}", map[string]string{"id": id}, in)
}

// Delete removes a template.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("template id is required", nil)
	}
	return s.client.Do(ctx, http.MethodDelete, "/templates/{id}", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": id},
	}, nil)
}

func (s *TemplateService) write(ctx context.Context, method, path string, params map[string]string, in domain.TemplateInput) (*domain.Template, error) {
	req := dto.TemplateWriteRequest{
		Name:     strings.TrimSpace(in.Name),
		Content:  in.Content,
		IsActive: in.IsActive,
	}
	if in.CategoryID != "" {
		req.CategoryID = &in.CategoryID
	}
	var p dto.TemplatePayload
	if err := s.client.Do(ctx, method, path, &apiclient.RequestOptions{PathParams: params, Body: req}, &p); err != nil {
		return nil, err
	}
	tpl := s.adapter.template(p)
	return &tpl, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

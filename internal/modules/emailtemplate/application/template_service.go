package application

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/domain"
)

// RenderError reports a broken template source or a failed execution.
// Handlers surface it as an unprocessable-entity response rather than a
// server fault, since the template text is user supplied.
type RenderError struct {
	Stage string // "parse" or "execute"
	Field string // "subject" or "body"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %s failed during %s: %v", e.Field, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

type CreateTemplateRequest struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	Name      string    `json:"name" validate:"required,min=2,max=120"`
	Subject   string    `json:"subject" validate:"required"`
	Body      string    `json:"body" validate:"required"`
	Variables []string  `json:"variables" validate:"dive,required"`
}

type UpdateTemplateRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Subject   *string  `json:"subject"`
	Body      *string  `json:"body"`
	Variables []string `json:"variables" validate:"omitempty,dive,required"`
}

// RenderedEmail is the output of executing a template's subject and body
// against a data map.
type RenderedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type TemplateService struct {
	repo     domain.TemplateRepository
	validate *validator.Validate
}

func NewTemplateService(repo domain.TemplateRepository) *TemplateService {
	return &TemplateService{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *TemplateService) Create(ctx context.Context, req CreateTemplateRequest) (*domain.EmailTemplate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := checkSources(req.Subject, req.Body); err != nil {
		return nil, err
	}

	tmpl := &domain.EmailTemplate{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		Variables: req.Variables,
	}
	if err := s.repo.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) Get(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TemplateService) List(ctx context.Context, filter domain.TemplateFilter, limit, offset int) ([]domain.EmailTemplate, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*domain.EmailTemplate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	tmpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Subject != nil {
		tmpl.Subject = *req.Subject
	}
	if req.Body != nil {
		tmpl.Body = *req.Body
	}
	if req.Variables != nil {
		tmpl.Variables = req.Variables
	}
	if err := checkSources(tmpl.Subject, tmpl.Body); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Render executes the template identified by id against data. Declared
// variables missing from data are filled with placeholder values so that
// previews work without a full payload.
func (s *TemplateService) Render(ctx context.Context, id uuid.UUID, data map[string]any) (*RenderedEmail, error) {
	tmpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderTemplate(tmpl, data)
}

// RenderTemplate executes an already-loaded template. The worker uses this
// directly when sending digests so it does not need a second repository
// round trip.
func RenderTemplate(tmpl *domain.EmailTemplate, data map[string]any) (*RenderedEmail, error) {
	merged := make(map[string]any, len(tmpl.Variables)+len(data))
	for _, name := range tmpl.Variables {
		merged[name] = "{" + name + "}"
	}
	for k, v := range data {
		merged[k] = v
	}

	subject, err := execute("subject", tmpl.Subject, merged)
	if err != nil {
		return nil, err
	}
	body, err := execute("body", tmpl.Body, merged)
	if err != nil {
		return nil, err
	}
	return &RenderedEmail{Subject: subject, Body: body}, nil
}

func checkSources(subject, body string) error {
	if _, err := template.New("subject").Parse(subject); err != nil {
		return &RenderError{Stage: "parse", Field: "subject", Err: err}
	}
	if _, err := template.New("body").Parse(body); err != nil {
		return &RenderError{Stage: "parse", Field: "body", Err: err}
	}
	return nil
}

func execute(field, source string, data map[string]any) (string, error) {
	t, err := template.New(field).Option("missingkey=zero").Parse(source)
	if err != nil {
		return "", &RenderError{Stage: "parse", Field: field, Err: err}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", &RenderError{Stage: "execute", Field: field, Err: err}
	}
	return buf.String(), nil
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/application"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/domain"
	tmpl_http "github.com/notifeed/notifeed/internal/modules/emailtemplate/interfaces/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type templateRepoStub struct {
	createFn  func(ctx context.Context, tmpl *domain.EmailTemplate) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error)
	listFn    func(ctx context.Context, filter domain.TemplateFilter, limit, offset int) ([]domain.EmailTemplate, int, error)
	updateFn  func(ctx context.Context, tmpl *domain.EmailTemplate) error
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (s *templateRepoStub) Create(ctx context.Context, tmpl *domain.EmailTemplate) error {
	return s.createFn(ctx, tmpl)
}

func (s *templateRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error) {
	return s.getByIDFn(ctx, id)
}

func (s *templateRepoStub) List(ctx context.Context, filter domain.TemplateFilter, limit, offset int) ([]domain.EmailTemplate, int, error) {
	return s.listFn(ctx, filter, limit, offset)
}

func (s *templateRepoStub) Update(ctx context.Context, tmpl *domain.EmailTemplate) error {
	return s.updateFn(ctx, tmpl)
}

func (s *templateRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func newHandler(repo *templateRepoStub) *tmpl_http.TemplateHandler {
	return tmpl_http.NewTemplateHandler(application.NewTemplateService(repo))
}

func jsonBody(v any) *bytes.Reader {
	data, _ := json.Marshal(v)
	return bytes.NewReader(data)
}

func TestTemplateHandler_Render(t *testing.T) {
	id := uuid.New()
	repo := &templateRepoStub{
		getByIDFn: func(ctx context.Context, gotID uuid.UUID) (*domain.EmailTemplate, error) {
			assert.Equal(t, id, gotID)
			return &domain.EmailTemplate{
				ID:        id,
				Subject:   "Digest for {{.name}}",
				Body:      "{{.unread}} unread",
				Variables: []string{"name", "unread"},
			}, nil
		},
	}
	h := newHandler(repo)

	req := httptest.NewRequest(stdhttp.MethodPost, "/email-templates/"+id.String()+"/render",
		jsonBody(map[string]any{"data": map[string]any{"name": "Dana", "unread": 3}}))
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	h.Render(w, req)

	require.Equal(t, stdhttp.StatusOK, w.Code)
	var rendered application.RenderedEmail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rendered))
	assert.Equal(t, "Digest for Dana", rendered.Subject)
	assert.Equal(t, "3 unread", rendered.Body)
}

func TestTemplateHandler_RenderExecutionFailureIsUnprocessable(t *testing.T) {
	id := uuid.New()
	repo := &templateRepoStub{
		getByIDFn: func(ctx context.Context, _ uuid.UUID) (*domain.EmailTemplate, error) {
			return &domain.EmailTemplate{ID: id, Subject: "{{call .fn}}", Body: "ok"}, nil
		},
	}
	h := newHandler(repo)

	req := httptest.NewRequest(stdhttp.MethodPost, "/email-templates/"+id.String()+"/render",
		jsonBody(map[string]any{"data": map[string]any{"fn": "nope"}}))
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	h.Render(w, req)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, w.Code)
}

func TestTemplateHandler_CreateRejectsBrokenSource(t *testing.T) {
	repo := &templateRepoStub{}
	h := newHandler(repo)

	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(stdhttp.MethodPost, "/email-templates", jsonBody(map[string]any{
		"company_id": uuid.New(),
		"name":       "broken",
		"subject":    "{{.name",
		"body":       "ok",
	})))
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, w.Code)
}

func TestTemplateHandler_CRUD(t *testing.T) {
	id := uuid.New()
	companyID := uuid.New()
	stored := &domain.EmailTemplate{
		ID:        id,
		CompanyID: companyID,
		Name:      "welcome",
		Subject:   "Hi {{.name}}",
		Body:      "Hello",
		Variables: []string{"name"},
	}
	repo := &templateRepoStub{
		createFn: func(ctx context.Context, tmpl *domain.EmailTemplate) error { return nil },
		getByIDFn: func(ctx context.Context, gotID uuid.UUID) (*domain.EmailTemplate, error) {
			if gotID != id {
				return nil, domain.ErrTemplateNotFound
			}
			copied := *stored
			return &copied, nil
		},
		listFn: func(ctx context.Context, filter domain.TemplateFilter, limit, offset int) ([]domain.EmailTemplate, int, error) {
			assert.Equal(t, &companyID, filter.CompanyID)
			assert.Equal(t, 20, limit)
			return []domain.EmailTemplate{*stored}, 1, nil
		},
		updateFn: func(ctx context.Context, tmpl *domain.EmailTemplate) error { return nil },
		deleteFn: func(ctx context.Context, gotID uuid.UUID) error {
			if gotID != id {
				return domain.ErrTemplateNotFound
			}
			return nil
		},
	}
	h := newHandler(repo)

	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(stdhttp.MethodPost, "/email-templates", jsonBody(map[string]any{
		"company_id": companyID,
		"name":       "welcome",
		"subject":    "Hi {{.name}}",
		"body":       "Hello",
		"variables":  []string{"name"},
	})))
	assert.Equal(t, stdhttp.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(stdhttp.MethodGet, "/email-templates?company_id="+companyID.String(), nil))
	assert.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	req := httptest.NewRequest(stdhttp.MethodGet, "/email-templates/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, stdhttp.StatusOK, w.Code)

	req = httptest.NewRequest(stdhttp.MethodPatch, "/email-templates/"+id.String(),
		jsonBody(map[string]any{"subject": "Welcome back {{.name}}"}))
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	h.Update(w, req)
	assert.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome back")

	req = httptest.NewRequest(stdhttp.MethodDelete, "/email-templates/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	h.Delete(w, req)
	assert.Equal(t, stdhttp.StatusNoContent, w.Code)

	missing := uuid.New()
	req = httptest.NewRequest(stdhttp.MethodGet, "/email-templates/"+missing.String(), nil)
	req.SetPathValue("id", missing.String())
	w = httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)

	req = httptest.NewRequest(stdhttp.MethodGet, "/email-templates/bad", nil)
	req.SetPathValue("id", "bad")
	w = httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(stdhttp.MethodGet, "/email-templates?company_id=bad", nil))
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
}

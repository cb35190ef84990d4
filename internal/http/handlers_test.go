package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dsjohal14/promptlib/internal/library"
	"github.com/dsjohal14/promptlib/internal/libs/config"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/ratelimit"
	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const testPassword = "s3cret-pass"

type account struct {
	email, password string
}

var (
	owner  = &account{"owner@empresa.com", testPassword}
	member = &account{"member@empresa.com", testPassword}
)

type testEnv struct {
	dir    string
	store  *db.FileStore
	router *chi.Mux
	users  map[string]prompt.User
}

func productionConfig() *config.Config {
	return &config.Config{Env: "production", AdminSecret: "top-secret"}
}

func setupTestHandler(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := db.NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	obs.InitLogger("error") // Quiet logs during tests

	env := &testEnv{dir: tmpDir, store: store, users: map[string]prompt.User{}}
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	for email, role := range map[string]prompt.Role{owner.email: prompt.RoleOwner, member.email: prompt.RoleUser} {
		u, err := store.CreateUser(context.Background(), prompt.User{Email: email, Name: email, Role: role, PasswordHash: hash})
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		env.users[email] = u
	}

	metrics := obs.NewMetrics()
	handler := NewHandler(cfg, store, library.New(store, metrics), metrics, obs.Logger("test"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	handler.Routes(r, ratelimit.New(false))
	env.router = r

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, as *account) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.SetBasicAuth(as.email, as.password)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func validPrompt(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "Resume un documento largo",
		"body":        "Resume {documento} en cinco puntos para gerencia.",
		"category":    "Operaciones",
		"tags":        []string{"resumen", "gerencia"},
	}
}

// createPublished creates a prompt as owner and publishes it.
func (e *testEnv) createPublished(t *testing.T, title string) prompt.Prompt {
	t.Helper()
	w := e.do(t, http.MethodPost, "/prompts", validPrompt(title), owner)
	expectStatus(t, w, http.StatusCreated)
	created := decode[prompt.Prompt](t, w)

	w = e.do(t, http.MethodPost, "/prompts/"+created.ID+"/publish", nil, owner)
	expectStatus(t, w, http.StatusOK)
	return decode[prompt.Prompt](t, w)
}

func TestHandleHealth(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	expectStatus(t, w, http.StatusOK)

	resp := decode[HealthResponse](t, w)
	if resp.Status != "ok" || !resp.Database {
		t.Errorf("expected healthy response, got %+v", resp)
	}

	if err := os.RemoveAll(env.dir); err != nil {
		t.Fatalf("failed to remove data dir: %v", err)
	}
	w = env.do(t, http.MethodGet, "/health", nil, nil)
	expectStatus(t, w, http.StatusServiceUnavailable)
	if resp := decode[HealthResponse](t, w); resp.Database {
		t.Error("expected database to be reported down")
	}
}

func TestHandleMetrics(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	env.do(t, http.MethodGet, "/health", nil, nil)

	w := env.do(t, http.MethodGet, "/metrics", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if !bytes.Contains(w.Body.Bytes(), []byte("promptlib_http_requests_total")) {
		t.Error("expected request counter in metrics output")
	}
}

func TestCreatePromptRequiresAuth(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/prompts", validPrompt("Sin usuario"), nil)
	expectStatus(t, w, http.StatusUnauthorized)
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}

	w = env.do(t, http.MethodPost, "/prompts", validPrompt("Clave errónea"), &account{owner.email, "wrong-password"})
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestCreatePrompt(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/prompts", validPrompt("Resumen ejecutivo"), member)
	expectStatus(t, w, http.StatusCreated)

	p := decode[prompt.Prompt](t, w)
	if p.Status != prompt.StatusDraft {
		t.Errorf("expected draft, got %s", p.Status)
	}
	if p.AuthorID != env.users[member.email].ID {
		t.Errorf("expected author %s, got %s", env.users[member.email].ID, p.AuthorID)
	}
	if p.Version != prompt.InitialVersion {
		t.Errorf("expected version %s, got %s", prompt.InitialVersion, p.Version)
	}

	audit, err := env.store.ListAudit(context.Background(), p.ID)
	if err != nil || len(audit) != 1 || audit[0].Action != prompt.ActionCreate {
		t.Errorf("expected one create audit entry, got %v (%v)", audit, err)
	}
}

func TestCreatePromptValidation(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/prompts", map[string]any{"description": "sin título"}, owner)
	expectStatus(t, w, http.StatusBadRequest)

	resp := decode[ValidationErrorResponse](t, w)
	for _, field := range []string{"title", "body", "category"} {
		if _, ok := resp.Details[field]; !ok {
			t.Errorf("expected validation message for %s, got %v", field, resp.Details)
		}
	}

	w = env.do(t, http.MethodPost, "/prompts", "{not json", owner)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestListPrompts(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	env.do(t, http.MethodPost, "/prompts", validPrompt("Borrador"), owner)
	published := env.createPublished(t, "Minuta de reunión")
	env.createPublished(t, "Correo a cliente")

	w := env.do(t, http.MethodGet, "/prompts", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]prompt.Prompt](t, w); len(list) != 2 {
		t.Errorf("expected 2 published prompts, got %d", len(list))
	}

	w = env.do(t, http.MethodGet, "/prompts?status=draft", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]prompt.Prompt](t, w); len(list) != 1 || list[0].Title != "Borrador" {
		t.Errorf("expected the draft only, got %+v", list)
	}

	w = env.do(t, http.MethodGet, "/prompts?search=minuta", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]prompt.Prompt](t, w); len(list) != 1 || list[0].ID != published.ID {
		t.Errorf("expected search to match %s, got %+v", published.ID, list)
	}

	w = env.do(t, http.MethodGet, "/prompts?page=1&limit=1", nil, nil)
	expectStatus(t, w, http.StatusOK)
	pg := decode[PromptPage](t, w)
	if pg.Total != 2 || len(pg.Data) != 1 || !pg.HasMore || pg.Limit != 1 {
		t.Errorf("unexpected first page: %+v", pg)
	}

	w = env.do(t, http.MethodGet, "/prompts?page=2&limit=1", nil, nil)
	pg = decode[PromptPage](t, w)
	if len(pg.Data) != 1 || pg.HasMore {
		t.Errorf("unexpected last page: %+v", pg)
	}

	w = env.do(t, http.MethodGet, "/prompts?limit=500", nil, nil)
	if pg := decode[PromptPage](t, w); pg.Limit != maxPageLimit {
		t.Errorf("expected limit capped at %d, got %d", maxPageLimit, pg.Limit)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/prompts?page=zero", nil, nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodGet, "/prompts?status=archived", nil, nil), http.StatusBadRequest)
}

func TestGetPromptNotFound(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodGet, "/prompts/missing", nil, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestUpdatePrompt(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	p := env.createPublished(t, "Correo de seguimiento")

	w := env.do(t, http.MethodPut, "/prompts/"+p.ID, map[string]any{"title": "Robado"}, member)
	expectStatus(t, w, http.StatusForbidden)

	body := "Escribe un correo de seguimiento para {cliente} sobre {tema}."
	w = env.do(t, http.MethodPut, "/prompts/"+p.ID, map[string]any{"body": body, "changelog": "Más contexto"}, owner)
	expectStatus(t, w, http.StatusOK)

	updated := decode[prompt.Prompt](t, w)
	if updated.Version != "1.1" || updated.Body != body {
		t.Errorf("expected version 1.1 with the new body, got %s", updated.Version)
	}

	w = env.do(t, http.MethodGet, "/prompts/"+p.ID+"/versions", nil, nil)
	expectStatus(t, w, http.StatusOK)
	versions := decode[[]prompt.Version](t, w)
	if len(versions) != 1 || versions[0].Body != p.Body || versions[0].Changelog != "Más contexto" {
		t.Errorf("expected one snapshot of the previous body, got %+v", versions)
	}

	w = env.do(t, http.MethodPut, "/prompts/"+p.ID, map[string]any{"isFavorite": true}, owner)
	expectStatus(t, w, http.StatusOK)
	if fav := decode[prompt.Prompt](t, w); !fav.IsFavorite || fav.Version != "1.1" {
		t.Errorf("expected favorite without a version bump, got %+v", fav)
	}

	expectStatus(t, env.do(t, http.MethodPut, "/prompts/"+p.ID, map[string]any{"title": ""}, owner), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPut, "/prompts/missing", map[string]any{"title": "x"}, owner), http.StatusNotFound)
}

func TestMemberCanUpdateOwnPrompt(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/prompts", validPrompt("Mío"), member)
	expectStatus(t, w, http.StatusCreated)
	p := decode[prompt.Prompt](t, w)

	w = env.do(t, http.MethodPut, "/prompts/"+p.ID, map[string]any{"description": "Actualizado"}, member)
	expectStatus(t, w, http.StatusOK)
}

func TestDeletePrompt(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	p := env.createPublished(t, "Para borrar")

	expectStatus(t, env.do(t, http.MethodDelete, "/prompts/"+p.ID, nil, member), http.StatusForbidden)

	w := env.do(t, http.MethodDelete, "/prompts/"+p.ID, nil, owner)
	expectStatus(t, w, http.StatusOK)
	if resp := decode[DeleteResponse](t, w); !resp.Success {
		t.Error("expected success")
	}

	w = env.do(t, http.MethodGet, "/prompts/"+p.ID, nil, nil)
	got := decode[prompt.Prompt](t, w)
	if got.Status != prompt.StatusDeprecated || got.DeprecatedAt == nil {
		t.Errorf("expected soft delete, got status %s", got.Status)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/prompts/missing", nil, owner), http.StatusNotFound)
}

func TestPublishAndDeprecate(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/prompts", validPrompt("Ciclo de vida"), member)
	created := decode[prompt.Prompt](t, w)

	expectStatus(t, env.do(t, http.MethodPost, "/prompts/"+created.ID+"/publish", nil, member), http.StatusForbidden)

	w = env.do(t, http.MethodPost, "/prompts/"+created.ID+"/publish", nil, owner)
	expectStatus(t, w, http.StatusOK)
	published := decode[prompt.Prompt](t, w)
	if published.Status != prompt.StatusPublished || published.PublishedAt == nil {
		t.Errorf("expected published prompt, got %+v", published)
	}
	if published.ReviewerID != env.users[owner.email].ID {
		t.Errorf("expected reviewer %s, got %s", env.users[owner.email].ID, published.ReviewerID)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/prompts/"+created.ID+"/publish", nil, owner), http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/prompts/"+created.ID+"/deprecate", map[string]string{"reason": "Obsoleto"}, member)
	expectStatus(t, w, http.StatusOK)
	deprecated := decode[prompt.Prompt](t, w)
	if deprecated.Status != prompt.StatusDeprecated || deprecated.Changelog != "Obsoleto" {
		t.Errorf("expected deprecated with reason, got %+v", deprecated)
	}

	audit, _ := env.store.ListAudit(context.Background(), created.ID)
	if len(audit) != 3 {
		t.Errorf("expected create, publish and deprecate audit entries, got %d", len(audit))
	}
}

func TestFeedback(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	p := env.createPublished(t, "Con feedback")
	path := "/prompts/" + p.ID + "/feedback"

	w := env.do(t, http.MethodPost, path, map[string]any{"feedback": "thumbs_up", "variablesUsed": map[string]string{"documento": "acta"}}, member)
	expectStatus(t, w, http.StatusOK)
	first := decode[FeedbackResponse](t, w)
	if first.Meta != nil || first.Feedback != prompt.ThumbsUp {
		t.Errorf("expected a new usage row, got %+v", first)
	}

	w = env.do(t, http.MethodPost, path, map[string]any{"feedback": "thumbs_down"}, member)
	expectStatus(t, w, http.StatusOK)
	second := decode[FeedbackResponse](t, w)
	if second.Meta == nil || !second.Meta.Updated || second.Meta.PreviousFeedback != prompt.ThumbsUp {
		t.Errorf("expected the verdict to be replaced, got %+v", second.Meta)
	}

	w = env.do(t, http.MethodGet, "/prompts/"+p.ID, nil, nil)
	got := decode[prompt.Prompt](t, w)
	if got.UseCount != 1 || got.ThumbsUp != 0 || got.ThumbsDown != 1 {
		t.Errorf("unexpected counters: uses=%d up=%d down=%d", got.UseCount, got.ThumbsUp, got.ThumbsDown)
	}

	w = env.do(t, http.MethodGet, path, nil, nil)
	expectStatus(t, w, http.StatusOK)
	if usage := decode[[]prompt.Usage](t, w); len(usage) != 1 {
		t.Errorf("expected 1 usage row, got %d", len(usage))
	}

	expectStatus(t, env.do(t, http.MethodPost, path, map[string]any{"feedback": "meh"}, member), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/prompts/missing/feedback", map[string]any{"feedback": "thumbs_up"}, member), http.StatusNotFound)
}

func TestSearchAndTags(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	env.createPublished(t, "Resumen ejecutivo")
	env.do(t, http.MethodPost, "/prompts", validPrompt("Resumen en borrador"), owner)

	w := env.do(t, http.MethodPost, "/prompts/search", map[string]any{"search": "resumen"}, nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode[SearchResponse](t, w)
	if resp.Count != 1 || resp.Results[0].Title != "Resumen ejecutivo" {
		t.Errorf("expected only the published prompt, got %+v", resp)
	}

	w = env.do(t, http.MethodPost, "/prompts/search", map[string]any{"search": "resumne"}, nil)
	if resp := decode[SearchResponse](t, w); resp.Count != 1 {
		t.Errorf("expected a fuzzy match for a typo, got %d", resp.Count)
	}

	w = env.do(t, http.MethodPost, "/prompts/search", map[string]any{"tags": []string{"inexistente"}}, nil)
	if resp := decode[SearchResponse](t, w); resp.Count != 0 {
		t.Errorf("expected no results, got %d", resp.Count)
	}

	w = env.do(t, http.MethodGet, "/tags", nil, nil)
	expectStatus(t, w, http.StatusOK)
	tags := decode[TagsResponse](t, w)
	if tags.Count != 2 || tags.Tags[0] != "gerencia" || tags.Tags[1] != "resumen" {
		t.Errorf("unexpected tags: %+v", tags)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/prompts/search", "oops", nil), http.StatusBadRequest)
}

func TestCategories(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	category := map[string]any{"name": "Operaciones", "color": "#0ea5e9", "order": 2}

	expectStatus(t, env.do(t, http.MethodPost, "/categories", category, member), http.StatusForbidden)
	expectStatus(t, env.do(t, http.MethodPost, "/categories", category, owner), http.StatusCreated)
	expectStatus(t, env.do(t, http.MethodPost, "/categories", category, owner), http.StatusConflict)
	expectStatus(t, env.do(t, http.MethodPost, "/categories", map[string]any{"name": " "}, owner), http.StatusBadRequest)

	env.createPublished(t, "En operaciones")

	w := env.do(t, http.MethodGet, "/categories", nil, nil)
	expectStatus(t, w, http.StatusOK)
	list := decode[[]prompt.Category](t, w)
	if len(list) != 1 || list[0].PromptsCount != 1 {
		t.Errorf("expected one category with one prompt, got %+v", list)
	}
}

func TestStats(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	p := env.createPublished(t, "Popular")
	env.do(t, http.MethodPost, "/prompts/"+p.ID+"/feedback", map[string]any{"feedback": "thumbs_up"}, member)

	w := env.do(t, http.MethodGet, "/stats", nil, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Overview struct {
			TotalPrompts int `json:"totalPrompts"`
			TotalUsage   int `json:"totalUsage"`
			AvgRating    int `json:"avgRating"`
		} `json:"overview"`
		TopPrompts []struct {
			ID string `json:"id"`
		} `json:"topPrompts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Overview.TotalPrompts != 1 || resp.Overview.TotalUsage != 1 || resp.Overview.AvgRating != 100 {
		t.Errorf("unexpected overview: %+v", resp.Overview)
	}
	if len(resp.TopPrompts) != 1 || resp.TopPrompts[0].ID != p.ID {
		t.Errorf("unexpected top prompts: %+v", resp.TopPrompts)
	}
}

func TestHandlePII(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/pii", map[string]string{"text": "Escribe a ana@empresa.com"}, nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode[PIIResponse](t, w)
	if len(resp.Detections) != 1 || resp.Detections[0].Type != "email" {
		t.Errorf("expected one email detection, got %+v", resp.Detections)
	}
	if resp.RiskLevel != prompt.RiskMedium || resp.HasHighRisk || resp.Warning == "" {
		t.Errorf("unexpected classification: %+v", resp)
	}

	w = env.do(t, http.MethodPost, "/pii", map[string]string{"text": "RUT 12.345.678-9"}, nil)
	if resp := decode[PIIResponse](t, w); !resp.HasHighRisk {
		t.Error("expected a RUT to be high risk")
	}
}

func TestHandleAnalyze(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	w := env.do(t, http.MethodPost, "/prompts/analyze", map[string]any{
		"title":       "Correo de bienvenida",
		"description": "Genera un correo para nuevos empleados",
		"body":        "Escribe un correo de bienvenida para {nombre} que se une al equipo de {area}.",
		"category":    "RRHH",
	}, nil)
	expectStatus(t, w, http.StatusOK)

	resp := decode[AnalyzeResponse](t, w)
	if !resp.Quality.Valid || resp.QualityLabel != "excellent" {
		t.Errorf("expected an excellent draft, got %+v", resp.Quality)
	}
	if len(resp.Variables) != 2 || resp.Variables[0] != "nombre" {
		t.Errorf("unexpected variables: %v", resp.Variables)
	}
	if len(resp.SuggestedTags) == 0 || resp.SuggestedTags[0] != "email" || resp.SuggestedCategory != "email" {
		t.Errorf("expected email to lead the suggestions, got %v", resp.SuggestedTags)
	}
}

func TestSignupAndCurrentUser(t *testing.T) {
	env := setupTestHandler(t, productionConfig())
	signup := map[string]string{"email": "nueva@empresa.com", "password": "contraseña-larga", "name": "Nueva"}

	w := env.do(t, http.MethodPost, "/auth/signup", signup, nil)
	expectStatus(t, w, http.StatusCreated)
	resp := decode[SignupResponse](t, w)
	if !resp.Success || resp.User.Role != prompt.RoleUser {
		t.Errorf("unexpected signup response: %+v", resp)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Error("password hash leaked in response")
	}

	w = env.do(t, http.MethodPost, "/auth/signup", signup, nil)
	expectStatus(t, w, http.StatusConflict)
	if e := decode[ErrorResponse](t, w); e.Error != "An account with this email already exists" {
		t.Errorf("unexpected conflict message: %q", e.Error)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/auth/signup", map[string]string{"email": "x", "password": "short"}, nil), http.StatusBadRequest)

	w = env.do(t, http.MethodGet, "/user", nil, &account{"nueva@empresa.com", "contraseña-larga"})
	expectStatus(t, w, http.StatusOK)
	if u := decode[prompt.User](t, w); u.Email != "nueva@empresa.com" {
		t.Errorf("expected the new user, got %s", u.Email)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/user", nil, nil), http.StatusUnauthorized)
}

func TestDevBypass(t *testing.T) {
	env := setupTestHandler(t, &config.Config{Env: "dev", DevAuthBypass: true})

	w := env.do(t, http.MethodGet, "/user", nil, nil)
	expectStatus(t, w, http.StatusOK)
	first, err := env.store.FirstUser(context.Background())
	if err != nil {
		t.Fatalf("failed to load first user: %v", err)
	}
	if u := decode[prompt.User](t, w); u.ID != first.ID {
		t.Errorf("expected the first user, got %s", u.ID)
	}

	prod := setupTestHandler(t, &config.Config{Env: "production", DevAuthBypass: true})
	expectStatus(t, prod.do(t, http.MethodGet, "/user", nil, nil), http.StatusUnauthorized)
}

func TestHandleSeed(t *testing.T) {
	env := setupTestHandler(t, productionConfig())

	expectStatus(t, env.do(t, http.MethodPost, "/admin/seed", nil, nil), http.StatusForbidden)

	req := httptest.NewRequest(http.MethodPost, "/admin/seed", nil)
	req.Header.Set(AdminSecretHeader, "top-secret")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)

	resp := decode[SeedResponse](t, w)
	if resp.Result.PromptsCreated != 6 || len(resp.Result.Errors) != 0 {
		t.Errorf("unexpected seed result: %+v", resp.Result)
	}

	w = env.do(t, http.MethodGet, "/prompts", nil, nil)
	if list := decode[[]prompt.Prompt](t, w); len(list) != 6 {
		t.Errorf("expected 6 published prompts after seeding, got %d", len(list))
	}
}

func TestRateLimitedRoute(t *testing.T) {
	store, err := db.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	obs.InitLogger("error")

	handler := NewHandler(productionConfig(), store, library.New(store, nil), nil, obs.Logger("test"))
	r := chi.NewRouter()
	handler.Routes(r, ratelimit.New(true))

	var last int
	for i := 0; i <= ratelimit.Strict.Requests; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader([]byte("{}")))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 after %d requests, got %d", ratelimit.Strict.Requests, last)
	}
}

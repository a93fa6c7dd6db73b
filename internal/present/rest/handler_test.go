package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/config"
	"github.com/caltha/wanderlust/internal/domain"
	"github.com/caltha/wanderlust/internal/present/rest/middleware"
	"github.com/caltha/wanderlust/internal/service"
	"github.com/caltha/wanderlust/internal/usecase"
	"github.com/caltha/wanderlust/jwt"
)

// --- mocks ---

type mockLocal struct {
	data wanderlust.AppData
}

func (m *mockLocal) Load(ctx context.Context) (wanderlust.AppData, error) {
	return m.data.Clone(), nil
}

func (m *mockLocal) Save(ctx context.Context, data wanderlust.AppData) error {
	m.data = data.Clone()
	return nil
}

type mockRemote struct{}

func (m *mockRemote) Fetch(ctx context.Context) (wanderlust.AppData, error) {
	return wanderlust.AppData{}, domain.ErrRemoteMissing
}
func (m *mockRemote) Seed(ctx context.Context, data wanderlust.AppData)       {}
func (m *mockRemote) Push(ctx context.Context, data wanderlust.AppData) error { return nil }

// --- helpers ---

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*echo.Echo, *usecase.ContentUsecase) {
	t.Helper()

	site := config.Site{Title: "Wanderlust Chronicles", Tagline: "Documenting our journeys."}

	uc := usecase.NewContentUsecase(&mockLocal{data: wanderlust.DefaultData()}, &mockRemote{}, nil)
	if err := uc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	views, err := NewViews(site, nil)
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	e := echo.New()
	e.HTTPErrorHandler = views.ErrorHandler

	auth := service.NewAuthService(config.Auth{Secret: testSecret})
	am := middleware.NewAuthMiddleware(auth)
	e.Use(am.IdentifyIdentity)

	h := NewHandler(site, views, uc, nil)
	h.RegisterRoutes(e)

	return e, uc
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.Create(jwt.Claims{Email: "traveler@example.com"}, testSecret)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	return "Bearer " + token
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestLandingShowsSeedTrips(t *testing.T) {
	e, _ := newTestServer(t)

	res := get(e, "/")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Indonesia") || !strings.Contains(body, "South East Asia") {
		t.Fatal("landing page is missing the seed trips")
	}
}

func TestDanglingTripFallsBackToLanding(t *testing.T) {
	e, _ := newTestServer(t)

	res := get(e, "/trip/never-existed")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Wanderlust Chronicles") {
		t.Fatal("expected the landing view")
	}
}

func TestTripDetailRendersBlocks(t *testing.T) {
	e, _ := newTestServer(t)

	res := get(e, "/trip/indonesia-2024")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Komodo") {
		t.Fatal("trip detail is missing block content")
	}
}

func TestViewTokenDispatch(t *testing.T) {
	e, _ := newTestServer(t)

	res := get(e, "/view/trip/sea-2025")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Ha Long Bay") {
		t.Fatal("view token did not reach the trip detail")
	}

	res = get(e, "/view/bogus/route")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Wanderlust Chronicles") {
		t.Fatal("unknown token did not land on the landing view")
	}
}

func TestMutationRequiresAuth(t *testing.T) {
	e, _ := newTestServer(t)

	body, _ := json.Marshal(wanderlust.ContentItem{Title: "Pho", Country: "Vietnam"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipe", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
}

func TestCreateRecipe(t *testing.T) {
	e, uc := newTestServer(t)

	body, _ := json.Marshal(wanderlust.ContentItem{Title: "Pho", Country: "Vietnam"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipe", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t))
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var item wanderlust.ContentItem
	if err := json.Unmarshal(res.Body.Bytes(), &item); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !regexp.MustCompile(`^pho-\d+$`).MatchString(item.ID) {
		t.Fatalf("derived id %q does not match pho-<digits>", item.ID)
	}

	if _, err := uc.Item(wanderlust.KindRecipe, item.ID); err != nil {
		t.Fatal("recipe did not land under recipes")
	}
	if _, err := uc.Item(wanderlust.KindTrip, item.ID); err == nil {
		t.Fatal("recipe leaked into trips")
	}
}

func TestUpsertRejectsUnknownKind(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/poem", strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t))
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestDeleteLastTripRendersEmptyLanding(t *testing.T) {
	e, uc := newTestServer(t)

	for _, item := range uc.List(wanderlust.KindTrip) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/trip/"+item.ID, nil)
		req.Header.Set("Authorization", bearer(t))
		res := httptest.NewRecorder()
		e.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("delete failed with %d", res.Code)
		}
	}

	res := get(e, "/")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "trip-card") {
		t.Fatal("landing still shows trip cards")
	}
}

func upload(t *testing.T, e *echo.Echo, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set("Authorization", bearer(t))
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

func TestUploadReturnsImageDataURI(t *testing.T) {
	e, _ := newTestServer(t)

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 16)...)
	res := upload(t, e, png)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var out struct {
		DataURI string `json:"dataUri"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !strings.HasPrefix(out.DataURI, "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %s", out.DataURI)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	e, _ := newTestServer(t)

	res := upload(t, e, []byte("just some prose, not pixels"))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestUploadRejectsOversizedImage(t *testing.T) {
	e, _ := newTestServer(t)

	big := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, maxUploadBytes)...)
	res := upload(t, e, big)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestAdminPagePromptsSignIn(t *testing.T) {
	e, _ := newTestServer(t)

	res := get(e, "/admin")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Sign in") {
		t.Fatal("anonymous admin view should prompt for sign in")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Manage Content") || strings.Contains(rec.Body.String(), "Sign in with") {
		t.Fatal("signed-in admin view should show the editor")
	}
}

func TestSyncStatusEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	req.Header.Set("Authorization", bearer(t))
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var status struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &status); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !status.OK {
		t.Fatal("expected sync to be ok")
	}
}

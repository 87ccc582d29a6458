package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/training-calculator/internal/auth"
	"github.com/gdg-garage/training-calculator/internal/config"
	"github.com/gdg-garage/training-calculator/internal/database"
	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/gdg-garage/training-calculator/internal/notifier"
	"github.com/gdg-garage/training-calculator/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	registrations []models.Registration
	activities    []string
}

func (f *fakeNotifier) NotifyRegistration(r models.Registration, activity string) error {
	f.registrations = append(f.registrations, r)
	f.activities = append(f.activities, activity)
	return nil
}

func (f *fakeNotifier) NotifyDigest(notifier.Digest) error { return nil }

type testEnv struct {
	db       *gorm.DB
	router   *chi.Mux
	auth     *auth.AuthHandler
	notifier *fakeNotifier
	admin    models.Admin
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	_, err = database.SeedActivities(db)
	require.NoError(t, err)

	admin := models.Admin{DiscordID: "admin-1", Username: "admin"}
	require.NoError(t, db.Create(&admin).Error)

	cfg := &config.Config{JWTSecret: "test-secret", PerPage: 2}
	logger := zap.NewNop()
	renderer, err := render.New()
	require.NoError(t, err)

	authHandler := auth.NewAuthHandler(cfg, db, logger)
	widgetHandler, err := NewWidgetHandler(db, renderer, AjaxPath, "", logger)
	require.NoError(t, err)

	n := &fakeNotifier{}
	admins := NewAdminHandler(db, renderer, authHandler, cfg.PerPage, AdminListPath, logger)
	admins.now = func() time.Time { return time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC) }

	r := chi.NewRouter()
	RegisterRoutes(r, Handlers{
		Auth:         authHandler,
		Registration: NewRegistrationHandler(db, n, logger),
		Admin:        admins,
		Widget:       widgetHandler,
		APIKey:       NewAPIKeyHandler(db, authHandler, logger),
	})

	token, err := authHandler.GenerateToken(admin.ID)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		router:   r,
		auth:     authHandler,
		notifier: n,
		admin:    admin,
		cookie:   &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

func validForm() url.Values {
	return url.Values{
		"action":                 {RegisterCompanyAction},
		"company--name":          {"Acme"},
		"company--type":          {"1"},
		"company--employeecount": {"120"},
		"training--traineecount": {"12"},
		"company--contactperson": {"Alice"},
		"company--email":         {"alice@acme.test"},
		"company--contactmobile": {"+971 50 000 0000"},
		"training--courses":      {"Excel, Safety"},
		"training--language":     {"English"},
		"training--location":     {"Dubai"},
		"training--percentage":   {"10"},
	}
}

func (e *testEnv) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req.AddCookie(e.cookie)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) submit(t *testing.T, mutate func(url.Values)) {
	t.Helper()
	form := validForm()
	if mutate != nil {
		mutate(form)
	}
	rr := e.post(AjaxPath, form)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

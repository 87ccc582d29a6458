package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/training-calculator/internal/config"
	"github.com/gdg-garage/training-calculator/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Admin{}, &models.APIKey{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestHandleMe(t *testing.T) {
	db := setupDB(t)

	admin := models.Admin{
		DiscordID: "123456",
		Username:  "testadmin",
		Email:     "test@example.com",
		Avatar:    "avatar_url",
	}
	db.Create(&admin)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db, nil)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(admin.ID)
		input := &AuthInput{
			Cookie: "theme=dark; auth_token=" + token,
		}
		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Username != admin.Username {
			t.Errorf("expected username %s, got %s", admin.Username, resp.Body.Username)
		}
		if resp.Body.Email != admin.Email {
			t.Errorf("expected email %s, got %s", admin.Email, resp.Body.Email)
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		db.Create(&models.APIKey{AdminID: admin.ID, Key: "k-123", Name: "export"})

		resp, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "k-123"})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != admin.ID {
			t.Errorf("expected admin %d, got %d", admin.ID, resp.Body.ID)
		}

		var key models.APIKey
		db.Where("key = ?", "k-123").First(&key)
		if key.LastUsedAt == nil {
			t.Error("expected last_used_at to be recorded")
		}
	})

	t.Run("ExpiredAPIKey", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		db.Create(&models.APIKey{AdminID: admin.ID, Key: "k-old", ExpiresAt: &past})

		if _, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "k-old"}); err == nil {
			t.Fatal("expected error for expired key, got nil")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &AuthInput{}
		_, err := handler.HandleMe(context.Background(), input)
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other"}, db, nil)
		token, _ := other.GenerateToken(admin.ID)
		_, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + token})
		if err == nil {
			t.Fatal("expected error for token signed with another secret")
		}
	})
}

func TestUpsertAdmin(t *testing.T) {
	db := setupDB(t)
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, nil)

	first, err := handler.upsertAdmin("42", "old", "old@example.com", "")
	if err != nil {
		t.Fatalf("upsertAdmin failed: %v", err)
	}
	second, err := handler.upsertAdmin("42", "new", "new@example.com", "a.png")
	if err != nil {
		t.Fatalf("upsertAdmin failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same admin row, got %d and %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.Admin{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 admin, got %d", count)
	}
	if second.Username != "new" {
		t.Errorf("expected username to be updated, got %s", second.Username)
	}
}

func TestToken_EmptySecret(t *testing.T) {
	db := setupDB(t)
	handler := NewAuthHandler(&config.Config{}, db, nil)

	if _, err := handler.GenerateToken(1); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}

	// A token signed with the empty key must not be accepted either.
	forged := signedToken(t, "", 1, time.Hour)
	if _, _, err := handler.ParseToken(forged); err == nil {
		t.Fatal("expected empty-secret token to be rejected")
	}
	if _, err := handler.Authorize(context.Background(), AuthInput{Cookie: "auth_token=" + forged}); err == nil {
		t.Fatal("expected Authorize to reject empty-secret token")
	}
}

func TestHandleLogin_SetsState(t *testing.T) {
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret", DiscordClientID: "client"}, nil, nil)

	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/discord/login", nil))

	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == StateCookieName {
			state = c.Value
		}
	}
	if len(state) != 32 {
		t.Fatalf("expected 32 hex char state cookie, got %q", state)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	if got := loc.Query().Get("state"); got != state {
		t.Errorf("expected state %q in redirect, got %q", state, got)
	}
}

func TestHandleCallback_RejectsBadState(t *testing.T) {
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, nil, nil)

	tests := []struct {
		name   string
		query  string
		cookie string
	}{
		{"NoCookie", "?code=abc&state=s1", ""},
		{"Mismatch", "?code=abc&state=s1", "s2"},
		{"MissingParam", "?code=abc", "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: StateCookieName, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			handler.HandleCallback(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), "Invalid OAuth state") {
				t.Errorf("unexpected body %q", rr.Body.String())
			}
		})
	}
}

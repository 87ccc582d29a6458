package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gdg-garage/training-calculator/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const AdminIDKey contextKey = "admin_id"

var (
	errUnknownAPIKey = errors.New("Unauthorized: Unknown API Key")
	errExpiredAPIKey = errors.New("Unauthorized: API Key expired")
)

func (h *AuthHandler) lookupAPIKey(ctx context.Context, key string) (uint, error) {
	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Where("key = ?", key).First(&keyModel).Error; err != nil {
		return 0, errUnknownAPIKey
	}
	if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
		return 0, errExpiredAPIKey
	}

	if err := h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", time.Now()).Error; err != nil {
		h.logger.Warn("Failed to record API key use", zap.Uint("api_key_id", keyModel.ID), zap.Error(err))
	}
	return keyModel.AdminID, nil
}

// AuthMiddleware admits requests carrying a valid X-API-KEY header or
// session cookie and stores the admin id in the request context.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Check for API Key Header
		if apiKey := r.Header.Get("X-API-KEY"); apiKey != "" {
			adminID, err := h.lookupAPIKey(r.Context(), apiKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), AdminIDKey, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// 2. Fallback to JWT Cookie
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			if err == http.ErrNoCookie {
				http.Error(w, "Unauthorized: No token found", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		adminID, expires, err := h.ParseToken(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		// Sliding session: refresh token if it's more than halfway through its duration
		if !expires.IsZero() && time.Until(expires) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(adminID); err == nil {
				http.SetCookie(w, h.sessionCookie(newToken))
			}
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

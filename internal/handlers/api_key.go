package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/training-calculator/internal/auth"
	"github.com/gdg-garage/training-calculator/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIKeyHeader carries an export key in place of the session cookie.
const APIKeyHeader = "X-API-KEY"

// exportEndpoints are the read-only registration routes an export key
// unlocks. Managing keys needs a session.
var exportEndpoints = []string{AdminListPath, AdminExportPath, RegistrationsJSON}

// APIKeyHandler manages export keys: tokens that let scripts pull the
// registration list and CSV export without a Discord login.
type APIKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	logger      *zap.Logger
	now         func() time.Time
}

func NewAPIKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{db: db, authHandler: authHandler, logger: logger, now: time.Now}
}

// sessionAdmin authorizes key management, which an export key cannot do.
func (h *APIKeyHandler) sessionAdmin(ctx context.Context, input auth.AuthInput) (uint, error) {
	if input.APIKey != "" {
		return 0, huma.Error403Forbidden("Export keys cannot manage API keys")
	}
	return h.authHandler.Authorize(ctx, input)
}

type CreateAPIKeyInput struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" doc:"Label shown in the key list, e.g. the script that exports" required:"true" minLength:"1" maxLength:"100"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Optional expiry, must be in the future"`
	}
}

// APIKeyResponse describes an export key. Key is only returned in full
// right after creation.
type APIKeyResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	Header     string     `json:"header" doc:"Request header the key is sent in"`
	Endpoints  []string   `json:"endpoints" doc:"Registration routes the key can read"`
	Expired    bool       `json:"expired"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "..." + key[len(key)-4:]
}

func (h *APIKeyHandler) response(k models.APIKey, key string) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		Header:     APIKeyHeader,
		Endpoints:  exportEndpoints,
		Expired:    k.ExpiresAt != nil && h.now().After(*k.ExpiresAt),
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

type CreateAPIKeyOutput struct {
	Body APIKeyResponse
}

// HandleCreate issues a new export key for the calling admin.
func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*CreateAPIKeyOutput, error) {
	adminID, err := h.sessionAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if input.Body.ExpiresAt != nil && !input.Body.ExpiresAt.After(h.now()) {
		return nil, huma.Error400BadRequest("expires_at must be in the future")
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}

	apiKey := models.APIKey{
		AdminID:   adminID,
		Key:       hex.EncodeToString(keyBytes),
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.WithContext(ctx).Create(&apiKey).Error; err != nil {
		h.logger.Error("Failed to create export key", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to create API key")
	}
	h.logger.Info("Export key created", zap.Uint("admin_id", adminID), zap.Uint("api_key_id", apiKey.ID), zap.String("name", apiKey.Name))

	return &CreateAPIKeyOutput{Body: h.response(apiKey, apiKey.Key)}, nil
}

type ListAPIKeysInput struct {
	auth.AuthInput
}

type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

// HandleList returns the caller's export keys, masked, oldest first.
func (h *APIKeyHandler) HandleList(ctx context.Context, input *ListAPIKeysInput) (*ListAPIKeysOutput, error) {
	adminID, err := h.sessionAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var apiKeys []models.APIKey
	if err := h.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("id asc").Find(&apiKeys).Error; err != nil {
		h.logger.Error("Failed to list export keys", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to list API keys")
	}

	out := make([]APIKeyResponse, 0, len(apiKeys))
	for _, k := range apiKeys {
		out = append(out, h.response(k, maskKey(k.Key)))
	}
	return &ListAPIKeysOutput{Body: out}, nil
}

type DeleteAPIKeyInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// HandleDelete revokes one of the caller's export keys.
func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyInput) (*struct{}, error) {
	adminID, err := h.sessionAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := h.db.WithContext(ctx).Where("id = ? AND admin_id = ?", input.ID, adminID).Delete(&models.APIKey{})
	if res.Error != nil {
		h.logger.Error("Failed to revoke export key", zap.Uint("api_key_id", input.ID), zap.Error(res.Error))
		return nil, huma.Error500InternalServerError("Failed to delete API key")
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("API key not found")
	}
	h.logger.Info("Export key revoked", zap.Uint("admin_id", adminID), zap.Uint("api_key_id", input.ID))

	return nil, nil
}

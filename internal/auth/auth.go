package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/training-calculator/internal/config"
	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"

	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour

	StateCookieName = "oauth_state"
	StateDuration   = 10 * time.Minute
)

// ErrMissingSecret is returned when sessions are used without a JWT secret.
var ErrMissingSecret = errors.New("JWT secret is not configured")

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
	logger      *zap.Logger
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HandleLogin redirects to Discord with a random state that the callback
// checks against a short-lived cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		h.logger.Error("Failed to generate OAuth state", zap.Error(err))
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Expires:  time.Now().Add(StateDuration),
		HttpOnly: true,
		Path:     "/auth/discord",
		SameSite: http.SameSiteLaxMode,
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func validState(r *http.Request) bool {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	got := r.URL.Query().Get("state")
	return subtle.ConstantTimeCompare([]byte(got), []byte(cookie.Value)) == 1
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if !validState(r) {
		h.logger.Warn("OAuth state mismatch", zap.String("remote_addr", r.RemoteAddr))
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", Path: "/auth/discord", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("OAuth exchange failed", zap.Error(err))
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(ctx, token)

	// Check Guild Membership
	if h.cfg.DiscordGuildID != "" {
		var guilds []struct {
			ID string `json:"id"`
		}
		if err := getJSON(client, DiscordUserGuildsAPI, &guilds); err != nil {
			http.Error(w, "Failed to get user guilds", http.StatusInternalServerError)
			return
		}

		isMember := false
		for _, g := range guilds {
			if g.ID == h.cfg.DiscordGuildID {
				isMember = true
				break
			}
		}

		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	var discordUser struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
	}
	if err := getJSON(client, DiscordUserAPI, &discordUser); err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	if !h.cfg.IsAdmin(discordUser.ID) {
		h.logger.Warn("Rejected non-admin login", zap.String("discord_id", discordUser.ID))
		http.Error(w, "Access denied: You are not allowed to manage registrations.", http.StatusForbidden)
		return
	}

	admin, err := h.upsertAdmin(discordUser.ID, discordUser.Username, discordUser.Email, discordUser.Avatar)
	if err != nil {
		h.logger.Error("Failed to save admin", zap.Error(err))
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(admin.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, h.sessionCookie(jwtToken))
	h.logger.Info("Admin logged in", zap.Uint("admin_id", admin.ID), zap.String("username", admin.Username))
	http.Redirect(w, r, h.cfg.AdminURL, http.StatusFound)
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (h *AuthHandler) upsertAdmin(discordID, username, email, avatar string) (*models.Admin, error) {
	var admin models.Admin
	if err := h.db.Where(models.Admin{DiscordID: discordID}).FirstOrInit(&admin).Error; err != nil {
		return nil, err
	}
	admin.Username = username
	admin.Email = email
	admin.Avatar = avatar

	if err := h.db.Save(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) secret() ([]byte, error) {
	if h.cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return []byte(h.cfg.JWTSecret), nil
}

func (h *AuthHandler) GenerateToken(adminID uint) (string, error) {
	key, err := h.secret()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"admin_id": adminID,
		"exp":      time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseToken validates a session token and returns the admin id and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (uint, time.Time, error) {
	key, err := h.secret()
	if err != nil {
		return 0, time.Time{}, err
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("invalid token claims")
	}
	adminIDFloat, ok := claims["admin_id"].(float64)
	if !ok || adminIDFloat <= 0 {
		return 0, time.Time{}, fmt.Errorf("invalid token claims")
	}

	var expires time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expires = exp.Time
	}
	return uint(adminIDFloat), expires, nil
}

// AuthInput lets huma operations authenticate with the session cookie or
// an API key.
type AuthInput struct {
	Cookie string `header:"Cookie"`
	APIKey string `header:"X-API-KEY"`
}

// Authorize resolves the admin id of a huma request. A value placed in ctx
// by AuthMiddleware wins.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (uint, error) {
	if id, ok := ctx.Value(AdminIDKey).(uint); ok && id != 0 {
		return id, nil
	}

	if input.APIKey != "" {
		id, err := h.lookupAPIKey(ctx, input.APIKey)
		if err != nil {
			return 0, huma.Error401Unauthorized(err.Error())
		}
		return id, nil
	}

	req := http.Request{Header: http.Header{"Cookie": {input.Cookie}}}
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return 0, huma.Error401Unauthorized("Unauthorized: No token found")
	}

	id, _, err := h.ParseToken(cookie.Value)
	if err != nil {
		return 0, huma.Error401Unauthorized("Unauthorized: Invalid token")
	}
	return id, nil
}

type MeResponse struct {
	Body struct {
		ID        uint   `json:"id"`
		DiscordID string `json:"discord_id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Avatar    string `json:"avatar"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	adminID, err := h.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}

	var admin models.Admin
	if err := h.db.WithContext(ctx).First(&admin, adminID).Error; err != nil {
		return nil, huma.Error404NotFound("Admin not found")
	}

	resp := &MeResponse{}
	resp.Body.ID = admin.ID
	resp.Body.DiscordID = admin.DiscordID
	resp.Body.Username = admin.Username
	resp.Body.Email = admin.Email
	resp.Body.Avatar = admin.Avatar
	return resp, nil
}

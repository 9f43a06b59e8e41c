package auth

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/quizdeck/quizdeck/pkg/http/errors"
)

// HTTPHandlers provides the REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc  *Service
	oauthSvc *OAuthService
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, oauthSvc *OAuthService, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc:  authSvc,
		oauthSvc: oauthSvc,
		logger:   logger,
	}
}

// Register handles POST /v1/auth/register.
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":         user,
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

// Login handles POST /v1/auth/login.
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

// Session handles GET /v1/auth/session. It reports the caller's identity, or
// 401 when the request carries no valid token.
func (h *HTTPHandlers) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "No active session")
		return
	}

	user, err := h.authSvc.GetUser(r.Context(), claims.UserID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          user,
	})
}

// OAuthStart handles GET /v1/oauth/{provider}/start.
func (h *HTTPHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.oauthSvc == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	provider := r.PathValue("provider")
	state := uuid.New().String()

	authURL, err := h.oauthSvc.AuthURL(provider, state)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthStartFailed, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"auth_url": authURL,
		"state":    state,
	})
}

// OAuthCallback handles GET /v1/oauth/{provider}/callback.
func (h *HTTPHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauthSvc == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	provider := r.PathValue("provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthMissingCode, "Authorization code required")
		return
	}

	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthInvalidState, "Invalid or missing state parameter")
		return
	}

	info, err := h.oauthSvc.Exchange(r.Context(), provider, code)
	if err != nil {
		h.logger.Warn().Err(err).Str("provider", provider).Msg("oauth exchange failed")
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthCallbackFailed, "OAuth exchange failed")
		return
	}

	user, tokens, err := h.authSvc.LoginWithProfile(r.Context(), info.Email, info.Name)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

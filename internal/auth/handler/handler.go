package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/blueDog-Consulting/gh-issues-view/internal/github"
	"github.com/blueDog-Consulting/gh-issues-view/internal/logger"
	"github.com/blueDog-Consulting/gh-issues-view/internal/session"
)

// oauthScopes are the GitHub scopes required to list private org repos
// and their issues.
var oauthScopes = []string{"read:user", "read:org", "repo"}

type Handler struct {
	oauth        oauth2.Config
	sessionStore session.Store
	client       *github.Client
	secret       string
}

func NewHandler(
	clientID string,
	clientSecret string,
	sessionSecret string,
	store session.Store,
	client *github.Client,
) *Handler {
	return &Handler{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       oauthScopes,
		},
		sessionStore: store,
		client:       client,
		secret:       sessionSecret,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/github", h.login)
	r.GET("/auth/github/callback", h.callback)
	r.GET("/auth/user", h.currentUser)
	r.POST("/auth/logout", h.logout)
}

// requestOrigin reconstructs the public origin of the request so the
// redirect_uri matches whatever host the user actually hit.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h *Handler) callbackURL(r *http.Request) string {
	return requestOrigin(r) + "/auth/github/callback"
}

func (h *Handler) login(c *gin.Context) {
	cfg := h.oauth
	cfg.RedirectURL = h.callbackURL(c.Request)

	c.Redirect(http.StatusFound, cfg.AuthCodeURL(""))
}

func (h *Handler) callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Authorization code not found")
		return
	}

	ctx := c.Request.Context()
	redirectURI := h.callbackURL(c.Request)

	token, err := h.client.ExchangeCode(
		ctx,
		h.oauth.ClientID,
		h.oauth.ClientSecret,
		code,
		redirectURI,
	)
	if err != nil {
		h.renderExchangeFailure(c, err, redirectURI)
		return
	}

	user, err := h.client.FetchUser(ctx, token)
	if err != nil {
		h.renderProfileFailure(c, err)
		return
	}

	// Session creation is the last step; every failure above leaves no
	// state behind.
	sessionID, err := session.GenerateID()
	if err != nil {
		logger.Error("failed to generate session id", map[string]any{
			"error": err.Error(),
		})
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	now := time.Now()

	sess := session.Session{
		SessionID:   sessionID,
		AccessToken: token,
		User: session.User{
			ID:        user.ID,
			Login:     user.Login,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(session.TTL),
	}

	if err := h.sessionStore.Create(ctx, sess); err != nil {
		logger.Error("failed to persist session", map[string]any{
			"error": err.Error(),
		})
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	session.SetCookie(c.Writer, sessionID, h.secret, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("login succeeded", map[string]any{
		"login": user.Login,
	})

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) renderExchangeFailure(c *gin.Context, err error, redirectURI string) {
	var exchangeErr *github.ExchangeError
	if !errors.As(err, &exchangeErr) {
		logger.Error("token exchange failed", map[string]any{
			"error": err.Error(),
		})
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	if exchangeErr.Code != "" {
		logger.Warn("token exchange rejected by github", map[string]any{
			"code": exchangeErr.Code,
			"desc": exchangeErr.Description,
		})
		providerErrorPage(c, exchangeErr.Code, exchangeErr.Description)
		return
	}

	logger.Error("token endpoint returned unparsable body", map[string]any{
		"status": exchangeErr.Status,
	})
	unparsableTokenPage(c, exchangeErr.Status, exchangeErr.RawBody, redirectURI)
}

func (h *Handler) renderProfileFailure(c *gin.Context, err error) {
	var profileErr *github.ProfileError
	if !errors.As(err, &profileErr) {
		logger.Error("user profile fetch failed", map[string]any{
			"error": err.Error(),
		})
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	logger.Error("user profile response unparsable", map[string]any{
		"status": profileErr.Status,
	})
	unparsableProfilePage(c, profileErr.Status, profileErr.RawBody)
}

func (h *Handler) currentUser(c *gin.Context) {
	sess, err := h.sessionFromCookie(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          sess.User,
	})
}

func (h *Handler) logout(c *gin.Context) {
	// Delete the record only for a cookie we actually issued; a forged
	// cookie must not be able to delete arbitrary sessions.
	if sessionID, ok := h.sessionIDFromCookie(c); ok {
		_ = h.sessionStore.Delete(c.Request.Context(), sessionID)

		logger.Info("logout", map[string]any{
			"session_id": sessionID,
		})
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusOK)
}

func (h *Handler) sessionIDFromCookie(c *gin.Context) (string, bool) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return session.DecodeValue(cookie.Value, h.secret)
}

func (h *Handler) sessionFromCookie(c *gin.Context) (*session.Session, error) {
	sessionID, ok := h.sessionIDFromCookie(c)
	if !ok {
		return nil, nil
	}

	sess, err := h.sessionStore.Get(c.Request.Context(), sessionID)
	if err != nil {
		logger.Error("session store lookup failed", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	return sess, nil
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blueDog-Consulting/gh-issues-view/internal/github"
	"github.com/blueDog-Consulting/gh-issues-view/internal/logger"
	"github.com/blueDog-Consulting/gh-issues-view/internal/middleware"
	"github.com/blueDog-Consulting/gh-issues-view/internal/session"
)

// Handler proxies data requests to GitHub on behalf of the session's
// user. Every route here sits behind the auth middleware; handlers read
// the session from the request context.
type Handler struct {
	client *github.Client
}

func NewHandler(client *github.Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/orgs", h.orgs)
	api.GET("/orgs/:org/repos", h.repos)
	api.GET("/repos/:owner/:repo/issues", h.issues)
	api.GET("/repos/:owner/:repo/pulls", h.pulls)
}

// listEnvelope is the response shape for paginated listings.
type listEnvelope struct {
	Data       []json.RawMessage `json:"data"`
	Pagination github.PageLinks  `json:"pagination"`
}

func sessionFrom(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		// The middleware guarantees a session; reaching this means the
		// route was registered outside the protected group.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return sess, ok
}

// pseudoOrg is the synthesized entry for the user's personal account,
// listed alongside real organizations.
type pseudoOrg struct {
	Login       string `json:"login"`
	ID          int64  `json:"id"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`
}

func (h *Handler) orgs(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}

	orgs, err := h.client.Orgs(c.Request.Context(), sess.AccessToken)
	if err != nil {
		logger.Error("failed to fetch orgs", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch organizations",
		})
		return
	}

	personal, err := json.Marshal(pseudoOrg{
		Login:       sess.User.Login,
		ID:          sess.User.ID,
		AvatarURL:   sess.User.AvatarURL,
		Description: "Personal Account",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch organizations",
		})
		return
	}

	// Personal account first, upstream order preserved after it.
	result := make([]json.RawMessage, 0, len(orgs)+1)
	result = append(result, personal)
	result = append(result, orgs...)

	c.JSON(http.StatusOK, result)
}

func (h *Handler) repos(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}

	org := c.Param("org")

	var (
		repos []json.RawMessage
		err   error
	)

	// The pseudo-org routes to the user-repos endpoint; real orgs to the
	// org-repos endpoint.
	if org == sess.User.Login {
		repos, err = h.client.UserRepos(c.Request.Context(), sess.AccessToken)
	} else {
		repos, err = h.client.OrgRepos(c.Request.Context(), sess.AccessToken, org)
	}

	if err != nil {
		logger.Error("failed to fetch repos", map[string]any{
			"org":   org,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch repositories",
		})
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (h *Handler) issues(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}

	owner := c.Param("owner")
	repo := c.Param("repo")

	issues, links, err := h.client.Issues(
		c.Request.Context(),
		sess.AccessToken,
		owner,
		repo,
		listOptions(c),
	)
	if err != nil {
		logger.Error("failed to fetch issues", map[string]any{
			"owner": owner,
			"repo":  repo,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch issues",
		})
		return
	}

	c.JSON(http.StatusOK, listEnvelope{
		Data:       filterPullRequests(issues),
		Pagination: links,
	})
}

func (h *Handler) pulls(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}

	owner := c.Param("owner")
	repo := c.Param("repo")

	pulls, links, err := h.client.Pulls(
		c.Request.Context(),
		sess.AccessToken,
		owner,
		repo,
		listOptions(c),
	)
	if err != nil {
		logger.Error("failed to fetch pull requests", map[string]any{
			"owner": owner,
			"repo":  repo,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch pull requests",
		})
		return
	}

	c.JSON(http.StatusOK, listEnvelope{
		Data:       pulls,
		Pagination: links,
	})
}

func listOptions(c *gin.Context) github.ListOptions {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	return github.ListOptions{
		State:   c.Query("state"),
		Page:    page,
		PerPage: perPage,
	}
}

// filterPullRequests drops issue entries that are really pull requests.
// GitHub's issue-listing endpoint returns both; a pull_request attribute
// marks the impostors.
func filterPullRequests(issues []json.RawMessage) []json.RawMessage {
	filtered := make([]json.RawMessage, 0, len(issues))

	for _, raw := range issues {
		// Pointer type so an explicit "pull_request": null reads as absent.
		var probe struct {
			PullRequest *json.RawMessage `json:"pull_request"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			// Not an object we can inspect; keep it rather than guess.
			filtered = append(filtered, raw)
			continue
		}
		if probe.PullRequest != nil {
			continue
		}
		filtered = append(filtered, raw)
	}

	return filtered
}

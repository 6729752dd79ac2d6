package handler

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Diagnostic pages shown when the OAuth handshake fails. These are
// operator-facing by design: misconfigured callback URLs and rotated
// client secrets are far easier to fix when GitHub's actual response is
// visible.

func htmlPage(c *gin.Context, status int, body string) {
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

func providerErrorPage(c *gin.Context, code, description string) {
	if description == "" {
		description = "No description provided"
	}

	htmlPage(c, http.StatusBadRequest, fmt.Sprintf(`<h1>GitHub OAuth Error</h1>
<p><strong>Error:</strong> %s</p>
<p><strong>Description:</strong> %s</p>
<p><a href="/">Try again</a></p>
`,
		template.HTMLEscapeString(code),
		template.HTMLEscapeString(description),
	))
}

func unparsableTokenPage(c *gin.Context, status int, rawBody, redirectURI string) {
	htmlPage(c, http.StatusInternalServerError, fmt.Sprintf(`<h1>GitHub OAuth Error</h1>
<p>GitHub returned invalid JSON (Status: %d)</p>
<p><strong>This usually means:</strong></p>
<ul>
  <li>Your callback URL doesn't match: Should be <code>%s</code></li>
  <li>Your Client ID or Client Secret is incorrect</li>
  <li>The authorization code has already been used</li>
</ul>
<details>
  <summary>GitHub's response (click to expand)</summary>
  <pre>%s</pre>
</details>
<p><a href="/">Try again</a></p>
`,
		status,
		template.HTMLEscapeString(redirectURI),
		template.HTMLEscapeString(rawBody),
	))
}

func unparsableProfilePage(c *gin.Context, status int, rawBody string) {
	htmlPage(c, http.StatusInternalServerError, fmt.Sprintf(`<h1>GitHub User Info Error</h1>
<p>Failed to get user information from GitHub (Status: %d)</p>
<details>
  <summary>Response (click to expand)</summary>
  <pre>%s</pre>
</details>
<p><a href="/">Try again</a></p>
`,
		status,
		template.HTMLEscapeString(rawBody),
	))
}

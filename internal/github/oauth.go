package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// rawBodyLimit bounds how much of an upstream body is echoed back on
// diagnostic pages.
const rawBodyLimit = 1000

// ExchangeError reports a failed code-for-token exchange. GitHub signals
// errors both out of band (non-JSON bodies on misconfiguration) and in
// band (200 responses carrying an "error" field), and operators need to
// see which one happened.
type ExchangeError struct {
	// Status is the HTTP status of the token endpoint response.
	Status int
	// RawBody is set when the body failed to parse; bounded excerpt.
	RawBody string
	// Code and Description carry the provider's in-band error, verbatim.
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("github: token exchange rejected: %s (%s)", e.Code, e.Description)
	}
	return fmt.Sprintf("github: token endpoint returned unparsable body (status %d)", e.Status)
}

// ProfileError reports a user-profile fetch whose body did not decode as
// a profile.
type ProfileError struct {
	Status  int
	RawBody string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("github: user profile response unparsable (status %d)", e.Status)
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCode swaps an OAuth authorization code for an access token.
// Implemented against the raw token endpoint rather than oauth2.Exchange
// because GitHub reports failures inside 200-status JSON bodies, and the
// caller must surface the raw body and in-band error verbatim.
func (c *Client) ExchangeCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI string,
) (string, error) {

	payload, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"code":          code,
		"redirect_uri":  redirectURI,
	})
	if err != nil {
		return "", errors.Wrap(err, "github: failed to encode token request")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.oauthBaseURL+"/login/oauth/access_token",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", errors.Wrap(err, "github: failed to build token request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "github: token request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "github: reading token response")
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &ExchangeError{
			Status:  resp.StatusCode,
			RawBody: truncate(string(body), rawBodyLimit),
		}
	}

	if tok.Error != "" {
		return "", &ExchangeError{
			Status:      resp.StatusCode,
			Code:        tok.Error,
			Description: tok.ErrorDescription,
		}
	}

	if tok.AccessToken == "" {
		return "", &ExchangeError{
			Status:  resp.StatusCode,
			RawBody: truncate(string(body), rawBodyLimit),
		}
	}

	return tok.AccessToken, nil
}

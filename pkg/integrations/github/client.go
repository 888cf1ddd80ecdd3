package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// NewClient creates a go-github client authenticated with a personal access
// token. An empty token makes unauthenticated requests (60 requests/hour).
// baseURL selects a GitHub Enterprise or mock server; "" uses DefaultAPIURL.
func NewClient(token, baseURL string) (*gogithub.Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	c := gogithub.NewClient(httpClient)
	if err := applyBaseURL(c, baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// NewAppClient creates a client authenticated as a GitHub App installation,
// for servers that should not depend on a personal token.
func NewAppClient(appID, installationID int64, privateKeyPath, baseURL string) (*gogithub.Client, error) {
	tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("github app auth: %w", err)
	}
	if baseURL != "" {
		tr.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	c := gogithub.NewClient(&http.Client{Transport: tr})
	if err := applyBaseURL(c, baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

func applyBaseURL(c *gogithub.Client, baseURL string) error {
	if baseURL == "" || baseURL == DefaultAPIURL {
		return nil
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	c.BaseURL = u
	return nil
}

package github

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// DeviceScopes are requested during device login. "repo" grants read access
// to private repositories.
var DeviceScopes = []string{"repo"}

// DeviceFlow runs the OAuth 2.0 device authorization grant against an OAuth
// App, so the CLI never handles a client secret or a redirect.
type DeviceFlow struct {
	config *oauth2.Config
}

// NewDeviceFlow creates a device flow for the OAuth App clientID.
func NewDeviceFlow(clientID string) *DeviceFlow {
	return &DeviceFlow{config: &oauth2.Config{
		ClientID: clientID,
		Endpoint: endpoints.GitHub,
		Scopes:   DeviceScopes,
	}}
}

// WithEndpoint points the flow at a GitHub Enterprise server or a test
// double instead of github.com.
func (d *DeviceFlow) WithEndpoint(ep oauth2.Endpoint) *DeviceFlow {
	d.config.Endpoint = ep
	return d
}

// Start requests a device and user code. The user enters UserCode at
// VerificationURI.
func (d *DeviceFlow) Start(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	resp, err := d.config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}
	return resp, nil
}

// Wait polls until the user authorizes the device, the code expires or ctx
// is cancelled.
func (d *DeviceFlow) Wait(ctx context.Context, auth *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	tok, err := d.config.DeviceAccessToken(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return tok, nil
}

// CurrentUser returns the login of the user the client authenticates as.
func CurrentUser(ctx context.Context, gh *gogithub.Client) (string, error) {
	u, _, err := gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	return u.GetLogin(), nil
}

package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Identity provider names, stored as Identity.Issuer.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// ProviderAdapter hides the protocol details of one identity provider.
type ProviderAdapter interface {
	// Name is the stable provider identifier, e.g. "google".
	Name() string
	// AuthURL returns the consent-screen URL carrying state.
	AuthURL(state string) string
	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (ProviderProfile, error)
}

// ProviderProfile is the normalized user data returned by a provider.
type ProviderProfile struct {
	ExternalID    string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// AdapterOption configures a provider adapter.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	httpClient *http.Client
	endpoint   *oauth2.Endpoint
	apiBaseURL string
}

// WithHTTPClient sets the client used for token exchange and API calls.
func WithHTTPClient(c *http.Client) AdapterOption {
	return func(o *adapterOptions) { o.httpClient = c }
}

// WithEndpoint overrides the provider's OAuth2 endpoint.
func WithEndpoint(e oauth2.Endpoint) AdapterOption {
	return func(o *adapterOptions) { o.endpoint = &e }
}

// WithAPIBaseURL overrides the root of the provider's user API.
func WithAPIBaseURL(url string) AdapterOption {
	return func(o *adapterOptions) { o.apiBaseURL = url }
}

func newAdapterOptions(defaultAPI string, opts []AdapterOption) adapterOptions {
	o := adapterOptions{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: defaultAPI,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// withClient makes oauth2 use the adapter's HTTP client for the token exchange.
func (o adapterOptions) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

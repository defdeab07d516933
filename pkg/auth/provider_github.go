package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubOAuthConfig holds configuration for GitHub sign-in.
type GitHubOAuthConfig struct {
	ClientID     string        `env:"GITHUB_OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"GITHUB_OAUTH_CLIENT_SECRET"`
	RedirectURL  string        `env:"GITHUB_OAUTH_REDIRECT_URL"`
	Scopes       []string      `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
	StateTTL     time.Duration `env:"GITHUB_OAUTH_STATE_TTL" envDefault:"10m"`
	VerifiedOnly bool          `env:"GITHUB_OAUTH_VERIFIED_ONLY" envDefault:"true"`
}

// Enabled reports whether client credentials are configured.
func (c GitHubOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type githubAdapter struct {
	conf *oauth2.Config
	opts adapterOptions
}

var _ ProviderAdapter = (*githubAdapter)(nil)

// NewGitHubAdapter creates a GitHub provider adapter. The email comes from
// /user/emails so that its verification status is known.
func NewGitHubAdapter(cfg GitHubOAuthConfig, opts ...AdapterOption) ProviderAdapter {
	o := newAdapterOptions("https://api.github.com", opts)
	endpoint := github.Endpoint
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}
	return &githubAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		opts: o,
	}
}

func (a *githubAdapter) Name() string { return ProviderGitHub }

func (a *githubAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (a *githubAdapter) Exchange(ctx context.Context, code string) (ProviderProfile, error) {
	ctx = a.opts.withClient(ctx)

	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("github token exchange: %w", err)
	}

	var u githubUser
	if err := getJSON(ctx, a.opts.httpClient, a.opts.apiBaseURL+"/user", tok.AccessToken, &u); err != nil {
		return ProviderProfile{}, fmt.Errorf("fetch github user: %w", err)
	}

	var emails []githubEmail
	if err := getJSON(ctx, a.opts.httpClient, a.opts.apiBaseURL+"/user/emails", tok.AccessToken, &emails); err != nil {
		return ProviderProfile{}, fmt.Errorf("fetch github emails: %w", err)
	}

	email, verified := pickGitHubEmail(emails)
	if email == "" {
		return ProviderProfile{}, ErrNoProviderEmail
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}

	return ProviderProfile{
		ExternalID:    strconv.FormatInt(u.ID, 10),
		Email:         email,
		EmailVerified: verified,
		Name:          name,
		AvatarURL:     u.AvatarURL,
	}, nil
}

// pickGitHubEmail prefers the primary verified address, then any verified one,
// then the primary address as unverified.
func pickGitHubEmail(emails []githubEmail) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, false
		}
	}
	return "", false
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

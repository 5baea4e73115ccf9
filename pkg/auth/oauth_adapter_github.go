package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubOAuthConfig holds configuration for the GitHub OAuth provider.
type GitHubOAuthConfig struct {
	ClientID     string        `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"user:email"`
	StateTTL     time.Duration `env:"GITHUB_OAUTH_STATE_TTL" envDefault:"10m"`
}

type githubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGitHubAdapter creates a GitHub OAuth provider adapter.
func NewGitHubAdapter(cfg GitHubOAuthConfig) ProviderAdapter {
	return &githubAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ProviderID returns the GitHub provider identifier.
func (a *githubAdapter) ProviderID() string {
	return OAuthProviderGithub
}

// AuthURL builds the GitHub authorization URL carrying the state token.
func (a *githubAdapter) AuthURL(state string) (string, error) {
	return a.conf.AuthCodeURL(state), nil
}

// ResolveProfile exchanges the authorization code for identity claims.
// GitHub does not return email verification on the user endpoint, so the
// emails endpoint is always consulted for a verified address.
func (a *githubAdapter) ResolveProfile(ctx context.Context, code string) (ProviderProfile, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, ErrInvalidCode
	}

	u, err := a.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("fetch github user: %w", err)
	}

	emails, err := a.fetchEmails(ctx, tok.AccessToken)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("fetch github emails: %w", err)
	}

	var email string
	var verified bool
	for _, e := range emails {
		if e.Primary && e.Verified {
			email = e.Email
			verified = true
			break
		}
	}
	if email == "" {
		for _, e := range emails {
			if e.Verified {
				email = e.Email
				verified = true
				break
			}
		}
	}
	if email == "" {
		return ProviderProfile{}, ErrNoPrimaryEmail
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}

	return ProviderProfile{
		Provider:       OAuthProviderGithub,
		ProviderUserID: strconv.FormatInt(u.ID, 10),
		Email:          email,
		Name:           name,
		AvatarURL:      u.AvatarURL,
		EmailVerified:  verified,
	}, nil
}

func (a *githubAdapter) fetchUser(ctx context.Context, accessToken string) (*githubUser, error) {
	var u githubUser
	if err := a.getJSON(ctx, "https://api.github.com/user", accessToken, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *githubAdapter) fetchEmails(ctx context.Context, accessToken string) ([]githubEmail, error) {
	var emails []githubEmail
	if err := a.getJSON(ctx, "https://api.github.com/user/emails", accessToken, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (a *githubAdapter) getJSON(ctx context.Context, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
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

var _ ProviderAdapter = (*githubAdapter)(nil)

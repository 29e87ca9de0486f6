package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// ErrNoVerifiedEmail is returned when a GitHub account exposes no verified
// address. Board accounts are keyed by email, so such a login cannot proceed.
var ErrNoVerifiedEmail = errors.New("auth: GitHub account has no verified email")

const githubAPI = "https://api.github.com"

// GitHubUser is the part of the GitHub profile a board account is built from.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubProvider runs the OAuth authorization code flow against GitHub.
//
// The code-for-token exchange happens server-to-server using the client
// secret; the GitHub access token never reaches the browser and is dropped
// as soon as the profile has been read.
type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
}

// NewGitHubProvider creates a GitHubProvider. callbackURL must match the
// "Authorization callback URL" registered for the OAuth app exactly, e.g.
// "http://localhost:8080/auth/github/callback".
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiURL: githubAPI,
	}
}

// AuthURL returns the GitHub consent URL. state is echoed back on the
// callback and compared against the oauth_state cookie to stop CSRF logins.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the GitHub profile. When the
// profile hides its email, the primary verified address from /user/emails
// is used instead.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	client := p.config.Client(ctx, token)

	var gh GitHubUser
	if err := p.getJSON(ctx, client, "/user", &gh); err != nil {
		return nil, err
	}
	if gh.ID == 0 {
		return nil, errors.New("auth: GitHub returned an invalid user (ID = 0)")
	}
	if gh.Email != "" {
		return &gh, nil
	}

	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return nil, err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			gh.Email = e.Email
			return &gh, nil
		}
	}
	return nil, ErrNoVerifiedEmail
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("auth: building GitHub request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: calling GitHub %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: GitHub %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("auth: decoding GitHub %s response: %w", path, err)
	}
	return nil
}

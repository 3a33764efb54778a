// Package google implements the OAuth identity collaborator: building the
// authorization URL, exchanging the callback code for a token, and fetching
// the user profile. The core only consumes the resulting Identity.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
)

var tracer = otel.Tracer("infra/google")

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider performs the authorization-code flow against Google.
type Provider struct {
	oauth       *oauth2.Config
	httpClient  *http.Client
	userInfoURL string
}

// NewProvider creates an OAuth provider for the given client credentials.
func NewProvider(httpClient *http.Client, clientID, clientSecret, redirectURI string) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     googleoauth.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		httpClient:  httpClient,
		userInfoURL: defaultUserInfoURL,
	}
}

// AuthURL builds the authorization URL carrying the anti-forgery state token.
func (p *Provider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the authorization code for an access token.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	ctx, span := tracer.Start(ctx, "google.Exchange")
	defer span.End()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", &domain.ErrExternalService{Service: "google-oauth", Err: err}
	}
	return tok.AccessToken, nil
}

// UserInfo fetches the profile for the given access token.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (*domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "google.UserInfo")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "google-userinfo", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ErrExternalService{
			Service: "google-userinfo",
			Err:     fmt.Errorf("userinfo returned status %d", resp.StatusCode),
		}
	}

	var info struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &domain.ErrExternalService{Service: "google-userinfo", Err: err}
	}

	return &domain.Identity{
		Name:       info.Name,
		Email:      info.Email,
		PictureURL: info.Picture,
	}, nil
}

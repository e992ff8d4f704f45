package gmailapi

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	cfgpkg "github.com/billhound/billhound/pkg/config"
	"github.com/billhound/billhound/pkg/types"
)

// Client wraps the Gmail API behind explicit, injected construction. All
// methods are read-only against the user's mailbox.
type Client struct {
	oauth *oauth2.Config
	log   *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{gmail.GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		log: log,
	}
}

func (c *Client) service(ctx context.Context, creds types.GoogleCredentials) (*gmail.Service, error) {
	ts := c.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to build gmail service: %w", err)
	}
	return svc, nil
}

// Search returns message ids matching the Gmail query, newest first, capped at max.
func (c *Client) Search(ctx context.Context, creds types.GoogleCredentials, query string, max int64) ([]string, error) {
	svc, err := c.service(ctx, creds)
	if err != nil {
		return nil, err
	}
	res, err := svc.Users.Messages.List("me").Q(query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail search failed: %w", err)
	}
	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Fetch loads the full MIME structure of one message.
func (c *Client) Fetch(ctx context.Context, creds types.GoogleCredentials, id string) (*gmail.Message, error) {
	svc, err := c.service(ctx, creds)
	if err != nil {
		return nil, err
	}
	msg, err := svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail fetch failed for %s: %w", id, err)
	}
	return msg, nil
}

// AuthCodeURL builds the consent page URL. Offline access with forced consent
// is required, Google only issues a refresh token on the consent screen.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for the full credential set.
func (c *Client) Exchange(ctx context.Context, code string) (types.GoogleCredentials, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return types.GoogleCredentials{}, fmt.Errorf("google code exchange failed: %w", err)
	}
	return types.GoogleCredentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// RefreshAccessToken exchanges a refresh token for a fresh access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("google token refresh failed: %w", err)
	}
	return tok.AccessToken, tok.Expiry, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)

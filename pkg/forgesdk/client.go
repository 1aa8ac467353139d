package forgesdk

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every backend request.
const DefaultTimeout = 10 * time.Second

// SDKClient is a client for the ForgeERP backend.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *resty.Client
}

// NewSDKClient creates a client with DefaultTimeout.
func NewSDKClient(baseURL string) *SDKClient {
	return NewSDKClientWithTimeout(baseURL, DefaultTimeout)
}

// NewSDKClientWithTimeout creates a client with a custom request timeout.
func NewSDKClientWithTimeout(baseURL string, timeout time.Duration) *SDKClient {
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &SDKClient{
		BaseURL: baseURL,
		HTTPClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "forgeconsole"),
	}
}

// AuthenticateWithPassword logs in and returns a Session holding the access token.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, username, password string) (*Session, error) {
	tokenResp, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return c.NewSessionFromToken(tokenResp.AccessToken, tokenResp.TokenType), nil
}

// NewSessionFromToken restores a Session from a stored access token.
func (c *SDKClient) NewSessionFromToken(accessToken, tokenType string) *Session {
	if tokenType == "" {
		tokenType = "bearer"
	}

	return &Session{
		client:      c,
		accessToken: accessToken,
		tokenType:   tokenType,
	}
}

func (c *SDKClient) request(ctx context.Context) *resty.Request {
	return c.HTTPClient.R().SetContext(ctx)
}

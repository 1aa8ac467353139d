package forgesdk

import "context"

// Login exchanges a username and password for an access token.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	req := c.request(ctx).SetBody(LoginRequest{Username: username, Password: password})
	return send[TokenResponse](req, methodPost, "/api/v1/auth/login")
}

// Health reports backend liveness.
func (c *SDKClient) Health(ctx context.Context) (*HealthResponse, error) {
	return send[HealthResponse](c.request(ctx), methodGet, "/health")
}

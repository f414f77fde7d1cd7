package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
)

// Client talks to the remote authority over HTTP.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for the given base URL holding the initial access
// token. The token can be replaced later via SetToken after a refresh.
func New(baseURL, token string) *Client {
	return &Client{
		http:  resty.New().SetBaseURL(baseURL),
		token: token,
	}
}

// SetToken replaces the held access token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently held access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.Token())
}

// checkStatus maps non-2xx responses onto the closed error kinds; 401 means
// the credential was rejected.
func checkStatus(res *resty.Response, what string) error {
	if res.IsSuccess() {
		return nil
	}
	err := fmt.Errorf("%s: status %d: %s", what, res.StatusCode(), res.String())
	if res.StatusCode() == http.StatusUnauthorized {
		return apperr.TokenRejected(what, err)
	}
	return apperr.ConnectionFailed(what, err)
}

// ConnectionInfo fetches the credentials for opening the local replica.
func (c *Client) ConnectionInfo(ctx context.Context, userID string) (ConnectionInfo, error) {
	var info ConnectionInfo
	res, err := c.request(ctx).
		SetResult(&info).
		Get(fmt.Sprintf("/v1/users/%s/connection-info", userID))
	if err != nil {
		return info, apperr.ConnectionFailed("fetch connection info", err)
	}
	if err := checkStatus(res, "fetch connection info"); err != nil {
		return info, err
	}
	return info, nil
}

// RefreshToken asks the remote for a fresh access token and starts using it.
func (c *Client) RefreshToken(ctx context.Context, userID string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("remote")
	log.Debug("refreshing access token: user_id=%s", userID)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	res, err := c.request(ctx).
		SetResult(&body).
		Post(fmt.Sprintf("/v1/users/%s/refresh-token", userID))
	if err != nil {
		return "", apperr.TokenRefreshFailed(err)
	}
	if !res.IsSuccess() {
		return "", apperr.TokenRefreshFailed(fmt.Errorf("status %d: %s", res.StatusCode(), res.String()))
	}
	if body.AccessToken == "" {
		return "", apperr.TokenRefreshFailed(fmt.Errorf("empty token in response"))
	}
	c.SetToken(body.AccessToken)
	log.Info("access token refreshed")
	return body.AccessToken, nil
}

// Migrations fetches the full ordered migration catalog.
func (c *Client) Migrations(ctx context.Context) ([]models.Migration, error) {
	var out []models.Migration
	res, err := c.request(ctx).
		SetResult(&out).
		Get("/v1/migrations")
	if err != nil {
		return nil, apperr.ConnectionFailed("fetch migration catalog", err)
	}
	if err := checkStatus(res, "fetch migration catalog"); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifySchema asks the remote whether localVersion is current, and if not,
// which migrations are still required.
func (c *Client) VerifySchema(ctx context.Context, localVersion int) (SchemaCheck, error) {
	var out SchemaCheck
	res, err := c.request(ctx).
		SetQueryParam("version", fmt.Sprintf("%d", localVersion)).
		SetResult(&out).
		Get("/v1/migrations/verify")
	if err != nil {
		return out, apperr.ConnectionFailed("verify schema", err)
	}
	if err := checkStatus(res, "verify schema"); err != nil {
		return out, err
	}
	return out, nil
}

// PullChanges fetches every record changed on the remote since sinceMS.
func (c *Client) PullChanges(ctx context.Context, userID string, sinceMS int64) (Changeset, error) {
	var out Changeset
	res, err := c.request(ctx).
		SetQueryParam("since_ms", fmt.Sprintf("%d", sinceMS)).
		SetResult(&out).
		Get(fmt.Sprintf("/v1/users/%s/sync/changes", userID))
	if err != nil {
		return out, apperr.ConnectionFailed("pull changes", err)
	}
	if err := checkStatus(res, "pull changes"); err != nil {
		return out, err
	}
	return out, nil
}

// PushChanges uploads locally changed records. Returns the server timestamp
// acknowledging the batch.
func (c *Client) PushChanges(ctx context.Context, userID string, cs Changeset) (int64, error) {
	var out struct {
		ServerMS int64 `json:"server_ms"`
	}
	res, err := c.request(ctx).
		SetBody(cs).
		SetResult(&out).
		Post(fmt.Sprintf("/v1/users/%s/sync/changes", userID))
	if err != nil {
		return 0, apperr.ConnectionFailed("push changes", err)
	}
	if err := checkStatus(res, "push changes"); err != nil {
		return 0, err
	}
	return out.ServerMS, nil
}

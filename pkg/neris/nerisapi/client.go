// Package nerisapi provides a neris.Client backed by the NERIS REST API.
package nerisapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"nerisdash/pkg/metrics"
	"nerisdash/pkg/neris"
	"nerisdash/pkg/serrors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPathTemplate is the user permissions endpoint; {user_sub} is
// replaced with the escaped user subject.
const DefaultPathTemplate = "/v1/auth/user_permissions/{user_sub}"

const devHost = "https://api-dev.neris.fsri.org"

var hosts = map[string]string{ //nolint: gochecknoglobals
	"local":   devHost,
	"dev":     devHost,
	"test":    "https://api-test.neris.fsri.org",
	"staging": "https://api.neris.fsri.org",
	"prod":    "https://api.neris.fsri.org",
}

// BaseURL returns the API host of a dashboard context. Unknown contexts use
// the dev host.
func BaseURL(dashboardContext string) string {
	if h, ok := hosts[dashboardContext]; ok {
		return h
	}

	return devHost
}

// Client calls the NERIS API. It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	pathTemplate string
}

// New builds a Client. An empty pathTemplate means DefaultPathTemplate.
func New(httpClient *http.Client, baseURL, pathTemplate string) *Client {
	if pathTemplate == "" {
		pathTemplate = DefaultPathTemplate
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		pathTemplate: pathTemplate,
	}
}

// UserPermissions implements neris.Client. Any failure is reported as
// unauthorized since the dashboard cannot tell a bad token from a bad user.
func (c *Client) UserPermissions(ctx context.Context, userSub, accessToken string) (neris.UserPermissions, error) {
	endpoint := c.baseURL + strings.ReplaceAll(c.pathTemplate, "{user_sub}", url.PathEscape(userSub))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return neris.UserPermissions{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues("neris", "error").Observe(time.Since(start).Seconds())

		return neris.UserPermissions{}, serrors.Wrap(serrors.ErrUnauthorized, err, "could not fetch permissions")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	metrics.UpstreamDuration.WithLabelValues("neris", strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return neris.UserPermissions{}, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return neris.UserPermissions{}, serrors.With(serrors.ErrUnauthorized,
			"could not fetch permissions: %d %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var perms neris.UserPermissions
	if err := json.Unmarshal(b, &perms); err != nil {
		return neris.UserPermissions{}, serrors.Wrap(serrors.ErrUnauthorized, err, "could not decode permissions")
	}

	return perms, nil
}

// Ensure Client conforms to the neris.Client interface at compile time.
var _ neris.Client = (*Client)(nil)

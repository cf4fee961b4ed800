package contentful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/fulmenhq/cfops/pkg/buildinfo"
)

const contentTypeHeader = "application/vnd.contentful.management.v1+json"

// ClientConfig configures the management-API client.
type ClientConfig struct {
	// BaseURL of the management API (default: https://api.contentful.com).
	BaseURL string

	// Token is the management-API bearer token.
	Token string

	// SpaceID and EnvironmentID scope every request.
	SpaceID       string
	EnvironmentID string

	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond paces outgoing calls below the service cap
	// (default: 7/s; the documented cap is 10/s).
	RequestsPerSecond float64

	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper
}

// Client is a rate-limited management-API client. It implements API.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ API = (*Client)(nil)

// NewClient creates a management-API client with the given configuration.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.contentful.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 7.0
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// envPath prefixes p with the space/environment scope.
func (c *Client) envPath(p string) string {
	return fmt.Sprintf("/spaces/%s/environments/%s%s", c.config.SpaceID, c.config.EnvironmentID, p)
}

// doRequest performs one paced request. version > 0 is sent as the optimistic
// concurrency header required on writes.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, version int, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("User-Agent", "cfops/"+buildinfo.BinaryVersion)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeHeader)
	}
	if version > 0 {
		req.Header.Set("X-Contentful-Version", strconv.Itoa(version))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded apiErrorBody
		if json.Unmarshal(respBody, &decoded) == nil {
			apiErr.SysID = decoded.Sys.ID
			apiErr.Message = decoded.Message
			apiErr.RequestID = decoded.RequestID
			apiErr.Errors = decoded.Details.Errors
		}
		return apiErr
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CheckAuth fetches the configured space, verifying token and connectivity.
func (c *Client) CheckAuth(ctx context.Context) error {
	var space struct {
		Sys  Sys    `json:"sys"`
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/spaces/%s", c.config.SpaceID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, 0, nil, &space); err != nil {
		return fmt.Errorf("auth check failed: %w", err)
	}
	return nil
}

func listQueryValues(q ListQuery) url.Values {
	values := url.Values{}
	values.Set("skip", strconv.Itoa(q.Skip))
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.ContentType != "" {
		values.Set("content_type", q.ContentType)
	}
	if q.LinksTo != "" {
		values.Set("links_to_entry", q.LinksTo)
	}
	return values
}

// Entries lists one window of entries.
func (c *Client) Entries(ctx context.Context, q ListQuery) (*Collection[Entry], error) {
	var col Collection[Entry]
	if err := c.doRequest(ctx, http.MethodGet, c.envPath("/entries"), listQueryValues(q), 0, nil, &col); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return &col, nil
}

// Assets lists one window of assets.
func (c *Client) Assets(ctx context.Context, q ListQuery) (*Collection[Asset], error) {
	var col Collection[Asset]
	if err := c.doRequest(ctx, http.MethodGet, c.envPath("/assets"), listQueryValues(q), 0, nil, &col); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return &col, nil
}

// ContentTypes lists one window of content type definitions.
func (c *Client) ContentTypes(ctx context.Context, skip, limit int) (*Collection[ContentType], error) {
	var col Collection[ContentType]
	values := listQueryValues(ListQuery{Skip: skip, Limit: limit})
	if err := c.doRequest(ctx, http.MethodGet, c.envPath("/content_types"), values, 0, nil, &col); err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}
	return &col, nil
}

// GetEntry fetches a single entry.
func (c *Client) GetEntry(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	if err := c.doRequest(ctx, http.MethodGet, c.envPath("/entries/"+id), nil, 0, nil, &entry); err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return &entry, nil
}

// EntryExists checks whether an entry id resolves. A 404 is a definitive
// "no", not an error; everything else propagates.
func (c *Client) EntryExists(ctx context.Context, id string) (bool, error) {
	err := c.doRequest(ctx, http.MethodGet, c.envPath("/entries/"+id), nil, 0, nil, nil)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// AssetExists checks whether an asset id resolves. Same contract as EntryExists.
func (c *Client) AssetExists(ctx context.Context, id string) (bool, error) {
	err := c.doRequest(ctx, http.MethodGet, c.envPath("/assets/"+id), nil, 0, nil, nil)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// UpdateEntry writes the entry's field map at its current version.
func (c *Client) UpdateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	var updated Entry
	payload := updatePayload{Fields: entry.Fields}
	err := c.doRequest(ctx, http.MethodPut, c.envPath("/entries/"+entry.Sys.ID), nil, entry.Sys.Version, payload, &updated)
	if err != nil {
		return nil, fmt.Errorf("update entry %s: %w", entry.Sys.ID, err)
	}
	return &updated, nil
}

// PublishEntry publishes the entry at the given version.
func (c *Client) PublishEntry(ctx context.Context, id string, version int) (*Entry, error) {
	var published Entry
	err := c.doRequest(ctx, http.MethodPut, c.envPath("/entries/"+id+"/published"), nil, version, nil, &published)
	if err != nil {
		return nil, fmt.Errorf("publish entry %s: %w", id, err)
	}
	return &published, nil
}

// UnpublishEntry removes the published version of the entry.
func (c *Client) UnpublishEntry(ctx context.Context, id string, version int) (*Entry, error) {
	var unpublished Entry
	err := c.doRequest(ctx, http.MethodDelete, c.envPath("/entries/"+id+"/published"), nil, version, nil, &unpublished)
	if err != nil {
		return nil, fmt.Errorf("unpublish entry %s: %w", id, err)
	}
	return &unpublished, nil
}

// UnarchiveEntry restores an archived entry so it can be written again.
func (c *Client) UnarchiveEntry(ctx context.Context, id string, version int) (*Entry, error) {
	var unarchived Entry
	err := c.doRequest(ctx, http.MethodDelete, c.envPath("/entries/"+id+"/archived"), nil, version, nil, &unarchived)
	if err != nil {
		return nil, fmt.Errorf("unarchive entry %s: %w", id, err)
	}
	return &unarchived, nil
}

// DeleteEntry deletes the entry at the given version.
func (c *Client) DeleteEntry(ctx context.Context, id string, version int) error {
	err := c.doRequest(ctx, http.MethodDelete, c.envPath("/entries/"+id), nil, version, nil, nil)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// PublishAsset publishes the asset at the given version.
func (c *Client) PublishAsset(ctx context.Context, id string, version int) (*Asset, error) {
	var published Asset
	err := c.doRequest(ctx, http.MethodPut, c.envPath("/assets/"+id+"/published"), nil, version, nil, &published)
	if err != nil {
		return nil, fmt.Errorf("publish asset %s: %w", id, err)
	}
	return &published, nil
}

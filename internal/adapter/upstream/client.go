package upstream

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

	"commerce-sync-service/config"
	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	headerAPIKey   = "X-Api-Key"
	headerLocation = "X-Location-Id"
)

// Client implements ports.UpstreamClient against the remote commerce
// API. Failures are classified by error type so the retry executor can
// distinguish rate limits, transient faults and permanent rejections.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	locationID string
	log        zerolog.Logger
}

// NewClient creates an upstream API client.
func NewClient(cfg config.UpstreamConfig, log zerolog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		locationID: cfg.LocationID,
		log:        log,
	}
}

type pagination struct {
	HasMore bool `json:"has_more"`
}

type purchasePage struct {
	Items      []domain.Purchase `json:"items"`
	Pagination pagination        `json:"pagination"`
}

type inventoryPage struct {
	Items      []domain.RemoteItem `json:"items"`
	Pagination pagination          `json:"pagination"`
}

// ListPurchases fetches one page of purchases in a date range.
func (c *Client) ListPurchases(ctx context.Context, params ports.PurchaseListParams) (ports.Page[domain.Purchase], error) {
	q := url.Values{}
	q.Set("location_id", c.locationID)
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))
	if !params.From.IsZero() {
		q.Set("from", params.From.UTC().Format(time.RFC3339))
	}
	if !params.To.IsZero() {
		q.Set("to", params.To.UTC().Format(time.RFC3339))
	}

	var page purchasePage
	if err := c.get(ctx, "/purchases", q, &page); err != nil {
		return ports.Page[domain.Purchase]{}, err
	}
	return ports.Page[domain.Purchase]{Items: page.Items, HasMore: page.Pagination.HasMore}, nil
}

// ListInventory fetches one page of the remote inventory catalog.
func (c *Client) ListInventory(ctx context.Context, params ports.InventoryListParams) (ports.Page[domain.RemoteItem], error) {
	q := url.Values{}
	q.Set("location_id", c.locationID)
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))

	var page inventoryPage
	if err := c.get(ctx, "/inventory/items", q, &page); err != nil {
		return ports.Page[domain.RemoteItem]{}, err
	}
	return ports.Page[domain.RemoteItem]{Items: page.Items, HasMore: page.Pagination.HasMore}, nil
}

// UpdateItem applies a partial-field update to one remote item. Only the
// field named by the op's kind is sent; untouched fields stay as-is.
func (c *Client) UpdateItem(ctx context.Context, op domain.UpdateOp) error {
	body := map[string]any{}
	switch op.Kind {
	case domain.UpdateAvailability:
		body["available"] = op.Available
	case domain.UpdatePrice:
		body["price_cents"] = op.PriceCents
	default:
		return fmt.Errorf("unknown update kind %q", op.Kind)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal item update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/inventory/items/"+url.PathEscape(op.ItemID), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create item update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

// do sends one request and maps the outcome onto the domain error
// taxonomy: 429 becomes a rate-limit signal, 5xx and network failures
// are transient, remaining 4xx are permanent.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerLocation, c.locationID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domain.TransientError{Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}

	case resp.StatusCode >= 500:
		return &domain.TransientError{Err: fmt.Errorf("upstream returned %d", resp.StatusCode)}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", req.URL.Path).
			Msg("upstream rejected request")
		return &domain.PermanentError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// parseRetryAfter reads a Retry-After header in delta-seconds form.
// Absent or unparseable values yield zero; the retry policy substitutes
// its configured default.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

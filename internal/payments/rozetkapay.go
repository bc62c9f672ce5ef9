package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ystore/marketplace/internal/config"
)

const defaultAPIURL = "https://api.rozetkapay.com/api/payments/v1"

// Client talks to the RozetkaPay hosted-checkout API. Credentials go over
// basic auth; amounts are sent in kopecks.
type Client struct {
	http    *resty.Client
	baseURL string
	login   string
}

func NewClient(cfg *config.Config) *Client {
	baseURL := cfg.ROZETKAPAY_URL
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	http := resty.New().
		SetTimeout(30 * time.Second).
		SetBasicAuth(cfg.ROZETKAPAY_LOGIN, cfg.ROZETKAPAY_PASSWORD).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: http, baseURL: baseURL, login: cfg.ROZETKAPAY_LOGIN}
}

func (c *Client) Configured() bool {
	return c.login != ""
}

type CreateRequest struct {
	Amount      float64
	Currency    string
	ExternalID  string
	Description string
	CallbackURL string
}

type CreateResult struct {
	ProviderID  string
	CheckoutURL string
}

func (c *Client) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "UAH"
	}

	payload := map[string]any{
		"amount":       int64(math.Round(req.Amount * 100)),
		"currency":     currency,
		"external_id":  req.ExternalID,
		"description":  req.Description,
		"callback_url": req.CallbackURL,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.baseURL + "/new")
	if err != nil {
		return nil, fmt.Errorf("rozetkapay: create payment: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("rozetkapay: create payment failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var result struct {
		ID     string `json:"id"`
		Action struct {
			Value string `json:"value"`
		} `json:"action"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("rozetkapay: parse response: %w", err)
	}

	return &CreateResult{ProviderID: result.ID, CheckoutURL: result.Action.Value}, nil
}

// Callback is the webhook body the provider posts back after checkout.
type Callback struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// Package stripe is a minimal client for the Stripe REST API covering
// the customer, checkout session and subscription calls the billing
// service needs, plus webhook signature verification.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopkpi/shopkpi/pkg/httpx"
)

const apiBase = "https://api.stripe.com/v1"

type Client struct {
	secretKey string
	http      *httpx.Client
	baseURL   string
}

func NewClient(secretKey string) *Client {
	return &Client{
		secretKey: secretKey,
		http:      httpx.NewClient(),
		baseURL:   apiBase,
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type CheckoutSession struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Customer string `json:"customer"`
}

type Subscription struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Customer string            `json:"customer"`
	Items    subscriptionItems `json:"items"`
}

type subscriptionItems struct {
	Data []SubscriptionItem `json:"data"`
}

type SubscriptionItem struct {
	Quantity int64 `json:"quantity"`
	Price    Price `json:"price"`
}

type Price struct {
	ID        string    `json:"id"`
	Recurring Recurring `json:"recurring"`
}

type Recurring struct {
	Interval string `json:"interval"`
}

// Seats returns the first item's quantity, 0 when absent.
func (s Subscription) Seats() int64 {
	if len(s.Items.Data) == 0 {
		return 0
	}
	return s.Items.Data[0].Quantity
}

// Plan returns the billing plan implied by the first item's recurring
// interval: "monthly", "yearly" or empty.
func (s Subscription) Plan() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	switch s.Items.Data[0].Price.Recurring.Interval {
	case "month":
		return "monthly"
	case "year":
		return "yearly"
	}
	return ""
}

func (c *Client) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*Customer, error) {
	form := url.Values{}
	if email != "" {
		form.Set("email", email)
	}
	if name != "" {
		form.Set("name", name)
	}
	encodeMetadata(form, metadata)

	var customer Customer
	if err := c.post(ctx, "/customers", form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

type CheckoutParams struct {
	CustomerID string
	PriceID    string
	Quantity   int64
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", params.CustomerID)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", strconv.FormatInt(quantity, 10))
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	encodeMetadata(form, params.Metadata)

	var session CheckoutSession
	if err := c.post(ctx, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var subscription Subscription
	if err := c.get(ctx, "/subscriptions/"+url.PathEscape(subscriptionID), &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	header := c.header()
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, body, err := c.http.Do(ctx, http.MethodPost, c.baseURL+path, header, []byte(form.Encode()))
	if err != nil {
		return err
	}
	return decode(path, status, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	status, body, err := c.http.Do(ctx, http.MethodGet, c.baseURL+path, c.header(), nil)
	if err != nil {
		return err
	}
	return decode(path, status, body, out)
}

func (c *Client) header() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.secretKey)
	return header
}

func decode(path string, status int, body []byte, out any) error {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Error.Message != "" {
			return fmt.Errorf("stripe %s: %s", path, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe %s: status %d", path, status)
	}
	return json.Unmarshal(body, out)
}

func encodeMetadata(form url.Values, metadata map[string]string) {
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}
}

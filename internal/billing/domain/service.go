// Package domain contains the billing service contract.
package domain

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/billing/stripe"
)

type Service interface {
	CreateCheckout(ctx context.Context, userID snowflake.ID, req CreateCheckoutRequest) (*CheckoutResult, error)
	SubscriptionStatus(ctx context.Context, userID snowflake.ID) (*SubscriptionView, error)
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error
}

// Gateway is the slice of the Stripe API the billing service uses.
// Satisfied by *stripe.Client; faked in tests.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripe.Customer, error)
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
}

// Plans offered at checkout.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

type CreateCheckoutRequest struct {
	Plan  string `json:"plan"`
	Seats int64  `json:"seats"`
}

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type SubscriptionView struct {
	Status string `json:"status"`
	Plan   string `json:"plan"`
}

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/shopkpi/shopkpi/internal/auth/domain"
	authrepository "github.com/shopkpi/shopkpi/internal/auth/repository"
	authservice "github.com/shopkpi/shopkpi/internal/auth/service"
	"github.com/shopkpi/shopkpi/internal/billing/domain"
	"github.com/shopkpi/shopkpi/internal/billing/stripe"
	"github.com/shopkpi/shopkpi/internal/config"
	"github.com/shopkpi/shopkpi/pkg/db"
	"go.uber.org/zap"
)

const webhookSecret = "whsec_test"

type fakeGateway struct {
	customers     int
	checkouts     []stripe.CheckoutParams
	subscription  *stripe.Subscription
	subscriptions int
}

func (f *fakeGateway) CreateCustomer(_ context.Context, email, name string, _ map[string]string) (*stripe.Customer, error) {
	f.customers++
	return &stripe.Customer{ID: fmt.Sprintf("cus_%d", f.customers), Email: email, Name: name}, nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error) {
	f.checkouts = append(f.checkouts, params)
	return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1", Customer: params.CustomerID}, nil
}

func (f *fakeGateway) GetSubscription(_ context.Context, subscriptionID string) (*stripe.Subscription, error) {
	f.subscriptions++
	if f.subscription != nil {
		return f.subscription, nil
	}
	return &stripe.Subscription{ID: subscriptionID, Status: "active"}, nil
}

func newTestBilling(t *testing.T) (domain.Service, authdomain.Service, *fakeGateway) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repo, sessionRepo := authrepository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	users := authservice.New(zap.NewNop(), repo, sessionRepo, node)

	gateway := &fakeGateway{}
	cfg := config.Config{
		PublicURL: "https://shopkpi.test",
		Stripe: config.StripeConfig{
			SecretKey:      "sk_test",
			WebhookSecret:  webhookSecret,
			MonthlyPriceID: "price_monthly",
			YearlyPriceID:  "price_yearly",
		},
	}
	return New(zap.NewNop(), users, gateway, cfg), users, gateway
}

func registerUser(t *testing.T, users authdomain.Service, username string) *authdomain.User {
	t.Helper()
	user, err := users.Register(context.Background(), authdomain.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return user
}

func signedHeaders(t *testing.T, payload []byte) http.Header {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte("1700000000." + string(payload)))
	headers := http.Header{}
	headers.Set("Stripe-Signature", "t=1700000000,v1="+hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func TestCreateCheckoutReusesCustomer(t *testing.T) {
	billing, users, gateway := newTestBilling(t)
	user := registerUser(t, users, "alice")

	result, err := billing.CreateCheckout(context.Background(), user.ID, domain.CreateCheckoutRequest{Plan: domain.PlanMonthly})
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if result.URL == "" {
		t.Fatal("expected checkout url")
	}
	if gateway.customers != 1 {
		t.Fatalf("expected one customer created, got %d", gateway.customers)
	}
	if gateway.checkouts[0].PriceID != "price_monthly" {
		t.Fatalf("unexpected price: %q", gateway.checkouts[0].PriceID)
	}
	if gateway.checkouts[0].Metadata["user_id"] != user.ID.String() {
		t.Fatal("expected user metadata on session")
	}

	if _, err := billing.CreateCheckout(context.Background(), user.ID, domain.CreateCheckoutRequest{Plan: domain.PlanYearly}); err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if gateway.customers != 1 {
		t.Fatalf("expected customer reuse, got %d creations", gateway.customers)
	}
}

func TestCreateCheckoutUnknownPlan(t *testing.T) {
	billing, users, _ := newTestBilling(t)
	user := registerUser(t, users, "bob")

	if _, err := billing.CreateCheckout(context.Background(), user.ID, domain.CreateCheckoutRequest{Plan: "weekly"}); err != domain.ErrUnknownPlan {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestWebhookRefusedWithoutSecret(t *testing.T) {
	_, users, gateway := newTestBilling(t)
	user := registerUser(t, users, "mallory")

	cfg := config.Config{
		PublicURL: "https://shopkpi.test",
		Stripe: config.StripeConfig{
			SecretKey:      "sk_test",
			MonthlyPriceID: "price_monthly",
			YearlyPriceID:  "price_yearly",
		},
	}
	billing := New(zap.NewNop(), users, gateway, cfg)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"customer": "cus_1", "subscription": "sub_1", "metadata": {"user_id": "%s", "plan": "monthly"}}}
	}`, user.ID))

	// An HMAC over the empty key is computable by anyone, so a correctly
	// formed header must still be refused when no secret is configured.
	mac := hmac.New(sha256.New, []byte(""))
	mac.Write([]byte("1700000000." + string(payload)))
	headers := http.Header{}
	headers.Set("Stripe-Signature", "t=1700000000,v1="+hex.EncodeToString(mac.Sum(nil)))

	if err := billing.HandleWebhook(context.Background(), payload, headers); err != domain.ErrBillingDisabled {
		t.Fatalf("expected ErrBillingDisabled, got %v", err)
	}

	unchanged, err := users.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	if unchanged.SubscriptionStatus != authdomain.SubscriptionInactive {
		t.Fatalf("unconfigured webhook must not change state, got %q", unchanged.SubscriptionStatus)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	billing, users, _ := newTestBilling(t)
	user := registerUser(t, users, "carol")

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"customer": "cus_1", "subscription": "sub_1", "metadata": {"user_id": "%s", "plan": "monthly"}}}
	}`, user.ID))

	headers := http.Header{}
	headers.Set("Stripe-Signature", "t=1700000000,v1=forged")
	if err := billing.HandleWebhook(context.Background(), payload, headers); err != domain.ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	unchanged, err := users.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	if unchanged.SubscriptionStatus != authdomain.SubscriptionInactive {
		t.Fatalf("rejected webhook must not change state, got %q", unchanged.SubscriptionStatus)
	}
}

func TestWebhookCheckoutCompleted(t *testing.T) {
	billing, users, _ := newTestBilling(t)
	user := registerUser(t, users, "dave")

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"customer": "cus_9", "subscription": "sub_9", "metadata": {"user_id": "%s", "plan": "yearly"}}}
	}`, user.ID))

	if err := billing.HandleWebhook(context.Background(), payload, signedHeaders(t, payload)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	updated, err := users.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	if updated.SubscriptionStatus != authdomain.SubscriptionActive {
		t.Fatalf("expected active subscription, got %q", updated.SubscriptionStatus)
	}
	if updated.StripeCustomerID != "cus_9" || updated.StripeSubscriptionID != "sub_9" {
		t.Fatalf("stripe ids not bound: %+v", updated)
	}
	if updated.SubscriptionPlan != "yearly" {
		t.Fatalf("expected yearly plan, got %q", updated.SubscriptionPlan)
	}
}

func TestWebhookSubscriptionLifecycle(t *testing.T) {
	billing, users, _ := newTestBilling(t)
	user := registerUser(t, users, "erin")

	customerID := "cus_77"
	if err := users.UpdateSubscription(context.Background(), user.ID, authdomain.UpdateSubscriptionRequest{
		StripeCustomerID: &customerID,
	}); err != nil {
		t.Fatalf("failed to bind customer: %v", err)
	}

	updatePayload := []byte(`{
		"id": "evt_2",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_77", "status": "past_due", "customer": "cus_77",
			"items": {"data": [{"quantity": 3, "price": {"id": "price_monthly", "recurring": {"interval": "month"}}}]}}}
	}`)
	if err := billing.HandleWebhook(context.Background(), updatePayload, signedHeaders(t, updatePayload)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	updated, _ := users.GetUser(context.Background(), user.ID)
	if updated.SubscriptionStatus != authdomain.SubscriptionPastDue || updated.SubscriptionPlan != "monthly" {
		t.Fatalf("unexpected state after update: %+v", updated)
	}

	deletePayload := []byte(`{
		"id": "evt_3",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_77", "status": "canceled", "customer": "cus_77"}}
	}`)
	if err := billing.HandleWebhook(context.Background(), deletePayload, signedHeaders(t, deletePayload)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	canceled, _ := users.GetUser(context.Background(), user.ID)
	if canceled.SubscriptionStatus != authdomain.SubscriptionCanceled {
		t.Fatalf("expected canceled, got %q", canceled.SubscriptionStatus)
	}
}

func TestWebhookUnknownCustomerIgnored(t *testing.T) {
	billing, _, _ := newTestBilling(t)

	payload := []byte(`{
		"id": "evt_4",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_1", "status": "active", "customer": "cus_unknown"}}
	}`)
	if err := billing.HandleWebhook(context.Background(), payload, signedHeaders(t, payload)); err != nil {
		t.Fatalf("expected unknown customer to be ignored, got %v", err)
	}
}

func TestSubscriptionStatusRefreshes(t *testing.T) {
	billing, users, gateway := newTestBilling(t)
	user := registerUser(t, users, "frank")

	subscriptionID := "sub_55"
	if err := users.UpdateSubscription(context.Background(), user.ID, authdomain.UpdateSubscriptionRequest{
		StripeSubscriptionID: &subscriptionID,
	}); err != nil {
		t.Fatalf("failed to bind subscription: %v", err)
	}

	gateway.subscription = &stripe.Subscription{ID: "sub_55", Status: "active", Customer: "cus_55"}
	view, err := billing.SubscriptionStatus(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("SubscriptionStatus: %v", err)
	}
	if view.Status != "active" {
		t.Fatalf("expected active, got %q", view.Status)
	}

	persisted, _ := users.GetUser(context.Background(), user.ID)
	if persisted.SubscriptionStatus != "active" {
		t.Fatalf("expected refreshed status persisted, got %q", persisted.SubscriptionStatus)
	}
}

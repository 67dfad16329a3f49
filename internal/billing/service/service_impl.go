package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/shopkpi/shopkpi/internal/auth/domain"
	"github.com/shopkpi/shopkpi/internal/billing/domain"
	"github.com/shopkpi/shopkpi/internal/billing/stripe"
	"github.com/shopkpi/shopkpi/internal/config"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	users   authdomain.Service
	gateway domain.Gateway
	cfg     config.StripeConfig
	baseURL string
}

func New(log *zap.Logger, users authdomain.Service, gateway domain.Gateway, cfg config.Config) domain.Service {
	return &Service{
		log:     log.Named("billing.service"),
		users:   users,
		gateway: gateway,
		cfg:     cfg.Stripe,
		baseURL: cfg.PublicURL,
	}
}

func (s *Service) CreateCheckout(ctx context.Context, userID snowflake.ID, req domain.CreateCheckoutRequest) (*domain.CheckoutResult, error) {
	if s.cfg.SecretKey == "" {
		return nil, domain.ErrBillingDisabled
	}

	priceID, err := s.priceFor(req.Plan)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customer, err := s.gateway.CreateCustomer(ctx, user.Email, user.Name, map[string]string{
			"user_id": user.ID.String(),
		})
		if err != nil {
			return nil, err
		}
		customerID = customer.ID
		if err := s.users.UpdateSubscription(ctx, user.ID, authdomain.UpdateSubscriptionRequest{
			StripeCustomerID: &customerID,
		}); err != nil {
			return nil, err
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		Quantity:   req.Seats,
		SuccessURL: s.baseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/billing/cancel",
		Metadata: map[string]string{
			"user_id": user.ID.String(),
			"plan":    req.Plan,
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("user_id", user.ID.String()),
		zap.String("plan", req.Plan),
	)
	return &domain.CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

func (s *Service) SubscriptionStatus(ctx context.Context, userID snowflake.ID) (*domain.SubscriptionView, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.StripeSubscriptionID == "" {
		return &domain.SubscriptionView{
			Status: user.SubscriptionStatus,
			Plan:   user.SubscriptionPlan,
		}, nil
	}

	subscription, err := s.gateway.GetSubscription(ctx, user.StripeSubscriptionID)
	if err != nil {
		// Serve the last persisted state when Stripe is unreachable.
		s.log.Warn("subscription refresh failed", zap.Error(err))
		return &domain.SubscriptionView{
			Status: user.SubscriptionStatus,
			Plan:   user.SubscriptionPlan,
		}, nil
	}

	status := subscription.Status
	plan := subscription.Plan()
	update := authdomain.UpdateSubscriptionRequest{Status: &status}
	if plan != "" {
		update.Plan = &plan
	}
	if err := s.users.UpdateSubscription(ctx, user.ID, update); err != nil {
		return nil, err
	}

	view := &domain.SubscriptionView{Status: status, Plan: plan}
	if plan == "" {
		view.Plan = user.SubscriptionPlan
	}
	return view, nil
}

func (s *Service) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	// An empty secret would let anyone compute a valid HMAC.
	if s.cfg.WebhookSecret == "" {
		return domain.ErrBillingDisabled
	}
	if err := stripe.VerifySignature(payload, headers, s.cfg.WebhookSecret); err != nil {
		return domain.ErrInvalidSignature
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		return domain.ErrInvalidPayload
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.applyCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		return s.applySubscriptionUpdate(ctx, event, "")
	case "customer.subscription.deleted":
		return s.applySubscriptionUpdate(ctx, event, authdomain.SubscriptionCanceled)
	default:
		s.log.Debug("webhook event ignored", zap.String("type", event.Type))
		return nil
	}
}

func (s *Service) applyCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	object, err := event.CheckoutCompleted()
	if err != nil {
		return domain.ErrInvalidPayload
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(object.Metadata["user_id"]))
	if err != nil {
		return domain.ErrInvalidPayload
	}

	status := authdomain.SubscriptionActive
	update := authdomain.UpdateSubscriptionRequest{
		StripeCustomerID:     &object.Customer,
		StripeSubscriptionID: &object.Subscription,
		Status:               &status,
	}
	if plan := strings.TrimSpace(object.Metadata["plan"]); plan != "" {
		update.Plan = &plan
	}

	if err := s.users.UpdateSubscription(ctx, userID, update); err != nil {
		return err
	}
	s.log.Info("checkout completed",
		zap.String("user_id", userID.String()),
		zap.String("event_id", event.ID),
	)
	return nil
}

func (s *Service) applySubscriptionUpdate(ctx context.Context, event *stripe.Event, statusOverride string) error {
	subscription, err := event.Subscription()
	if err != nil {
		return domain.ErrInvalidPayload
	}

	user, err := s.users.FindByStripeCustomerID(ctx, subscription.Customer)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			// Customer created outside this system; nothing to update.
			s.log.Warn("webhook for unknown customer",
				zap.String("customer_id", subscription.Customer),
				zap.String("event_id", event.ID),
			)
			return nil
		}
		return err
	}

	status := subscription.Status
	if statusOverride != "" {
		status = statusOverride
	}
	update := authdomain.UpdateSubscriptionRequest{
		StripeSubscriptionID: &subscription.ID,
		Status:               &status,
	}
	if plan := subscription.Plan(); plan != "" {
		update.Plan = &plan
	}

	if err := s.users.UpdateSubscription(ctx, user.ID, update); err != nil {
		return err
	}
	s.log.Info("subscription state applied",
		zap.String("user_id", user.ID.String()),
		zap.String("status", status),
		zap.Int64("seats", subscription.Seats()),
		zap.String("event_id", event.ID),
	)
	return nil
}

func (s *Service) priceFor(plan string) (string, error) {
	switch plan {
	case domain.PlanMonthly:
		if s.cfg.MonthlyPriceID == "" {
			return "", domain.ErrBillingDisabled
		}
		return s.cfg.MonthlyPriceID, nil
	case domain.PlanYearly:
		if s.cfg.YearlyPriceID == "" {
			return "", domain.ErrBillingDisabled
		}
		return s.cfg.YearlyPriceID, nil
	default:
		return "", domain.ErrUnknownPlan
	}
}

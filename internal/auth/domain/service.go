package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	ListMembers(ctx context.Context) ([]User, error)
	UpdateSubscription(ctx context.Context, userID snowflake.ID, req UpdateSubscriptionRequest) error
	FindByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Name     string
}

type LoginRequest struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}

// UpdateSubscriptionRequest carries the billing fields refreshed from
// Stripe. Nil fields are left untouched.
type UpdateSubscriptionRequest struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	Status               *string
	Plan                 *string
}

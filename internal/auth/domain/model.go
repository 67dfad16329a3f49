// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription statuses persisted on the user row. Values mirror the
// Stripe subscription status vocabulary.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionCanceled = "canceled"
	SubscriptionPastDue  = "past_due"
)

// User represents a system user account.
type User struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Username string       `gorm:"type:text;not null;uniqueIndex" json:"username"`
	// Uniqueness for non-empty emails is enforced by a partial index in
	// the Postgres migration and by the registration lookup; a column
	// constraint would also reject repeated empty values.
	Email                string            `gorm:"column:email;index" json:"email"`
	PasswordHash         *string           `gorm:"type:text" json:"-"`
	Name                 string            `gorm:"type:text" json:"name"`
	Role                 string            `gorm:"type:text;not null;default:user" json:"role"`
	StripeCustomerID     string            `gorm:"column:stripe_customer_id;type:text" json:"-"`
	StripeSubscriptionID string            `gorm:"column:stripe_subscription_id;type:text" json:"-"`
	SubscriptionStatus   string            `gorm:"column:subscription_status;type:text;not null;default:inactive" json:"subscriptionStatus"`
	SubscriptionPlan     string            `gorm:"column:subscription_plan;type:text" json:"subscriptionPlan"`
	Metadata             datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the account has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasActiveSubscription reports whether the account may use gated
// features. Admins are always allowed.
func (u User) HasActiveSubscription() bool {
	return u.IsAdmin() || u.SubscriptionStatus == SubscriptionActive
}

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

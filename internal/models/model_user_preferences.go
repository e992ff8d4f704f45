package models

import (
	"time"

	"github.com/billhound/billhound/pkg/types"
)

// UserPreferences holds per-user settings, Google OAuth token material and the
// subscription state written by the Stripe webhook handlers. One row per owner,
// upserted on first Google connect or first preference save.
type UserPreferences struct {
	ID      string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID string `gorm:"column:owner_id;type:varchar(64);not null;uniqueIndex" json:"owner_id"`

	ReminderEnabled    bool   `gorm:"column:reminder_enabled;not null;default:false" json:"reminder_enabled"`
	ReminderDaysBefore int    `gorm:"column:reminder_days_before;not null;default:3" json:"reminder_days_before"`
	ReminderEmail      string `gorm:"column:reminder_email;type:varchar(255)" json:"reminder_email"`

	GmailSyncEnabled   bool       `gorm:"column:gmail_sync_enabled;not null;default:false" json:"gmail_sync_enabled"`
	GoogleAccessToken  string     `gorm:"column:google_access_token;type:text" json:"-"`
	GoogleRefreshToken string     `gorm:"column:google_refresh_token;type:text" json:"-"`
	GoogleTokenExpiry  *time.Time `gorm:"column:google_token_expiry" json:"-"`
	LastGmailSync      *time.Time `gorm:"column:last_gmail_sync" json:"last_gmail_sync"`

	SubscriptionTier     types.SubscriptionTier   `gorm:"column:subscription_tier;type:varchar(16);not null;default:'free'" json:"subscription_tier"`
	SubscriptionStatus   types.SubscriptionStatus `gorm:"column:subscription_status;type:varchar(16);not null;default:''" json:"subscription_status"`
	StripeCustomerID     string                   `gorm:"column:stripe_customer_id;type:varchar(64);index" json:"-"`
	StripeSubscriptionID *string                  `gorm:"column:stripe_subscription_id;type:varchar(64)" json:"-"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end" json:"current_period_end"`
	// BillsLimit is the active-bill quota; nil means unlimited (pro).
	BillsLimit *int `gorm:"column:bills_limit" json:"bills_limit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

// GoogleConnected reports whether the user has usable Google credentials.
func (p *UserPreferences) GoogleConnected() bool {
	return p != nil && p.GoogleRefreshToken != ""
}

// EffectiveBillsLimit returns the active-bill quota, applying the free-tier
// default when the preferences row is missing. A nil pointer result means
// unlimited.
func (p *UserPreferences) EffectiveBillsLimit() *int {
	if p == nil {
		limit := types.FreeTierBillsLimit
		return &limit
	}
	return p.BillsLimit
}

// IsPro reports whether pro features (full LLM extraction, unlimited bills)
// are available. Past-due users keep pro features until the subscription is
// actually canceled.
func (p *UserPreferences) IsPro() bool {
	if p == nil {
		return false
	}
	return p.SubscriptionTier == types.SubscriptionTierPro &&
		p.SubscriptionStatus != types.SubscriptionStatusCanceled
}

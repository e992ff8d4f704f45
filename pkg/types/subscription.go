package types

type SubscriptionTier string

const (
	SubscriptionTierFree SubscriptionTier = "free"
	SubscriptionTierPro  SubscriptionTier = "pro"
)

// SubscriptionStatus mirrors the Stripe subscription status values we care
// about. The empty string means the user never had a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusNone     SubscriptionStatus = ""
)

// FreeTierBillsLimit is the active-bill quota applied to free-tier users and
// to users without a preferences row.
const FreeTierBillsLimit = 10

func (s SubscriptionStatus) Known() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusCanceled, SubscriptionStatusTrialing, SubscriptionStatusNone:
		return true
	}
	return false
}

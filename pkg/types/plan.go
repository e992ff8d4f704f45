package types

// Plan binds a Stripe price to the tier it grants. Plans are declared in the
// config file so price ids never live in code.
type Plan struct {
	ID            string           `json:"id" mapstructure:"id"`
	StripePriceID string           `json:"stripe_price_id" mapstructure:"stripe_price_id"`
	Tier          SubscriptionTier `json:"tier" mapstructure:"tier"`
}

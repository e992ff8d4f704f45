package stripeapi

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v74"
	stripeclient "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/billhound/billhound/pkg/config"
)

// Client wraps the Stripe SDK with explicit construction. The webhook secret
// stays inside this package; handlers hand the raw payload over for
// verification instead of touching it themselves.
type Client struct {
	sc            *stripeclient.API
	cfg           *cfgpkg.Config
	webhookSecret string
	log           *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	sc := &stripeclient.API{}
	sc.Init(cfg.Stripe.SecretKey, nil)
	return &Client{sc: sc, cfg: cfg, webhookSecret: cfg.Stripe.WebhookSecret, log: log}
}

// EnsureCustomer creates a Stripe customer for the owner and returns its id.
func (c *Client) EnsureCustomer(ctx context.Context, email, ownerID string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	params.AddMetadata("owner_id", ownerID)
	cust, err := c.sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession opens a subscription-mode checkout for the price and
// returns the hosted page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, priceID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(c.cfg.Stripe.SuccessURL),
		CancelURL:  stripe.String(c.cfg.Stripe.CancelURL),
	}
	sess, err := c.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens a billing portal session for an existing customer.
func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(c.cfg.Stripe.PortalURL),
	}
	sess, err := c.sc.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// VerifyWebhook checks the signature and returns the parsed event. Callers
// must not trust any payload that fails here.
func (c *Client) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return event, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)

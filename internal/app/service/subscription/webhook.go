package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/billhound/billhound/pkg/metrics"
	"github.com/billhound/billhound/pkg/types"
)

// HandleEvent applies one verified Stripe event to local subscription state.
// Handlers are idempotent: replaying an event converges on the same state.
// Unknown event types and unknown customers are skipped, not errors.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) error {
	var err error
	switch event.Type {
	case "checkout.session.completed":
		err = s.onCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		err = s.onSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		err = s.onSubscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		err = s.onPaymentFailed(ctx, event)
	case "invoice.payment_succeeded":
		err = s.onPaymentSucceeded(ctx, event)
	default:
		s.log.Debugw("ignoring webhook event", "type", event.Type)
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		return nil
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.log.Errorw("webhook event failed", "type", event.Type, "event_id", event.ID, "error", err.Error())
	}
	metrics.WebhookEvents.WithLabelValues(string(event.Type), outcome).Inc()
	return err
}

// onCheckoutCompleted grants pro: unlimited bills, active status, the
// subscription id recorded for later portal and cancellation flows.
func (s *Service) onCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}

	p, err := s.byCustomer(ctx, customerID(sess.Customer))
	if err != nil {
		return err
	}
	if p == nil {
		s.log.Warnw("checkout completed for unknown customer", "customer_id", customerID(sess.Customer))
		return nil
	}

	var subID *string
	if sess.Subscription != nil && sess.Subscription.ID != "" {
		subID = &sess.Subscription.ID
	}

	s.log.Infow("subscription activated", "owner_id", p.OwnerID, "subscription_id", subID)
	return s.applyState(ctx, p, map[string]any{
		"subscription_tier":      types.SubscriptionTierPro,
		"subscription_status":    types.SubscriptionStatusActive,
		"stripe_subscription_id": subID,
		"bills_limit":            nil,
	})
}

// onSubscriptionUpdated passes the provider's lifecycle status through and
// tracks the period end. Tier changes only on completed checkout or deletion.
func (s *Service) onSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to decode subscription: %w", err)
	}

	p, err := s.byCustomer(ctx, customerID(sub.Customer))
	if err != nil {
		return err
	}
	if p == nil {
		s.log.Warnw("subscription update for unknown customer", "customer_id", customerID(sub.Customer))
		return nil
	}

	updates := map[string]any{
		"subscription_status": mapStatus(sub.Status),
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0)
	}
	return s.applyState(ctx, p, updates)
}

// onSubscriptionDeleted downgrades to the free tier and restores the
// free-tier quota. Existing bills above the quota stay active; only new
// creation is gated.
func (s *Service) onSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to decode subscription: %w", err)
	}

	p, err := s.byCustomer(ctx, customerID(sub.Customer))
	if err != nil {
		return err
	}
	if p == nil {
		s.log.Warnw("subscription deletion for unknown customer", "customer_id", customerID(sub.Customer))
		return nil
	}

	s.log.Infow("subscription canceled", "owner_id", p.OwnerID)
	return s.applyState(ctx, p, map[string]any{
		"subscription_tier":      types.SubscriptionTierFree,
		"subscription_status":    types.SubscriptionStatusCanceled,
		"stripe_subscription_id": nil,
		"bills_limit":            types.FreeTierBillsLimit,
	})
}

func (s *Service) onPaymentFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("failed to decode invoice: %w", err)
	}

	p, err := s.byCustomer(ctx, customerID(inv.Customer))
	if err != nil {
		return err
	}
	if p == nil {
		s.log.Warnw("payment failure for unknown customer", "customer_id", customerID(inv.Customer))
		return nil
	}

	s.log.Warnw("subscription payment failed", "owner_id", p.OwnerID)
	return s.applyState(ctx, p, map[string]any{
		"subscription_status": types.SubscriptionStatusPastDue,
	})
}

// onPaymentSucceeded clears a past-due flag. Regular renewal invoices for
// already-active subscriptions change nothing.
func (s *Service) onPaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("failed to decode invoice: %w", err)
	}

	p, err := s.byCustomer(ctx, customerID(inv.Customer))
	if err != nil {
		return err
	}
	if p == nil || p.SubscriptionStatus != types.SubscriptionStatusPastDue {
		return nil
	}

	s.log.Infow("subscription recovered from past due", "owner_id", p.OwnerID)
	return s.applyState(ctx, p, map[string]any{
		"subscription_status": types.SubscriptionStatusActive,
	})
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func mapStatus(st stripe.SubscriptionStatus) types.SubscriptionStatus {
	switch st {
	case stripe.SubscriptionStatusActive:
		return types.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return types.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusCanceled:
		return types.SubscriptionStatusCanceled
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return types.SubscriptionStatusPastDue
	default:
		return types.SubscriptionStatus(st)
	}
}

package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/config"
	"github.com/billhound/billhound/pkg/tool"
	"github.com/billhound/billhound/pkg/types"
)

var (
	ErrUnknownPlan = errors.New("unknown plan")
	ErrNoCustomer  = errors.New("no billing customer for user")
)

// PaymentsProvider is the Stripe dependency for the user-facing billing
// operations. Webhook verification stays on the platform client itself.
type PaymentsProvider interface {
	EnsureCustomer(ctx context.Context, email, ownerID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID string) (string, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
}

// Service owns subscription state. User-scoped operations (checkout, portal)
// look rows up by owner id; webhook handlers look them up by Stripe customer
// id, the only identity the event carries.
type Service struct {
	db       *gorm.DB
	cfg      *config.Config
	payments PaymentsProvider
	log      *zap.SugaredLogger
}

func NewService(db *gorm.DB, cfg *config.Config, payments PaymentsProvider, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cfg: cfg, payments: payments, log: log}
}

// Logger exposes the service logger for handlers that log before delegating.
func (s *Service) Logger() *zap.SugaredLogger {
	return s.log
}

// StartCheckout resolves the plan, makes sure the owner has a Stripe customer
// and returns the hosted checkout URL. The upgrade itself happens later, via
// webhook; nothing is granted here.
func (s *Service) StartCheckout(ctx context.Context, ownerID, email, planID string) (string, error) {
	plan := s.cfg.GetPlanByID(planID)
	if plan == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}

	p, err := s.getOrCreatePrefs(ctx, ownerID)
	if err != nil {
		return "", err
	}

	if p.StripeCustomerID == "" {
		customerID, err := s.payments.EnsureCustomer(ctx, email, ownerID)
		if err != nil {
			return "", err
		}
		err = s.db.WithContext(ctx).
			Model(p).
			Update("stripe_customer_id", customerID).Error
		if err != nil {
			return "", fmt.Errorf("failed to store stripe customer: %w", err)
		}
		p.StripeCustomerID = customerID
	}

	return s.payments.CreateCheckoutSession(ctx, p.StripeCustomerID, plan.StripePriceID)
}

// OpenPortal returns a billing portal URL for an owner who already has a
// Stripe customer.
func (s *Service) OpenPortal(ctx context.Context, ownerID string) (string, error) {
	var p models.UserPreferences
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoCustomer
		}
		return "", fmt.Errorf("failed to load preferences: %w", err)
	}
	if p.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}
	return s.payments.CreatePortalSession(ctx, p.StripeCustomerID)
}

func (s *Service) getOrCreatePrefs(ctx context.Context, ownerID string) (*models.UserPreferences, error) {
	var p models.UserPreferences
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	limit := types.FreeTierBillsLimit
	p = models.UserPreferences{
		ID:               tool.GenerateUUIDV7(),
		OwnerID:          ownerID,
		SubscriptionTier: types.SubscriptionTierFree,
		BillsLimit:       &limit,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}
	return &p, nil
}

// byCustomer loads the preferences row for a Stripe customer id. Returns
// (nil, nil) for unknown customers so webhook handlers can skip them.
func (s *Service) byCustomer(ctx context.Context, customerID string) (*models.UserPreferences, error) {
	if customerID == "" {
		return nil, nil
	}
	var p models.UserPreferences
	err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preferences by customer: %w", err)
	}
	return &p, nil
}

func (s *Service) applyState(ctx context.Context, p *models.UserPreferences, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	err := s.db.WithContext(ctx).
		Model(&models.UserPreferences{}).
		Where("id = ?", p.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription state: %w", err)
	}
	return nil
}

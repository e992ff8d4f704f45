package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/tool"
	"github.com/billhound/billhound/pkg/types"
)

// Service owns reads and writes of UserPreferences in the user scope.
// Subscription-state fields are written by the subscription service instead,
// which looks rows up by Stripe customer id.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Get returns the owner's preferences, or (nil, nil) when no row exists yet.
func (s *Service) Get(ctx context.Context, ownerID string) (*models.UserPreferences, error) {
	var p models.UserPreferences
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &p, nil
}

// UpdateInput carries the settings a user may change directly. Nil fields are
// left untouched.
type UpdateInput struct {
	ReminderEnabled    *bool
	ReminderDaysBefore *int
	ReminderEmail      *string
	GmailSyncEnabled   *bool
}

// Upsert creates the row on first save and applies non-nil fields.
func (s *Service) Upsert(ctx context.Context, ownerID string, in UpdateInput) (*models.UserPreferences, error) {
	p, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		limit := types.FreeTierBillsLimit
		p = &models.UserPreferences{
			ID:               tool.GenerateUUIDV7(),
			OwnerID:          ownerID,
			SubscriptionTier: types.SubscriptionTierFree,
			BillsLimit:       &limit,
		}
	}

	if in.ReminderEnabled != nil {
		p.ReminderEnabled = *in.ReminderEnabled
	}
	if in.ReminderDaysBefore != nil {
		p.ReminderDaysBefore = *in.ReminderDaysBefore
	}
	if in.ReminderEmail != nil {
		p.ReminderEmail = *in.ReminderEmail
	}
	if in.GmailSyncEnabled != nil {
		p.GmailSyncEnabled = *in.GmailSyncEnabled
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return p, nil
}

// SaveGoogleTokens stores refreshed OAuth token material, creating the row on
// first connect.
func (s *Service) SaveGoogleTokens(ctx context.Context, ownerID, accessToken, refreshToken string, expiry time.Time) error {
	p, err := s.Get(ctx, ownerID)
	if err != nil {
		return err
	}
	if p == nil {
		limit := types.FreeTierBillsLimit
		p = &models.UserPreferences{
			ID:               tool.GenerateUUIDV7(),
			OwnerID:          ownerID,
			SubscriptionTier: types.SubscriptionTierFree,
			BillsLimit:       &limit,
		}
	}
	p.GoogleAccessToken = accessToken
	if refreshToken != "" {
		p.GoogleRefreshToken = refreshToken
	}
	p.GoogleTokenExpiry = &expiry

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save google tokens: %w", err)
	}
	return nil
}

// TouchLastSync records sync completion time, including zero-result syncs.
func (s *Service) TouchLastSync(ctx context.Context, ownerID string, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.UserPreferences{}).
		Where("owner_id = ?", ownerID).
		Update("last_gmail_sync", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last sync time: %w", err)
	}
	return nil
}

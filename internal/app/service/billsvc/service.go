package billsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/tool"
	"github.com/billhound/billhound/pkg/types"
)

// Service is the single authoritative write path for bills. Both manual
// creation and the ingestion reconciler go through CreateBill, so quota
// semantics are identical everywhere.
type Service struct {
	db    *gorm.DB
	prefs *prefs.Service
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, p *prefs.Service, log *zap.SugaredLogger) *Service {
	return &Service{db: db, prefs: p, log: log}
}

type CreateBillInput struct {
	Name       string             `json:"name"`
	Amount     float64            `json:"amount"`
	DueDay     int                `json:"due_day"`
	Recurrence types.Recurrence   `json:"recurrence"`
	Category   types.BillCategory `json:"category"`
	Notes      *string            `json:"notes"`
}

func (in *CreateBillInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("bill name is required")
	}
	if in.Amount <= 0 {
		return fmt.Errorf("bill amount must be positive, got %v", in.Amount)
	}
	if in.DueDay < 1 || in.DueDay > 31 {
		return fmt.Errorf("due day must be in 1..31, got %d", in.DueDay)
	}
	if in.Recurrence == "" {
		in.Recurrence = types.RecurrenceMonthly
	}
	if !in.Recurrence.Known() {
		return fmt.Errorf("unknown recurrence %q", in.Recurrence)
	}
	if in.Category == "" {
		in.Category = types.BillCategoryOther
	}
	if !in.Category.Known() {
		return fmt.Errorf("unknown category %q", in.Category)
	}
	return nil
}

// CreateBill validates the input, enforces the owner's active-bill quota and
// inserts the row. On quota rejection no partial insert occurs and the error
// satisfies errors.Is(err, ErrBillLimitReached).
func (s *Service) CreateBill(ctx context.Context, ownerID string, in CreateBillInput) (*models.Bill, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.prefs.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	limit := p.EffectiveBillsLimit()

	if limit != nil {
		count, err := s.CountActiveBills(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*limit) {
			tier := types.SubscriptionTierFree
			if p != nil {
				tier = p.SubscriptionTier
			}
			return nil, &QuotaError{Count: int(count), Limit: *limit, Tier: tier}
		}
	}

	bill := &models.Bill{
		ID:         tool.GenerateUUIDV7(),
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(in.Name),
		Amount:     in.Amount,
		DueDay:     in.DueDay,
		Recurrence: in.Recurrence,
		Category:   in.Category,
		Notes:      in.Notes,
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(bill).Error; err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return bill, nil
}

func (s *Service) CountActiveBills(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active bills: %w", err)
	}
	return count, nil
}

// ListActiveBills returns the owner's active bills ordered oldest first.
func (s *Service) ListActiveBills(ctx context.Context, ownerID string) ([]*models.Bill, error) {
	var bills []*models.Bill
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at asc").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

// BillWithStatus is a bill plus its derived paid-this-period flag.
type BillWithStatus struct {
	models.Bill
	Paid bool `json:"paid"`
}

// ListBillsWithStatus loads active bills with payments preloaded and computes
// the derived paid status as of now.
func (s *Service) ListBillsWithStatus(ctx context.Context, ownerID string, now time.Time) ([]*BillWithStatus, error) {
	var bills []*models.Bill
	err := s.db.WithContext(ctx).
		Preload("Payments").
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("due_day asc").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	out := make([]*BillWithStatus, 0, len(bills))
	for _, b := range bills {
		out = append(out, &BillWithStatus{Bill: *b, Paid: b.PaidInPeriod(b.Payments, now)})
	}
	return out, nil
}

func (s *Service) getOwnedBill(ctx context.Context, ownerID, billID string) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", billID, ownerID).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}
	return &bill, nil
}

// DeactivateBill soft-deletes; the row and its payment history are preserved.
func (s *Service) DeactivateBill(ctx context.Context, ownerID, billID string) error {
	bill, err := s.getOwnedBill(ctx, ownerID, billID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Model(bill).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate bill: %w", err)
	}
	return nil
}

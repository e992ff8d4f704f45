package billsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/tool"
)

// MarkPaid appends one ledger row. A nil amount records the bill's own amount.
func (s *Service) MarkPaid(ctx context.Context, ownerID, billID string, amount *float64, now time.Time) (*models.Payment, error) {
	bill, err := s.getOwnedBill(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}

	paid := bill.Amount
	if amount != nil && *amount > 0 {
		paid = *amount
	}

	payment := &models.Payment{
		ID:         tool.GenerateUUIDV7(),
		BillID:     bill.ID,
		PaidAt:     now,
		AmountPaid: paid,
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	return payment, nil
}

// UndoPaid deletes the most recent payment inside the bill's current period.
// Undoing when nothing was paid this period is a no-op.
func (s *Service) UndoPaid(ctx context.Context, ownerID, billID string, now time.Time) error {
	bill, err := s.getOwnedBill(ctx, ownerID, billID)
	if err != nil {
		return err
	}

	var payment models.Payment
	err = s.db.WithContext(ctx).
		Where("bill_id = ? AND paid_at >= ? AND paid_at <= ?", bill.ID, bill.PeriodStart(now), now).
		Order("paid_at desc").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find payment to undo: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&payment).Error; err != nil {
		return fmt.Errorf("failed to undo payment: %w", err)
	}
	return nil
}

// ListPayments returns the bill's full payment history, newest first.
func (s *Service) ListPayments(ctx context.Context, ownerID, billID string) ([]*models.Payment, error) {
	bill, err := s.getOwnedBill(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}
	var payments []*models.Payment
	err = s.db.WithContext(ctx).
		Where("bill_id = ?", bill.ID).
		Order("paid_at desc").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

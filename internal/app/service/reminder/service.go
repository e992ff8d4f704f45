package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/internal/platform/mailer"
)

// Sender delivers one reminder email. The production implementation is the
// hosted mailer client.
type Sender interface {
	SendBillReminders(ctx context.Context, to string, items []mailer.ReminderItem) error
}

// Service assembles due-soon reminder emails. It holds no schedule of its
// own; an external scheduler calls RunAll.
type Service struct {
	db     *gorm.DB
	sender Sender
	log    *zap.SugaredLogger
}

func NewService(db *gorm.DB, sender Sender, log *zap.SugaredLogger) *Service {
	return &Service{db: db, sender: sender, log: log}
}

// SendDueReminders sends the owner one email covering unpaid active bills due
// within their configured window. Returns the number of bills included, zero
// when reminders are disabled or nothing is due.
func (s *Service) SendDueReminders(ctx context.Context, ownerID string, now time.Time) (int, error) {
	var p models.UserPreferences
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load preferences: %w", err)
	}
	return s.sendForUser(ctx, &p, now)
}

func (s *Service) sendForUser(ctx context.Context, p *models.UserPreferences, now time.Time) (int, error) {
	if !p.ReminderEnabled || p.ReminderEmail == "" {
		return 0, nil
	}

	var bills []*models.Bill
	err := s.db.WithContext(ctx).
		Preload("Payments").
		Where("owner_id = ? AND is_active = ?", p.OwnerID, true).
		Find(&bills).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load bills: %w", err)
	}

	items := make([]mailer.ReminderItem, 0, len(bills))
	for _, b := range bills {
		if b.PaidInPeriod(b.Payments, now) {
			continue
		}
		due := nextDueDate(b.DueDay, now)
		days := daysUntil(due, now)
		if days > p.ReminderDaysBefore {
			continue
		}
		items = append(items, mailer.ReminderItem{
			Name:         b.Name,
			Amount:       b.Amount,
			DueDate:      due,
			DaysUntilDue: days,
			Category:     b.Category,
		})
	}

	if len(items) == 0 {
		return 0, nil
	}
	if err := s.sender.SendBillReminders(ctx, p.ReminderEmail, items); err != nil {
		return 0, fmt.Errorf("failed to send reminder email: %w", err)
	}
	s.log.Infow("reminder sent", "owner_id", p.OwnerID, "bills", len(items))
	return len(items), nil
}

// RunAll sends reminders for every user with reminders configured. Per-user
// failures are logged and do not stop the run.
func (s *Service) RunAll(ctx context.Context, now time.Time) (int, error) {
	var users []*models.UserPreferences
	err := s.db.WithContext(ctx).
		Where("reminder_enabled = ? AND reminder_email <> ''", true).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder users: %w", err)
	}

	sent := 0
	for _, p := range users {
		n, err := s.sendForUser(ctx, p, now)
		if err != nil {
			s.log.Errorw("reminder run failed for user", "owner_id", p.OwnerID, "error", err.Error())
			continue
		}
		if n > 0 {
			sent++
		}
	}
	return sent, nil
}

// nextDueDate is the next calendar occurrence of the due day, on or after
// today. Due days past the month's end clamp to the last day of the month.
func nextDueDate(dueDay int, now time.Time) time.Time {
	y, m, _ := now.Date()
	due := dateForDay(y, m, dueDay, now.Location())
	if due.Before(truncateDay(now)) {
		next := time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		due = dateForDay(next.Year(), next.Month(), dueDay, now.Location())
	}
	return due
}

func dateForDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysUntil(due, now time.Time) int {
	return int(due.Sub(truncateDay(now)).Hours() / 24)
}

package models

import (
	"time"

	"github.com/billhound/billhound/pkg/types"
)

// Bill is a recurring obligation tracked for a user. Bills are never hard
// deleted; deactivating (is_active=false) preserves the payment ledger.
type Bill struct {
	ID      string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID string `gorm:"column:owner_id;type:varchar(64);not null;index" json:"owner_id"`
	Name    string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	// Amount is the per-period amount in the account currency. Always > 0 at creation.
	Amount float64 `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	// DueDay is the day of month the bill is due, always in [1,31].
	DueDay     int                `gorm:"column:due_day;not null" json:"due_day"`
	Recurrence types.Recurrence   `gorm:"column:recurrence;type:varchar(16);not null;default:'monthly'" json:"recurrence"`
	Category   types.BillCategory `gorm:"column:category;type:varchar(64);not null" json:"category"`
	// Notes may embed provenance for synced bills (source subject, evidence text).
	Notes         *string `gorm:"column:notes;type:text" json:"notes"`
	IsActive      bool    `gorm:"column:is_active;not null;default:true" json:"is_active"`
	GoogleEventID *string `gorm:"column:google_event_id;type:varchar(255)" json:"google_event_id"`

	Payments []Payment `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bill) TableName() string {
	return "bill"
}

// PaidInPeriod reports whether the bill has a payment inside the current
// recurrence period at the given instant. Paid status is derived, never stored.
func (b *Bill) PaidInPeriod(payments []Payment, now time.Time) bool {
	start := b.PeriodStart(now)
	for _, p := range payments {
		if !p.PaidAt.Before(start) && !p.PaidAt.After(now) {
			return true
		}
	}
	return false
}

// PeriodStart returns the start of the recurrence period containing now.
func (b *Bill) PeriodStart(now time.Time) time.Time {
	switch b.Recurrence {
	case types.RecurrenceWeekly:
		return now.AddDate(0, 0, -7)
	case types.RecurrenceYearly:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	case types.RecurrenceOnce:
		return time.Time{}
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

package models

import "time"

// Payment is an append-only ledger entry. Marking a bill paid inserts one row;
// undo deletes the most recent row in the active period.
type Payment struct {
	ID         string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	BillID     string    `gorm:"column:bill_id;type:uuid;not null;index" json:"bill_id"`
	PaidAt     time.Time `gorm:"column:paid_at;not null" json:"paid_at"`
	AmountPaid float64   `gorm:"column:amount_paid;type:numeric(12,2);not null" json:"amount_paid"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payment"
}

package models

import "time"

// SyncedEmail marks a provider message as processed for an owner. Its presence
// is the idempotence contract: a message with a row here is never reprocessed,
// and the (owner_id, email_id) unique index is the correctness backstop when
// concurrent syncs race.
type SyncedEmail struct {
	ID          string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID     string `gorm:"column:owner_id;type:varchar(64);not null;uniqueIndex:unique_owner_email,priority:1" json:"owner_id"`
	EmailID     string `gorm:"column:email_id;type:varchar(255);not null;uniqueIndex:unique_owner_email,priority:2" json:"email_id"`
	Subject     string `gorm:"column:subject;type:text" json:"subject"`
	FromAddress string `gorm:"column:from_address;type:varchar(255)" json:"from_address"`
	// BillID is nil when the email was processed but rejected.
	BillID    *string   `gorm:"column:bill_id;type:uuid" json:"bill_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SyncedEmail) TableName() string {
	return "synced_email"
}

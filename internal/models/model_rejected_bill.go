package models

import (
	"time"

	"gorm.io/datatypes"
)

// RejectedBill is a write-only audit row for candidates the acceptance policy
// turned down. Pipeline logic never reads it back.
type RejectedBill struct {
	ID              string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID         string         `gorm:"column:owner_id;type:varchar(64);not null;index" json:"owner_id"`
	EmailID         string         `gorm:"column:email_id;type:varchar(255);not null" json:"email_id"`
	Parsed          datatypes.JSON `gorm:"column:parsed;type:jsonb;default:'{}'" json:"parsed"`
	Confidence      int            `gorm:"column:confidence;not null" json:"confidence"`
	RejectionReason string         `gorm:"column:rejection_reason;type:text;not null" json:"rejection_reason"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (RejectedBill) TableName() string {
	return "rejected_bill"
}

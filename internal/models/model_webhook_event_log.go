package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEventLog is an append-only audit of verified provider webhook events,
// written before processing so failed events can be replayed by hand.
type WebhookEventLog struct {
	ID        string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider  string         `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	EventID   string         `gorm:"column:event_id;type:varchar(255);not null;index" json:"event_id"`
	EventType string         `gorm:"column:event_type;type:varchar(128);not null" json:"event_type"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;default:'{}'" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (WebhookEventLog) TableName() string {
	return "webhook_event_log"
}

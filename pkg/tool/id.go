package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID string. All row ids use v7 so
// primary-key order roughly matches insertion order.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

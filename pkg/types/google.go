package types

import "time"

// GoogleCredentials is the token material needed to act on a user's Gmail.
// It is loaded from UserPreferences and passed explicitly; clients never cache
// per-user tokens.
type GoogleCredentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

package billsvc

import (
	"errors"
	"fmt"

	"github.com/billhound/billhound/pkg/types"
)

// ErrBillLimitReached is the sentinel under every QuotaError, for errors.Is.
var ErrBillLimitReached = errors.New("active bill limit reached")

var ErrBillNotFound = errors.New("bill not found")

// QuotaError reports a tier-limit rejection with enough context for the
// caller to prompt an upgrade.
type QuotaError struct {
	Count int
	Limit int
	Tier  types.SubscriptionTier
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("active bill limit reached: %d of %d (tier %s)", e.Count, e.Limit, e.Tier)
}

func (e *QuotaError) Unwrap() error {
	return ErrBillLimitReached
}

package dedupe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/metrics"
)

// fillerTokens are brand and product words that vary across statements for
// the same underlying account ("Chase Credit Card" vs "Chase Ink Business
// Cash Visa"). They are ignored when deriving the grouping keyword.
var fillerTokens = map[string]bool{
	"card": true, "credit": true, "visa": true, "business": true,
	"cash": true, "ink": true, "freedom": true, "sapphire": true,
	"platinum": true, "rewards": true, "mastercard": true, "amex": true,
}

// Service is the on-demand duplicate sweep over a user's active bills. It is
// deliberately stricter than sync-time matching: exact amount and due day,
// fuzzy name only.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// mainKeyword reduces a bill name to its first non-filler token, lowercased.
// Names made entirely of filler fall back to the full lowercased name.
func mainKeyword(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, tok := range strings.Fields(lower) {
		if !fillerTokens[tok] {
			return tok
		}
	}
	return lower
}

func groupKey(b *models.Bill) string {
	return fmt.Sprintf("%s|%.2f|%d", mainKeyword(b.Name), b.Amount, b.DueDay)
}

// CleanupResult reports one sweep.
type CleanupResult struct {
	Removed int      `json:"removed"`
	Kept    []string `json:"kept"`
}

// CleanupDuplicates groups the owner's active bills by derived keyword, exact
// amount and due day, keeps the oldest bill of each group and deactivates the
// rest. Payment history on deactivated bills is preserved.
func (s *Service) CleanupDuplicates(ctx context.Context, ownerID string) (*CleanupResult, error) {
	var bills []*models.Bill
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at asc").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	result := &CleanupResult{}
	seen := make(map[string]string, len(bills))
	var remove []string

	for _, b := range bills {
		key := groupKey(b)
		if keeper, dup := seen[key]; dup {
			remove = append(remove, b.ID)
			s.log.Infow("duplicate bill flagged",
				"owner_id", ownerID, "bill_id", b.ID, "kept_bill_id", keeper, "name", b.Name)
			continue
		}
		seen[key] = b.ID
		result.Kept = append(result.Kept, b.ID)
	}

	if len(remove) > 0 {
		err := s.db.WithContext(ctx).
			Model(&models.Bill{}).
			Where("owner_id = ? AND id IN ?", ownerID, remove).
			Update("is_active", false).Error
		if err != nil {
			return nil, fmt.Errorf("failed to deactivate duplicates: %w", err)
		}
		metrics.BillsDeduplicated.Add(float64(len(remove)))
	}

	result.Removed = len(remove)
	return result, nil
}

package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// StatisticType identifies one computable data series.
type StatisticType string

const (
	// Active-bill totals
	StatisticTypeActiveBillCount   StatisticType = "active_bill_count"
	StatisticTypeMonthlyCommitment StatisticType = "monthly_commitment"

	// Breakdowns over active bills
	StatisticTypeCategoryBreakdown   StatisticType = "category_breakdown"
	StatisticTypeRecurrenceBreakdown StatisticType = "recurrence_breakdown"

	// Ledger-derived series
	StatisticTypeMonthlyPaidTotal StatisticType = "monthly_paid_total"
)

var statisticTypes = []StatisticType{
	StatisticTypeActiveBillCount,
	StatisticTypeMonthlyCommitment,
	StatisticTypeCategoryBreakdown,
	StatisticTypeRecurrenceBreakdown,
	StatisticTypeMonthlyPaidTotal,
}

type BillStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type BillStatisticRequest struct {
	DataItems []*BillStatisticDataItem `json:"data_items"`
}

// BillStatisticResponseDataItem is one point of a series. Date is set for
// time series, Label for breakdowns; totals leave both empty.
type BillStatisticResponseDataItem struct {
	Date   string  `json:"date,omitempty"`
	Label  string  `json:"label,omitempty"`
	Value  int64   `json:"value"`
	Amount float64 `json:"amount"`
}

type BillStatisticResponse struct {
	DataItems map[StatisticType][]BillStatisticResponseDataItem `json:"data_items"`
}

// Service computes per-user spending statistics.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getActiveBillCount(ctx context.Context, ownerID string) ([]BillStatisticResponseDataItem, error) {
	var results []BillStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("bill").
		Select("count(*) as value, COALESCE(sum(amount), 0) as amount").
		Where("owner_id = ? AND is_active = ?", ownerID, true)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getMonthlyCommitment normalizes each recurrence to a per-month amount:
// weekly scales by 52/12, yearly divides by 12, one-time bills are excluded.
func (s *Service) getMonthlyCommitment(ctx context.Context, ownerID string) ([]BillStatisticResponseDataItem, error) {
	var results []BillStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("bill").
		Select(`count(*) as value, COALESCE(sum(CASE recurrence
			WHEN 'weekly' THEN amount * 52.0 / 12.0
			WHEN 'yearly' THEN amount / 12.0
			WHEN 'once' THEN 0
			ELSE amount END), 0) as amount`).
		Where("owner_id = ? AND is_active = ?", ownerID, true)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getCategoryBreakdown(ctx context.Context, ownerID string) ([]BillStatisticResponseDataItem, error) {
	var results []BillStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("bill").
		Select("category as label, count(*) as value, COALESCE(sum(amount), 0) as amount").
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Group("category").
		Order("amount desc")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getRecurrenceBreakdown(ctx context.Context, ownerID string) ([]BillStatisticResponseDataItem, error) {
	var results []BillStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("bill").
		Select("recurrence as label, count(*) as value, COALESCE(sum(amount), 0) as amount").
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Group("recurrence").
		Order("amount desc")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getMonthlyPaidTotal(ctx context.Context, ownerID string) ([]BillStatisticResponseDataItem, error) {
	var results []BillStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
SELECT TO_CHAR(p.paid_at, 'YYYY-MM') as date,
       COUNT(*) as value,
       COALESCE(SUM(p.amount_paid), 0) as amount
FROM payment p
JOIN bill b ON b.id = p.bill_id
WHERE b.owner_id = ?
GROUP BY TO_CHAR(p.paid_at, 'YYYY-MM')
ORDER BY date DESC
`, ownerID).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getBillStatistic(ctx context.Context, ownerID string, dataItem *BillStatisticDataItem) ([]BillStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeActiveBillCount:
		return s.getActiveBillCount(ctx, ownerID)
	case StatisticTypeMonthlyCommitment:
		return s.getMonthlyCommitment(ctx, ownerID)
	case StatisticTypeCategoryBreakdown:
		return s.getCategoryBreakdown(ctx, ownerID)
	case StatisticTypeRecurrenceBreakdown:
		return s.getRecurrenceBreakdown(ctx, ownerID)
	case StatisticTypeMonthlyPaidTotal:
		return s.getMonthlyPaidTotal(ctx, ownerID)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetBillStatistics computes the requested data items concurrently and
// collects them into one response.
func (s *Service) GetBillStatistics(ctx context.Context, ownerID string, request *BillStatisticRequest) (*BillStatisticResponse, error) {
	for _, item := range request.DataItems {
		if !lo.Contains(statisticTypes, item.ID) {
			return nil, fmt.Errorf("invalid data item id: %s", item.ID)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []BillStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *BillStatisticDataItem) {
			defer wg.Done()
			res, err := s.getBillStatistic(ctx, ownerID, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []BillStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	results := make(map[StatisticType][]BillStatisticResponseDataItem)
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &BillStatisticResponse{DataItems: results}, nil
}

package statistics

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/tool"
	"github.com/billhound/billhound/pkg/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Bill{}, &models.Payment{}))
	return New(db), db
}

func seedBill(t *testing.T, db *gorm.DB, ownerID, name string, amount float64, recurrence types.Recurrence, category types.BillCategory, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.Bill{
		ID: tool.GenerateUUIDV7(), OwnerID: ownerID, Name: name,
		Amount: amount, DueDay: 1, Recurrence: recurrence, Category: category,
		IsActive: active,
	}).Error)
}

func TestGetBillStatisticsRejectsUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetBillStatistics(context.Background(), "u1", &BillStatisticRequest{
		DataItems: []*BillStatisticDataItem{{ID: "weekly_burn_rate"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data item id")
}

func TestActiveBillCount(t *testing.T) {
	svc, db := newTestService(t)
	seedBill(t, db, "u1", "Electric", 80, types.RecurrenceMonthly, types.BillCategoryUtilities, true)
	seedBill(t, db, "u1", "Netflix", 15.99, types.RecurrenceMonthly, types.BillCategoryStreaming, true)
	seedBill(t, db, "u1", "Old Gym", 30, types.RecurrenceMonthly, types.BillCategoryOther, false)
	seedBill(t, db, "u2", "Rent", 1500, types.RecurrenceMonthly, types.BillCategoryRentMortgage, true)

	res, err := svc.GetBillStatistics(context.Background(), "u1", &BillStatisticRequest{
		DataItems: []*BillStatisticDataItem{{ID: StatisticTypeActiveBillCount}},
	})
	require.NoError(t, err)

	items := res.DataItems[StatisticTypeActiveBillCount]
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Value)
	assert.InDelta(t, 95.99, items[0].Amount, 0.001)
}

func TestMonthlyCommitmentNormalizesRecurrence(t *testing.T) {
	svc, db := newTestService(t)
	seedBill(t, db, "u1", "Rent", 1200, types.RecurrenceMonthly, types.BillCategoryRentMortgage, true)
	seedBill(t, db, "u1", "Cleaner", 60, types.RecurrenceWeekly, types.BillCategoryOther, true)
	seedBill(t, db, "u1", "Insurance", 600, types.RecurrenceYearly, types.BillCategoryInsurance, true)
	seedBill(t, db, "u1", "Deposit", 5000, types.RecurrenceOnce, types.BillCategoryOther, true)

	res, err := svc.GetBillStatistics(context.Background(), "u1", &BillStatisticRequest{
		DataItems: []*BillStatisticDataItem{{ID: StatisticTypeMonthlyCommitment}},
	})
	require.NoError(t, err)

	items := res.DataItems[StatisticTypeMonthlyCommitment]
	require.Len(t, items, 1)
	// 1200 + 60*52/12 + 600/12 + 0
	assert.InDelta(t, 1510.0, items[0].Amount, 0.001)
}

func TestBreakdownsGroupAndOrder(t *testing.T) {
	svc, db := newTestService(t)
	seedBill(t, db, "u1", "Electric", 80, types.RecurrenceMonthly, types.BillCategoryUtilities, true)
	seedBill(t, db, "u1", "Water", 40, types.RecurrenceMonthly, types.BillCategoryUtilities, true)
	seedBill(t, db, "u1", "Netflix", 15.99, types.RecurrenceMonthly, types.BillCategoryStreaming, true)

	res, err := svc.GetBillStatistics(context.Background(), "u1", &BillStatisticRequest{
		DataItems: []*BillStatisticDataItem{
			{ID: StatisticTypeCategoryBreakdown},
			{ID: StatisticTypeRecurrenceBreakdown},
		},
	})
	require.NoError(t, err)

	cats := res.DataItems[StatisticTypeCategoryBreakdown]
	require.Len(t, cats, 2)
	assert.Equal(t, string(types.BillCategoryUtilities), cats[0].Label)
	assert.Equal(t, int64(2), cats[0].Value)
	assert.InDelta(t, 120.0, cats[0].Amount, 0.001)

	recs := res.DataItems[StatisticTypeRecurrenceBreakdown]
	require.Len(t, recs, 1)
	assert.Equal(t, string(types.RecurrenceMonthly), recs[0].Label)
	assert.Equal(t, int64(3), recs[0].Value)
}

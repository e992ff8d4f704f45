package dedupe

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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
	return NewService(db, zap.NewNop().Sugar()), db
}

func seedBill(t *testing.T, db *gorm.DB, ownerID, name string, amount float64, dueDay int, createdAt time.Time) string {
	t.Helper()
	b := &models.Bill{
		ID: tool.GenerateUUIDV7(), OwnerID: ownerID, Name: name,
		Amount: amount, DueDay: dueDay,
		Recurrence: types.RecurrenceMonthly, Category: types.BillCategoryOther,
		IsActive: true, CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(b).Error)
	return b.ID
}

func TestMainKeyword(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Chase Credit Card", "chase"},
		{"Chase Ink Business Cash Visa", "chase"},
		{"NETFLIX", "netflix"},
		{"Credit Card", "credit card"},
		{"  Electric Company  ", "electric"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mainKeyword(tt.name), tt.name)
	}
}

func TestCleanupKeepsOldestOfEachGroup(t *testing.T) {
	svc, db := newTestService(t)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	oldest := seedBill(t, db, "u1", "Chase Credit Card", 250.00, 15, base)
	dup := seedBill(t, db, "u1", "Chase Ink Business Cash Visa", 250.00, 15, base.Add(time.Hour))
	other := seedBill(t, db, "u1", "Netflix", 15.99, 3, base)

	res, err := svc.CleanupDuplicates(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.ElementsMatch(t, []string{oldest, other}, res.Kept)

	var kept models.Bill
	require.NoError(t, db.First(&kept, "id = ?", oldest).Error)
	assert.True(t, kept.IsActive)

	var removed models.Bill
	require.NoError(t, db.First(&removed, "id = ?", dup).Error)
	assert.False(t, removed.IsActive, "duplicate is deactivated, not deleted")
}

func TestCleanupExactAmountAndDueDay(t *testing.T) {
	svc, db := newTestService(t)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	seedBill(t, db, "u1", "Chase Card", 250.00, 15, base)
	seedBill(t, db, "u1", "Chase Card", 250.25, 15, base.Add(time.Hour))
	seedBill(t, db, "u1", "Chase Card", 250.00, 16, base.Add(2*time.Hour))

	res, err := svc.CleanupDuplicates(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed, "sweep requires exact amount and due day")
}

func TestCleanupScopedToOwner(t *testing.T) {
	svc, db := newTestService(t)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	seedBill(t, db, "u1", "Netflix", 15.99, 3, base)
	otherOwner := seedBill(t, db, "u2", "Netflix", 15.99, 3, base.Add(time.Hour))

	res, err := svc.CleanupDuplicates(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)

	var b models.Bill
	require.NoError(t, db.First(&b, "id = ?", otherOwner).Error)
	assert.True(t, b.IsActive)
}

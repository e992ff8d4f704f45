package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/extractor"
	"github.com/billhound/billhound/internal/app/service/mailscan"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/tool"
	"github.com/billhound/billhound/pkg/types"
)

type stubFetcher struct {
	candidates []mailscan.CandidateEmail
	err        error
	gotAfter   time.Time
}

func (f *stubFetcher) FetchCandidates(_ context.Context, _ types.GoogleCredentials, after time.Time) ([]mailscan.CandidateEmail, error) {
	f.gotAfter = after
	return f.candidates, f.err
}

type stubExtractor struct {
	results map[string]extractor.Result
}

func (e *stubExtractor) ExtractBatch(_ context.Context, cands []extractor.Candidate, _ bool) map[string]extractor.Result {
	out := make(map[string]extractor.Result, len(cands))
	for _, c := range cands {
		out[c.ID] = e.results[c.ID]
	}
	return out
}

type stubRefresher struct {
	calls int
}

func (r *stubRefresher) RefreshAccessToken(_ context.Context, _ string) (string, time.Time, error) {
	r.calls++
	return "refreshed-token", time.Now().Add(time.Hour), nil
}

type syncFixture struct {
	svc       *Service
	db        *gorm.DB
	fetcher   *stubFetcher
	extractor *stubExtractor
	refresher *stubRefresher
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Bill{},
		&models.Payment{},
		&models.SyncedEmail{},
		&models.RejectedBill{},
		&models.UserPreferences{},
	))

	log := zap.NewNop().Sugar()
	p := prefs.NewService(db, log)
	bills := billsvc.NewService(db, p, log)
	f := &stubFetcher{}
	e := &stubExtractor{results: map[string]extractor.Result{}}
	r := &stubRefresher{}
	return &syncFixture{
		svc:       NewService(db, p, bills, f, e, r, log),
		db:        db,
		fetcher:   f,
		extractor: e,
		refresher: r,
	}
}

func (fx *syncFixture) connectUser(t *testing.T, ownerID string, tier types.SubscriptionTier) {
	t.Helper()
	expiry := time.Now().Add(time.Hour)
	row := &models.UserPreferences{
		ID:                 tool.GenerateUUIDV7(),
		OwnerID:            ownerID,
		GmailSyncEnabled:   true,
		GoogleAccessToken:  "access",
		GoogleRefreshToken: "refresh",
		GoogleTokenExpiry:  &expiry,
		SubscriptionTier:   tier,
	}
	if tier == types.SubscriptionTierFree {
		limit := types.FreeTierBillsLimit
		row.BillsLimit = &limit
	}
	require.NoError(t, fx.db.Create(row).Error)
}

func TestSyncGmailCreatesBill(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierPro)

	fx.fetcher.candidates = []mailscan.CandidateEmail{mailCandidate("m1", "Electric bill", "Utility <b@u.example>")}
	fx.extractor.results["m1"] = accepted("Electric", 84.20, 12, 90)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.EmailsFetched)
	assert.Equal(t, 1, report.NewEmails)
	assert.Equal(t, 1, report.BillsCreated)
	assert.Equal(t, 0, report.Rejected)

	var bill models.Bill
	require.NoError(t, fx.db.Where("owner_id = ?", "u1").First(&bill).Error)
	assert.Equal(t, "Electric", bill.Name)
	assert.Equal(t, 84.20, bill.Amount)
	assert.Equal(t, 12, bill.DueDay)
	require.NotNil(t, bill.Notes)
	assert.Contains(t, *bill.Notes, "Imported from email: Electric bill")

	var synced models.SyncedEmail
	require.NoError(t, fx.db.Where("owner_id = ? AND email_id = ?", "u1", "m1").First(&synced).Error)
	require.NotNil(t, synced.BillID)
	assert.Equal(t, bill.ID, *synced.BillID)
}

func TestSyncGmailIdempotent(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierPro)

	fx.fetcher.candidates = []mailscan.CandidateEmail{mailCandidate("m1", "Electric bill", "U <b@u.example>")}
	fx.extractor.results["m1"] = accepted("Electric", 84.20, 12, 90)

	_, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.EmailsFetched)
	assert.Equal(t, 0, report.NewEmails, "already-synced email must be skipped")
	assert.Equal(t, 0, report.BillsCreated)

	var count int64
	require.NoError(t, fx.db.Model(&models.Bill{}).Where("owner_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSyncGmailRejectionRecorded(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierPro)

	fx.fetcher.candidates = []mailscan.CandidateEmail{mailCandidate("m1", "Maybe a bill", "x <x@y.example>")}
	fx.extractor.results["m1"] = accepted("Vague", 10, 1, 55)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 0, report.BillsCreated)

	var rejected models.RejectedBill
	require.NoError(t, fx.db.Where("owner_id = ?", "u1").First(&rejected).Error)
	assert.Equal(t, "m1", rejected.EmailID)
	assert.Equal(t, 55, rejected.Confidence)
	assert.Contains(t, rejected.RejectionReason, "confidence 55")

	// rejected email is still marked processed, with no bill attached
	var synced models.SyncedEmail
	require.NoError(t, fx.db.Where("owner_id = ? AND email_id = ?", "u1", "m1").First(&synced).Error)
	assert.Nil(t, synced.BillID)
}

func TestSyncGmailAttachesDuplicateToExistingBill(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierPro)

	existing := &models.Bill{
		ID: tool.GenerateUUIDV7(), OwnerID: "u1", Name: "Netflix",
		Amount: 15.99, DueDay: 3, Recurrence: types.RecurrenceMonthly,
		Category: types.BillCategoryStreaming, IsActive: true,
	}
	require.NoError(t, fx.db.Create(existing).Error)

	fx.fetcher.candidates = []mailscan.CandidateEmail{mailCandidate("m1", "Netflix payment", "Netflix <n@n.example>")}
	fx.extractor.results["m1"] = accepted("netflix", 16.19, 3, 92)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.BillsCreated)
	assert.Equal(t, 1, report.BillsMatched)

	var count int64
	require.NoError(t, fx.db.Model(&models.Bill{}).Where("owner_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var synced models.SyncedEmail
	require.NoError(t, fx.db.Where("email_id = ?", "m1").First(&synced).Error)
	require.NotNil(t, synced.BillID)
	assert.Equal(t, existing.ID, *synced.BillID)
}

func TestSyncGmailWithinBatchDedupe(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierPro)

	fx.fetcher.candidates = []mailscan.CandidateEmail{
		mailCandidate("m1", "Electric bill", "U <b@u.example>"),
		mailCandidate("m2", "Electric bill reminder", "U <b@u.example>"),
	}
	fx.extractor.results["m1"] = accepted("Electric", 84.20, 12, 90)
	fx.extractor.results["m2"] = accepted("Electric", 84.20, 12, 88)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.BillsCreated)
	assert.Equal(t, 1, report.BillsMatched)
}

func TestSyncGmailQuotaLeavesEmailForRetry(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierFree)

	for i := 0; i < types.FreeTierBillsLimit; i++ {
		require.NoError(t, fx.db.Create(&models.Bill{
			ID: tool.GenerateUUIDV7(), OwnerID: "u1", Name: fmt.Sprintf("bill %d", i),
			Amount: 10, DueDay: 1, Recurrence: types.RecurrenceMonthly,
			Category: types.BillCategoryOther, IsActive: true,
		}).Error)
	}

	fx.fetcher.candidates = []mailscan.CandidateEmail{mailCandidate("m1", "New bill", "x <x@y.example>")}
	fx.extractor.results["m1"] = accepted("Water", 30, 5, 90)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.QuotaSkipped)
	assert.Equal(t, 0, report.BillsCreated)

	// no marker row, so the email is retried after an upgrade
	var count int64
	require.NoError(t, fx.db.Model(&models.SyncedEmail{}).Where("owner_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSyncGmailRequiresConnection(t *testing.T) {
	fx := newSyncFixture(t)

	_, err := fx.svc.SyncGmail(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrGoogleNotConnected))

	// connected but sync toggled off
	expiry := time.Now().Add(time.Hour)
	require.NoError(t, fx.db.Create(&models.UserPreferences{
		ID: tool.GenerateUUIDV7(), OwnerID: "u2",
		GoogleAccessToken: "access", GoogleRefreshToken: "refresh", GoogleTokenExpiry: &expiry,
		GmailSyncEnabled: false, SubscriptionTier: types.SubscriptionTierFree,
	}).Error)
	_, err = fx.svc.SyncGmail(context.Background(), "u2")
	assert.True(t, errors.Is(err, ErrSyncDisabled))
}

func TestSyncGmailRefreshesExpiredToken(t *testing.T) {
	fx := newSyncFixture(t)
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, fx.db.Create(&models.UserPreferences{
		ID: tool.GenerateUUIDV7(), OwnerID: "u1",
		GoogleAccessToken: "stale", GoogleRefreshToken: "refresh", GoogleTokenExpiry: &expired,
		GmailSyncEnabled: true, SubscriptionTier: types.SubscriptionTierPro,
	}).Error)

	_, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, fx.refresher.calls)

	var p models.UserPreferences
	require.NoError(t, fx.db.Where("owner_id = ?", "u1").First(&p).Error)
	assert.Equal(t, "refreshed-token", p.GoogleAccessToken)
	assert.Equal(t, "refresh", p.GoogleRefreshToken, "refresh token must survive")
}

func TestSyncGmailTouchesWatermarkOnEmptyRun(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierFree)

	report, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.EmailsFetched)

	var p models.UserPreferences
	require.NoError(t, fx.db.Where("owner_id = ?", "u1").First(&p).Error)
	assert.NotNil(t, p.LastGmailSync)
}

func TestClearSyncHistory(t *testing.T) {
	fx := newSyncFixture(t)
	fx.connectUser(t, "u1", types.SubscriptionTierPro)

	fx.fetcher.candidates = []mailscan.CandidateEmail{mailCandidate("m1", "Electric bill", "U <b@u.example>")}
	fx.extractor.results["m1"] = accepted("Electric", 84.20, 12, 90)
	_, err := fx.svc.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)

	removed, err := fx.svc.ClearSyncHistory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var p models.UserPreferences
	require.NoError(t, fx.db.Where("owner_id = ?", "u1").First(&p).Error)
	assert.Nil(t, p.LastGmailSync)
}

func TestScanRejectedFieldAllowlist(t *testing.T) {
	fx := newSyncFixture(t)

	_, err := fx.svc.ScanRejected(context.Background(), "u1", &ScanRejectedRequest{
		Filters: []types.CommonFilter{{Field: "owner_id", Operator: types.CommonFilterOperatorEq, Values: []any{"someone-else"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not scannable")
}

func TestScanRejectedFiltersAndPaginates(t *testing.T) {
	fx := newSyncFixture(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, fx.db.Create(&models.RejectedBill{
			ID: tool.GenerateUUIDV7(), OwnerID: "u1", EmailID: fmt.Sprintf("m%d", i),
			Parsed: datatypes.JSON("{}"), Confidence: 40 + i, RejectionReason: "low confidence",
		}).Error)
	}
	require.NoError(t, fx.db.Create(&models.RejectedBill{
		ID: tool.GenerateUUIDV7(), OwnerID: "u2", EmailID: "other",
		Parsed: []byte("{}"), Confidence: 10, RejectionReason: "not recognized as a bill",
	}).Error)

	res, err := fx.svc.ScanRejected(context.Background(), "u1", &ScanRejectedRequest{
		Filters:  []types.CommonFilter{{Field: "confidence", Operator: types.CommonFilterOperatorGte, Values: []any{41}}},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Items, 2)
	for _, item := range res.Items {
		assert.Equal(t, "u1", item.OwnerID)
	}
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/extractor"
	"github.com/billhound/billhound/internal/app/service/mailscan"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/logctx"
	"github.com/billhound/billhound/pkg/types"
)

var (
	ErrGoogleNotConnected = errors.New("google account not connected")
	ErrSyncDisabled       = errors.New("gmail sync is disabled")
)

// CandidateFetcher is the mail-scanning dependency (mailscan.Service in
// production).
type CandidateFetcher interface {
	FetchCandidates(ctx context.Context, creds types.GoogleCredentials, after time.Time) ([]mailscan.CandidateEmail, error)
}

// Extractor is the bill-extraction dependency (extractor.Service in
// production).
type Extractor interface {
	ExtractBatch(ctx context.Context, cands []extractor.Candidate, pro bool) map[string]extractor.Result
}

// TokenRefresher exchanges a refresh token for fresh access credentials.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error)
}

// Service runs the sync pipeline: fetch candidates, extract, reconcile
// against existing and previously-seen records, and record every processed
// email so re-sync is idempotent.
type Service struct {
	db        *gorm.DB
	prefs     *prefs.Service
	bills     *billsvc.Service
	fetcher   CandidateFetcher
	extractor Extractor
	refresher TokenRefresher
	log       *zap.SugaredLogger
}

func NewService(db *gorm.DB, p *prefs.Service, bills *billsvc.Service, fetcher CandidateFetcher, ex Extractor, refresher TokenRefresher, log *zap.SugaredLogger) *Service {
	return &Service{db: db, prefs: p, bills: bills, fetcher: fetcher, extractor: ex, refresher: refresher, log: log}
}

// SyncReport summarizes one sync invocation.
type SyncReport struct {
	EmailsFetched int `json:"emails_fetched"`
	NewEmails     int `json:"new_emails"`
	BillsCreated  int `json:"bills_created"`
	BillsMatched  int `json:"bills_matched"`
	Rejected      int `json:"rejected"`
	QuotaSkipped  int `json:"quota_skipped"`
}

// SyncGmail runs one full sync for the owner. Individual candidate failures
// never abort the batch; last_gmail_sync is updated even on a zero-result run.
func (s *Service) SyncGmail(ctx context.Context, ownerID string) (*SyncReport, error) {
	log := logctx.FromCtx(ctx, s.log)

	p, err := s.prefs.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.GoogleConnected() {
		return nil, ErrGoogleNotConnected
	}
	if !p.GmailSyncEnabled {
		return nil, ErrSyncDisabled
	}

	now := time.Now()
	creds, err := s.freshCredentials(ctx, ownerID, p, now)
	if err != nil {
		return nil, err
	}

	after := fetchAfter(p.LastGmailSync, now)
	candidates, err := s.fetcher.FetchCandidates(ctx, creds, after)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	report := &SyncReport{EmailsFetched: len(candidates)}

	fresh, err := s.filterSeen(ctx, ownerID, candidates)
	if err != nil {
		return nil, err
	}
	report.NewEmails = len(fresh)

	if len(fresh) > 0 {
		inputs := make([]extractor.Candidate, 0, len(fresh))
		for _, c := range fresh {
			inputs = append(inputs, extractor.Candidate{ID: c.ID, Subject: c.Subject, From: c.From, Body: c.Body})
		}
		results := s.extractor.ExtractBatch(ctx, inputs, p.IsPro())

		existing, err := s.bills.ListActiveBills(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		for _, cand := range fresh {
			res, ok := results[cand.ID]
			existing = s.reconcile(ctx, ownerID, cand, res, ok, existing, report)
		}
	}

	if err := s.prefs.TouchLastSync(ctx, ownerID, now); err != nil {
		log.Errorw("failed to record sync time", "error", err.Error())
	}

	log.Infow("gmail sync completed",
		"owner_id", ownerID,
		"fetched", report.EmailsFetched,
		"new", report.NewEmails,
		"created", report.BillsCreated,
		"matched", report.BillsMatched,
		"rejected", report.Rejected,
		"quota_skipped", report.QuotaSkipped,
	)
	return report, nil
}

// freshCredentials refreshes the access token when expired and persists the
// new token material.
func (s *Service) freshCredentials(ctx context.Context, ownerID string, p *models.UserPreferences, now time.Time) (types.GoogleCredentials, error) {
	creds := types.GoogleCredentials{
		AccessToken:  p.GoogleAccessToken,
		RefreshToken: p.GoogleRefreshToken,
	}
	if p.GoogleTokenExpiry != nil {
		creds.Expiry = *p.GoogleTokenExpiry
	}

	if creds.AccessToken != "" && (p.GoogleTokenExpiry == nil || p.GoogleTokenExpiry.After(now.Add(time.Minute))) {
		return creds, nil
	}

	access, expiry, err := s.refresher.RefreshAccessToken(ctx, creds.RefreshToken)
	if err != nil {
		return creds, fmt.Errorf("failed to refresh google credentials: %w", err)
	}
	if err := s.prefs.SaveGoogleTokens(ctx, ownerID, access, "", expiry); err != nil {
		return creds, err
	}
	creds.AccessToken = access
	creds.Expiry = expiry
	return creds, nil
}

// filterSeen drops candidates that already have a SyncedEmail row.
func (s *Service) filterSeen(ctx context.Context, ownerID string, candidates []mailscan.CandidateEmail) ([]mailscan.CandidateEmail, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	var seen []string
	err := s.db.WithContext(ctx).
		Model(&models.SyncedEmail{}).
		Where("owner_id = ? AND email_id IN ?", ownerID, ids).
		Pluck("email_id", &seen).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load synced emails: %w", err)
	}

	seenSet := make(map[string]bool, len(seen))
	for _, id := range seen {
		seenSet[id] = true
	}

	fresh := make([]mailscan.CandidateEmail, 0, len(candidates))
	for _, c := range candidates {
		if !seenSet[c.ID] {
			fresh = append(fresh, c)
		}
	}
	return fresh, nil
}

// ClearSyncHistory removes the owner's idempotence markers and resets the
// sync watermark so the next sync re-scans the full lookback window.
func (s *Service) ClearSyncHistory(ctx context.Context, ownerID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.SyncedEmail{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear sync history: %w", res.Error)
	}

	err := s.db.WithContext(ctx).
		Model(&models.UserPreferences{}).
		Where("owner_id = ?", ownerID).
		Update("last_gmail_sync", nil).Error
	if err != nil {
		return 0, fmt.Errorf("failed to reset sync watermark: %w", err)
	}
	return res.RowsAffected, nil
}

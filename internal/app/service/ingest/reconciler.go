package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/extractor"
	"github.com/billhound/billhound/internal/app/service/mailscan"
	"github.com/billhound/billhound/internal/models"
	"github.com/billhound/billhound/pkg/metrics"
	"github.com/billhound/billhound/pkg/tool"
	"github.com/billhound/billhound/pkg/types"
)

const (
	// minConfidence is the acceptance floor for extracted candidates.
	minConfidence = 70
	// amountTolerance is the fuzzy-match band for duplicate detection.
	amountTolerance = 0.50
	// defaultDueDay stands in when the extractor found no due day.
	defaultDueDay = 1
)

// rejection pairs a human-readable audit reason with a coarse metric label.
type rejection struct {
	reason string
	label  string
}

// evaluate applies the acceptance policy to one extraction result. The checks
// run in fixed priority order so the recorded reason is deterministic.
func evaluate(res extractor.Result, ok bool) *rejection {
	if !ok {
		return &rejection{reason: "extraction produced no result", label: "extraction_failed"}
	}
	if !res.IsBill {
		return &rejection{reason: "not recognized as a bill", label: "not_a_bill"}
	}
	if res.Confidence < minConfidence {
		return &rejection{
			reason: fmt.Sprintf("confidence %d below threshold %d", res.Confidence, minConfidence),
			label:  "low_confidence",
		}
	}
	if res.Name == nil || strings.TrimSpace(*res.Name) == "" {
		return &rejection{reason: "missing payee name", label: "missing_name"}
	}
	if res.Amount == nil || *res.Amount <= 0 {
		return &rejection{reason: "missing or non-positive amount", label: "invalid_amount"}
	}
	return nil
}

// matchExisting finds an active bill the candidate duplicates: same name
// ignoring case, amount within the tolerance band, same due day.
func matchExisting(bills []*models.Bill, name string, amount float64, dueDay int) *models.Bill {
	for _, b := range bills {
		if !strings.EqualFold(b.Name, name) {
			continue
		}
		diff := b.Amount - amount
		if diff < -amountTolerance || diff > amountTolerance {
			continue
		}
		if b.DueDay != dueDay {
			continue
		}
		return b
	}
	return nil
}

// reconcile persists the outcome for one candidate and returns the active-bill
// list, extended when a bill was created so later candidates in the same batch
// can match it. Per-candidate failures are logged and swallowed; only the
// quota path intentionally skips the SyncedEmail marker so the email retries
// after an upgrade.
func (s *Service) reconcile(ctx context.Context, ownerID string, cand mailscan.CandidateEmail, res extractor.Result, ok bool, existing []*models.Bill, report *SyncReport) []*models.Bill {
	if rej := evaluate(res, ok); rej != nil {
		s.recordRejection(ctx, ownerID, cand, res, rej)
		report.Rejected++
		return existing
	}

	name := strings.TrimSpace(*res.Name)
	amount := *res.Amount
	dueDay := defaultDueDay
	if res.DueDay != nil {
		dueDay = *res.DueDay
	}

	var billID string
	if match := matchExisting(existing, name, amount, dueDay); match != nil {
		billID = match.ID
		metrics.BillsDeduplicated.Inc()
		report.BillsMatched++
	} else {
		bill, err := s.bills.CreateBill(ctx, ownerID, billsvc.CreateBillInput{
			Name:       name,
			Amount:     amount,
			DueDay:     dueDay,
			Recurrence: types.RecurrenceMonthly,
			Category:   res.Category,
			Notes:      importNotes(cand, res),
		})
		if err != nil {
			var qe *billsvc.QuotaError
			if errors.As(err, &qe) {
				s.log.Infow("bill skipped by quota, email left for retry",
					"owner_id", ownerID, "email_id", cand.ID,
					"count", qe.Count, "limit", qe.Limit)
				report.QuotaSkipped++
				return existing
			}
			s.log.Errorw("failed to create bill from email",
				"owner_id", ownerID, "email_id", cand.ID, "error", err.Error())
			return existing
		}
		billID = bill.ID
		existing = append(existing, bill)
		metrics.BillsCreated.WithLabelValues("gmail_sync").Inc()
		report.BillsCreated++
	}

	s.markSynced(ctx, ownerID, cand, &billID)
	return existing
}

// recordRejection writes the audit row plus the idempotence marker; a rejected
// email is processed and never retried.
func (s *Service) recordRejection(ctx context.Context, ownerID string, cand mailscan.CandidateEmail, res extractor.Result, rej *rejection) {
	parsed, err := json.Marshal(res)
	if err != nil {
		parsed = []byte("{}")
	}
	row := &models.RejectedBill{
		ID:              tool.GenerateUUIDV7(),
		OwnerID:         ownerID,
		EmailID:         cand.ID,
		Parsed:          datatypes.JSON(parsed),
		Confidence:      res.Confidence,
		RejectionReason: rej.reason,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		s.log.Errorw("failed to record rejection",
			"owner_id", ownerID, "email_id", cand.ID, "error", err.Error())
	}
	metrics.EmailsRejected.WithLabelValues(rej.label).Inc()
	s.markSynced(ctx, ownerID, cand, nil)
}

func (s *Service) markSynced(ctx context.Context, ownerID string, cand mailscan.CandidateEmail, billID *string) {
	row := &models.SyncedEmail{
		ID:          tool.GenerateUUIDV7(),
		OwnerID:     ownerID,
		EmailID:     cand.ID,
		Subject:     cand.Subject,
		FromAddress: cand.From,
		BillID:      billID,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		// Unique violation here means a concurrent sync won the race, which is
		// an acceptable outcome, not a pipeline failure.
		s.log.Warnw("failed to mark email synced",
			"owner_id", ownerID, "email_id", cand.ID, "error", err.Error())
	}
}

// importNotes builds the provenance note attached to bills created from email.
func importNotes(cand mailscan.CandidateEmail, res extractor.Result) *string {
	lines := []string{fmt.Sprintf("Imported from email: %s", cand.Subject)}
	if res.AmountEvidence != "" {
		lines = append(lines, "Amount evidence: "+res.AmountEvidence)
	}
	if res.DueDateEvidence != "" {
		lines = append(lines, "Due date evidence: "+res.DueDateEvidence)
	}
	notes := strings.Join(lines, "\n")
	return &notes
}

package mailscan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"

	"github.com/billhound/billhound/pkg/metrics"
	"github.com/billhound/billhound/pkg/types"
)

// billKeywords is the fixed search vocabulary for bill-like mail. Multi-word
// phrases are quoted in the provider query.
var billKeywords = []string{
	"bill", "invoice", "payment due", "statement", "amount due", "pay by",
	"due date", "monthly payment", "subscription", "utility bill", "auto-pay",
}

// pageSize caps one sync's candidate set.
const pageSize = 50

// MessageSource is the mail-provider dependency: keyword/date search plus
// per-id full fetch. The Gmail platform client implements it.
type MessageSource interface {
	Search(ctx context.Context, creds types.GoogleCredentials, query string, max int64) ([]string, error)
	Fetch(ctx context.Context, creds types.GoogleCredentials, id string) (*gmail.Message, error)
}

// CandidateEmail is a fetched message reduced to the fields the extractor
// needs, with the body already decoded to plain text.
type CandidateEmail struct {
	ID      string
	Subject string
	From    string
	Body    string
}

type Service struct {
	src MessageSource
	log *zap.SugaredLogger
}

func NewService(src MessageSource, log *zap.SugaredLogger) *Service {
	return &Service{src: src, log: log}
}

// FetchCandidates returns decoded candidate messages received after the given
// time. Search failures propagate (the caller handles credential refresh); a
// single message fetch failure only skips that message.
func (s *Service) FetchCandidates(ctx context.Context, creds types.GoogleCredentials, after time.Time) ([]CandidateEmail, error) {
	ids, err := s.src.Search(ctx, creds, buildQuery(after), pageSize)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}

	candidates := make([]CandidateEmail, 0, len(ids))
	for _, id := range ids {
		msg, err := s.src.Fetch(ctx, creds, id)
		if err != nil {
			s.log.Warnw("failed to fetch message, skipping", "email_id", id, "error", err.Error())
			continue
		}
		candidates = append(candidates, DecodeMessage(msg))
		metrics.EmailsScanned.Inc()
	}
	return candidates, nil
}

func buildQuery(after time.Time) string {
	terms := make([]string, 0, len(billKeywords))
	for _, kw := range billKeywords {
		if strings.Contains(kw, " ") {
			terms = append(terms, `"`+kw+`"`)
		} else {
			terms = append(terms, kw)
		}
	}
	return fmt.Sprintf("after:%d (%s)", after.Unix(), strings.Join(terms, " OR "))
}

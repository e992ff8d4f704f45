package extractor

import (
	"context"

	"go.uber.org/zap"

	"github.com/billhound/billhound/pkg/types"
)

// Completer is the single-turn completion dependency. The production
// implementation is the OpenAI platform client; tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Candidate is one email handed to the extractor.
type Candidate struct {
	ID      string
	Subject string
	From    string
	Body    string
}

// Result is the structured extraction outcome. Every field is already
// validated and coerced; callers never see malformed upstream data.
type Result struct {
	IsBill          bool               `json:"is_bill"`
	Name            *string            `json:"name"`
	Amount          *float64           `json:"amount"`
	DueDay          *int               `json:"due_day"`
	Category        types.BillCategory `json:"category"`
	Confidence      int                `json:"confidence"`
	AmountEvidence  string             `json:"amount_evidence"`
	DueDateEvidence string             `json:"due_date_evidence"`
}

// notABill is the deterministic fallback for every failure mode.
func notABill() Result {
	return Result{Category: types.BillCategoryOther}
}

type Service struct {
	llm Completer
	log *zap.SugaredLogger
}

func NewService(llm Completer, log *zap.SugaredLogger) *Service {
	return &Service{llm: llm, log: log}
}

// Extract analyzes one candidate. Pro users get the full LLM extraction;
// free-tier users get the keyword fallback. Extraction failure never
// propagates as an error, it degrades to a not-a-bill result.
func (s *Service) Extract(ctx context.Context, cand Candidate, pro bool) Result {
	if !pro {
		return extractKeyword(cand)
	}

	text, err := s.llm.Complete(ctx, buildPrompt(cand))
	if err != nil {
		s.log.Warnw("extraction completion failed", "email_id", cand.ID, "error", err.Error())
		return notABill()
	}
	return parseResult(text)
}

package extractor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCompleter struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func TestExtractProUsesCompletion(t *testing.T) {
	stub := &stubCompleter{reply: `{"is_bill": true, "name": "Netflix", "amount": 15.99, "confidence": 95}`}
	svc := NewService(stub, zap.NewNop().Sugar())

	res := svc.Extract(context.Background(), Candidate{ID: "m1", Subject: "Your invoice"}, true)
	assert.Equal(t, 1, stub.calls)
	require.True(t, res.IsBill)
	require.NotNil(t, res.Name)
	assert.Equal(t, "Netflix", *res.Name)
}

func TestExtractFreeTierSkipsCompletion(t *testing.T) {
	stub := &stubCompleter{reply: `{"is_bill": true, "confidence": 99}`}
	svc := NewService(stub, zap.NewNop().Sugar())

	res := svc.Extract(context.Background(), Candidate{
		ID:      "m1",
		Subject: "Your invoice",
		From:    "Acme <billing@acme.example>",
		Body:    "amount due $12.00",
	}, false)

	assert.Equal(t, 0, stub.calls, "free tier must not call the model")
	assert.True(t, res.IsBill)
	assert.LessOrEqual(t, res.Confidence, 75)
}

func TestExtractCompletionFailureDegrades(t *testing.T) {
	stub := &stubCompleter{err: errors.New("rate limited")}
	svc := NewService(stub, zap.NewNop().Sugar())

	res := svc.Extract(context.Background(), Candidate{ID: "m1", Subject: "Your invoice"}, true)
	assert.False(t, res.IsBill)
	assert.Equal(t, 0, res.Confidence)
}

func TestExtractBatchOneResultPerInput(t *testing.T) {
	stub := &stubCompleter{reply: `{"is_bill": true, "name": "X", "amount": 1.00, "confidence": 80}`}
	svc := NewService(stub, zap.NewNop().Sugar())

	cands := []Candidate{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	results := svc.ExtractBatch(context.Background(), cands, true)

	require.Len(t, results, 3)
	for _, c := range cands {
		_, ok := results[c.ID]
		assert.True(t, ok, "missing result for %s", c.ID)
	}
	assert.Equal(t, 3, stub.calls)
}

func TestExtractBatchCanceledContextFillsDefaults(t *testing.T) {
	stub := &stubCompleter{reply: `{"is_bill": true, "confidence": 80}`}
	svc := NewService(stub, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Seven candidates force a second group; the canceled context must still
	// yield a result for every id.
	cands := make([]Candidate, 7)
	for i := range cands {
		cands[i] = Candidate{ID: string(rune('a' + i))}
	}
	results := svc.ExtractBatch(ctx, cands, true)
	assert.Len(t, results, 7)
}

package extractor

import (
	"context"
	"sync"
	"time"
)

const (
	// batchGroupSize bounds concurrent completion calls to respect provider
	// rate limits; batchGroupPause separates the groups.
	batchGroupSize  = 5
	batchGroupPause = time.Second
)

// ExtractBatch processes candidates in bounded-concurrency groups and always
// returns one result per input id, even on partial failure.
func (s *Service) ExtractBatch(ctx context.Context, cands []Candidate, pro bool) map[string]Result {
	results := make(map[string]Result, len(cands))
	var mu sync.Mutex

	for start := 0; start < len(cands); start += batchGroupSize {
		end := start + batchGroupSize
		if end > len(cands) {
			end = len(cands)
		}

		var wg sync.WaitGroup
		for _, cand := range cands[start:end] {
			wg.Add(1)
			go func(c Candidate) {
				defer wg.Done()
				res := s.Extract(ctx, c, pro)
				mu.Lock()
				results[c.ID] = res
				mu.Unlock()
			}(cand)
		}
		wg.Wait()

		if end < len(cands) {
			select {
			case <-ctx.Done():
				// Fill remaining ids with the safe default so the contract of
				// one result per input still holds.
				for _, c := range cands[end:] {
					results[c.ID] = notABill()
				}
				return results
			case <-time.After(batchGroupPause):
			}
		}
	}
	return results
}

package ingest

import "time"

const (
	// lookbackDays bounds how far back a first (or re-run) sync reaches.
	lookbackDays = 365
	// retryWindow treats a sync shortly after the previous one as a
	// just-fixed retry and re-scans the full lookback.
	retryWindow = time.Hour
)

// fetchAfter picks the search cutoff: the last successful sync time, except
// when there is none or it is recent enough to look like a retry, in which
// case the full lookback window applies. The cutoff never reaches further
// back than the lookback bound.
func fetchAfter(lastSync *time.Time, now time.Time) time.Time {
	lookback := now.AddDate(0, 0, -lookbackDays)
	if lastSync == nil || now.Sub(*lastSync) < retryWindow {
		return lookback
	}
	if lastSync.After(lookback) {
		return *lastSync
	}
	return lookback
}

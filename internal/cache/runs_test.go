package cache

import "testing"

// A crashed worker must not hold its message mark for the full dedupe
// window: the initial claim has to expire well before the processed stamp
// would, so the redelivered message becomes runnable again.
func TestInFlightClaimExpiresBeforeDedupeWindow(t *testing.T) {
	if inFlightTTL >= processedTTL {
		t.Fatalf("in-flight TTL %v must be shorter than processed TTL %v", inFlightTTL, processedTTL)
	}
	if inFlightTTL >= runTokenTTL {
		t.Errorf("in-flight TTL %v should be shorter than the run token TTL %v", inFlightTTL, runTokenTTL)
	}
}

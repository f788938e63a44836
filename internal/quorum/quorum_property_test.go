package quorum

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

// TestFanout_Property_SuccessIffAcksGEQRequired runs randomized rounds and
// checks the quorum gate from every one of them: success exactly when the
// number of acking followers reaches the threshold, and the exact achieved
// count reported on failure.
func TestFanout_Property_SuccessIffAcksGEQRequired(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := NewPool(16, time.Second)

	for round := 0; round < 100; round++ {
		total := 1 + rng.Intn(9)
		required := 1 + rng.Intn(total)

		acking := make(map[string]bool, total)
		followers := make([]string, total)
		ackCount := 0
		for i := range followers {
			url := fmt.Sprintf("http://follower-%d", i)
			followers[i] = url
			if rng.Intn(2) == 0 {
				acking[url] = true
				ackCount++
			}
		}

		send := func(ctx context.Context, url string) (bool, error) {
			if acking[url] {
				return true, nil
			}
			return false, errors.New("simulated failure")
		}

		result := pool.Fanout(context.Background(), followers, required, send)

		wantSuccess := ackCount >= required
		if result.Success != wantSuccess {
			t.Fatalf("round %d: total=%d required=%d acking=%d: expected success=%v, got %v",
				round, total, required, ackCount, wantSuccess, result.Success)
		}
		if !result.Success && result.Acks != ackCount {
			t.Fatalf("round %d: expected reported acks=%d on failure, got %d",
				round, ackCount, result.Acks)
		}
		if result.Success && result.Acks != required {
			// Early exit stops counting exactly at the threshold.
			t.Fatalf("round %d: expected acks=%d at early exit, got %d",
				round, required, result.Acks)
		}
	}
}

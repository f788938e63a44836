package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AlexandraB-C/PR-LAB-4/internal/replication"
)

// HTTPTransport delivers replication records to followers over HTTP POST
// /replicate. An optional simulated network delay, sampled uniformly from
// [minDelay, maxDelay] per call, runs before each send to exercise the
// quorum path under realistic latency spread.
type HTTPTransport struct {
	client   *http.Client
	minDelay time.Duration
	maxDelay time.Duration
}

// NewHTTPTransport creates a transport with the given per-call timeout and
// simulated delay bounds. Zero bounds disable the delay.
func NewHTTPTransport(timeout, minDelay, maxDelay time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client:   &http.Client{Timeout: timeout},
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Send posts one record to one follower. A non-200 response or transport
// error is returned as a failure for that follower only.
func (t *HTTPTransport) Send(ctx context.Context, followerURL string, rec replication.Record) error {
	if delay := t.sampleDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, followerURL+"/replicate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create replicate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("replicate do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("replicate failed: %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func (t *HTTPTransport) sampleDelay() time.Duration {
	if t.maxDelay <= 0 {
		return 0
	}
	if t.maxDelay == t.minDelay {
		return t.minDelay
	}
	return t.minDelay + time.Duration(rand.Int63n(int64(t.maxDelay-t.minDelay)))
}

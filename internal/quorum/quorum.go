package quorum

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultPerCallTimeout is the default timeout for each follower call.
	DefaultPerCallTimeout = 10 * time.Second
	// DefaultMaxConcurrent bounds the fan-out worker pool when no explicit
	// bound is configured.
	DefaultMaxConcurrent = 10
)

// Result represents the outcome of one quorum fan-out round.
type Result struct {
	Success      bool
	Acks         int
	Required     int
	Followers    int
	ErrorMessage string
}

// SendFunc performs one replication call to a single follower.
// Returns true if the follower acknowledged the record.
type SendFunc func(ctx context.Context, followerURL string) (bool, error)

// Pool fans records out to followers with bounded concurrency. One Pool is
// shared across all writes on a node, so the total number of in-flight
// replication calls never exceeds the configured bound even while
// stragglers from earlier rounds are still draining.
type Pool struct {
	sem     chan struct{}
	timeout time.Duration
}

// NewPool creates a fan-out pool. Non-positive arguments fall back to the
// package defaults.
func NewPool(maxConcurrent int, perCallTimeout time.Duration) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if perCallTimeout <= 0 {
		perCallTimeout = DefaultPerCallTimeout
	}
	return &Pool{
		sem:     make(chan struct{}, maxConcurrent),
		timeout: perCallTimeout,
	}
}

// Fanout dispatches send to every follower in parallel and collects
// acknowledgments as they arrive, earliest first. It returns success as
// soon as required acks are counted; calls still in flight at that point
// keep running on the pool and their late results are discarded. If every
// call completes without reaching the threshold, it returns failure with
// the achieved count.
//
// Each call carries its own timeout, detached from ctx: cancelling the
// caller abandons the wait but never aborts already-issued calls.
func (p *Pool) Fanout(ctx context.Context, followers []string, required int, send SendFunc) Result {
	if len(followers) == 0 {
		return Result{
			Required:     required,
			ErrorMessage: "no followers configured",
		}
	}

	if required <= 0 {
		required = (len(followers) / 2) + 1 // default: majority
	}

	if required > len(followers) {
		return Result{
			Required:     required,
			Followers:    len(followers),
			ErrorMessage: fmt.Sprintf("required quorum=%d exceeds follower count=%d", required, len(followers)),
		}
	}

	// Buffered to len(followers) so stragglers finishing after an early
	// return never block and the goroutines always exit.
	results := make(chan bool, len(followers))

	for _, followerURL := range followers {
		go func(url string) {
			p.sem <- struct{}{}
			defer func() { <-p.sem }()

			callCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
			defer cancel()

			ok, err := send(callCtx, url)
			results <- ok && err == nil
		}(followerURL)
	}

	acks := 0
	for completed := 0; completed < len(followers); completed++ {
		select {
		case ok := <-results:
			if !ok {
				continue
			}
			acks++
			if acks >= required {
				// Early exit: remaining calls continue in the background.
				return Result{
					Success:   true,
					Acks:      acks,
					Required:  required,
					Followers: len(followers),
				}
			}
		case <-ctx.Done():
			return Result{
				Acks:         acks,
				Required:     required,
				Followers:    len(followers),
				ErrorMessage: fmt.Sprintf("context cancelled: %v", ctx.Err()),
			}
		}
	}

	return Result{
		Acks:         acks,
		Required:     required,
		Followers:    len(followers),
		ErrorMessage: fmt.Sprintf("quorum not met: acks=%d required=%d followers=%d", acks, required, len(followers)),
	}
}

package replication

import (
	"context"
	"fmt"
)

// Record is the unit of replication sent from the leader to each follower.
// Value is nil exactly when Delete is true.
type Record struct {
	Key     string  `json:"key"`
	Value   *string `json:"value"`
	Version int64   `json:"version"`
	Delete  bool    `json:"delete"`
}

// Validate rejects malformed records before they reach the store.
func (r Record) Validate() error {
	if r.Key == "" {
		return fmt.Errorf("record key cannot be empty")
	}
	if r.Version <= 0 {
		return fmt.Errorf("record version must be positive, got %d", r.Version)
	}
	if r.Delete && r.Value != nil {
		return fmt.Errorf("delete record for key %q must not carry a value", r.Key)
	}
	if !r.Delete && r.Value == nil {
		return fmt.Errorf("write record for key %q must carry a value", r.Key)
	}
	return nil
}

// Transport delivers one record to one follower. Calls to different
// followers in the same fan-out round run concurrently and complete in any
// order; a non-nil error counts as a non-ack for that follower only.
type Transport interface {
	Send(ctx context.Context, followerURL string, rec Record) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, followerURL string, rec Record) error

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, followerURL string, rec Record) error {
	return f(ctx, followerURL, rec)
}

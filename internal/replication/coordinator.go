package replication

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/AlexandraB-C/PR-LAB-4/internal/clock"
	"github.com/AlexandraB-C/PR-LAB-4/internal/quorum"
	"github.com/AlexandraB-C/PR-LAB-4/internal/storage"
)

// ErrKeyNotFound is returned by Delete when the key does not exist on the
// leader. No version is assigned in that case.
var ErrKeyNotFound = errors.New("key does not exist")

// QuorumError reports a fan-out round that completed without reaching the
// required follower acknowledgment count. The leader's local mutation is
// not rolled back; only replicated durability is unconfirmed.
type QuorumError struct {
	Acks     int
	Required int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("replication quorum not reached (%d/%d)", e.Acks, e.Required)
}

// Outcome describes an accepted write or delete: the version the leader
// assigned and the follower acknowledgments collected before returning.
type Outcome struct {
	Version  int64
	Acks     int
	Required int
}

// Coordinator runs on the leader. It assigns versions, applies mutations
// locally, and fans each record out to all followers, gating success on
// the configured quorum of follower acks. The leader's own apply never
// counts toward the quorum.
type Coordinator struct {
	mu        sync.Mutex // serializes version assignment + local apply
	store     storage.Store
	counter   *clock.Counter
	transport Transport
	pool      *quorum.Pool
	followers []string
	required  int
}

// NewCoordinator creates a coordinator for the given follower set and
// quorum threshold.
func NewCoordinator(store storage.Store, counter *clock.Counter, transport Transport, pool *quorum.Pool, followers []string, required int) *Coordinator {
	return &Coordinator{
		store:     store,
		counter:   counter,
		transport: transport,
		pool:      pool,
		followers: followers,
		required:  required,
	}
}

// Write accepts a client write: assigns the next version, applies it
// locally, then replicates to followers. Returns a QuorumError if fewer
// than the required followers acknowledged.
func (c *Coordinator) Write(ctx context.Context, key, value string) (Outcome, error) {
	c.mu.Lock()
	version := c.counter.Next()
	c.store.Apply(key, value, version, false)
	c.mu.Unlock()

	rec := Record{Key: key, Value: &value, Version: version}
	return c.replicate(ctx, rec)
}

// Delete accepts a client delete. A missing key is rejected with
// ErrKeyNotFound before any version is assigned.
func (c *Coordinator) Delete(ctx context.Context, key string) (Outcome, error) {
	c.mu.Lock()
	if _, ok := c.store.Get(key); !ok {
		c.mu.Unlock()
		return Outcome{}, ErrKeyNotFound
	}
	version := c.counter.Next()
	c.store.Apply(key, "", version, true)
	c.mu.Unlock()

	rec := Record{Key: key, Version: version, Delete: true}
	return c.replicate(ctx, rec)
}

// replicate fans the record out to every follower. The coordinator lock is
// not held here: a slow follower must never stall local store operations.
func (c *Coordinator) replicate(ctx context.Context, rec Record) (Outcome, error) {
	send := func(ctx context.Context, followerURL string) (bool, error) {
		if err := c.transport.Send(ctx, followerURL, rec); err != nil {
			log.Printf("[leader] replication of key=%s version=%d to %s failed: %v",
				rec.Key, rec.Version, followerURL, err)
			return false, err
		}
		return true, nil
	}

	result := c.pool.Fanout(ctx, c.followers, c.required, send)
	outcome := Outcome{
		Version:  rec.Version,
		Acks:     result.Acks,
		Required: result.Required,
	}
	if !result.Success {
		return outcome, &QuorumError{Acks: result.Acks, Required: result.Required}
	}
	return outcome, nil
}

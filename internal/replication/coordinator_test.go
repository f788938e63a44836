package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AlexandraB-C/PR-LAB-4/internal/clock"
	"github.com/AlexandraB-C/PR-LAB-4/internal/quorum"
	"github.com/AlexandraB-C/PR-LAB-4/internal/storage"
)

func followerURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://follower-%d", i)
	}
	return urls
}

func newTestCoordinator(store storage.Store, transport Transport, followers []string, required int) *Coordinator {
	pool := quorum.NewPool(10, 200*time.Millisecond)
	return NewCoordinator(store, clock.NewCounter(), transport, pool, followers, required)
}

func TestCoordinator_ScenarioA_QuorumReachedWithSlowFollowers(t *testing.T) {
	// Q=3, 5 followers: 3 ack, 2 never respond within the call timeout.
	store := storage.NewInMemoryStore()
	transport := TransportFunc(func(ctx context.Context, url string, rec Record) error {
		switch url {
		case "http://follower-3", "http://follower-4":
			<-ctx.Done()
			return ctx.Err()
		default:
			return nil
		}
	})

	c := newTestCoordinator(store, transport, followerURLs(5), 3)
	outcome, err := c.Write(context.Background(), "k", "v")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if outcome.Acks != 3 {
		t.Errorf("Expected acks=3, got %d", outcome.Acks)
	}
	if outcome.Version != 1 {
		t.Errorf("Expected version 1, got %d", outcome.Version)
	}
}

func TestCoordinator_ScenarioB_QuorumNotReachedKeepsLocalWrite(t *testing.T) {
	// Q=3, 5 followers, only 2 ack.
	store := storage.NewInMemoryStore()
	transport := TransportFunc(func(ctx context.Context, url string, rec Record) error {
		switch url {
		case "http://follower-0", "http://follower-1":
			return nil
		default:
			return errors.New("connection refused")
		}
	})

	c := newTestCoordinator(store, transport, followerURLs(5), 3)
	outcome, err := c.Write(context.Background(), "k", "v")

	var qErr *QuorumError
	if !errors.As(err, &qErr) {
		t.Fatalf("Expected QuorumError, got %v", err)
	}
	if qErr.Acks != 2 || qErr.Required != 3 {
		t.Errorf("Expected 2/3 acks, got %d/%d", qErr.Acks, qErr.Required)
	}
	if outcome.Acks != 2 {
		t.Errorf("Expected outcome acks=2, got %d", outcome.Acks)
	}

	// No rollback: the leader's copy is authoritative regardless of quorum.
	e, ok := store.Get("k")
	if !ok || e.Value != "v" || e.Version != outcome.Version {
		t.Errorf("Expected local store to keep (v, %d), got (%v, %v)", outcome.Version, e, ok)
	}
}

func TestCoordinator_ScenarioD_ConcurrentWritesConvergeOnFollowers(t *testing.T) {
	// Two racing writes to the same key; followers receive both records in
	// whatever order the transport delivers them and must all converge to
	// the higher-versioned value.
	store := storage.NewInMemoryStore()

	followerStores := make([]*storage.InMemoryStore, 3)
	appliers := make([]*Applier, 3)
	for i := range followerStores {
		followerStores[i] = storage.NewInMemoryStore()
		appliers[i] = NewApplier(followerStores[i])
	}

	transport := TransportFunc(func(ctx context.Context, url string, rec Record) error {
		var idx int
		fmt.Sscanf(url, "http://follower-%d", &idx)
		appliers[idx].Apply(rec)
		return nil
	})

	c := newTestCoordinator(store, transport, followerURLs(3), 3)

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)
	for i, v := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, v string) {
			defer wg.Done()
			outcome, err := c.Write(context.Background(), "k", v)
			if err != nil {
				t.Errorf("write %q failed: %v", v, err)
			}
			outcomes[i] = outcome
		}(i, v)
	}
	wg.Wait()

	if outcomes[0].Version == outcomes[1].Version {
		t.Fatalf("Expected distinct versions, both got %d", outcomes[0].Version)
	}

	winner := outcomes[0]
	if outcomes[1].Version > winner.Version {
		winner = outcomes[1]
	}

	leaderEntry, _ := store.Get("k")
	if leaderEntry.Version != winner.Version {
		t.Errorf("Expected leader at version %d, got %d", winner.Version, leaderEntry.Version)
	}
	for i, fs := range followerStores {
		e, ok := fs.Get("k")
		if !ok || e.Version != winner.Version {
			t.Errorf("Follower %d: expected version %d, got (%v, %v)", i, winner.Version, e, ok)
		}
	}
}

func TestCoordinator_VersionsStrictlyIncrease(t *testing.T) {
	store := storage.NewInMemoryStore()
	transport := TransportFunc(func(ctx context.Context, url string, rec Record) error {
		return nil
	})
	c := newTestCoordinator(store, transport, followerURLs(1), 1)

	prev := int64(0)
	for i := 0; i < 5; i++ {
		outcome, err := c.Write(context.Background(), fmt.Sprintf("k%d", i), "v")
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if outcome.Version != prev+1 {
			t.Errorf("Expected version %d, got %d", prev+1, outcome.Version)
		}
		prev = outcome.Version
	}

	// Deletes draw from the same counter.
	outcome, err := c.Delete(context.Background(), "k0")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if outcome.Version != prev+1 {
		t.Errorf("Expected delete version %d, got %d", prev+1, outcome.Version)
	}
}

func TestCoordinator_DeleteMissingKey(t *testing.T) {
	store := storage.NewInMemoryStore()
	var sent int
	var mu sync.Mutex
	transport := TransportFunc(func(ctx context.Context, url string, rec Record) error {
		mu.Lock()
		sent++
		mu.Unlock()
		return nil
	})
	c := newTestCoordinator(store, transport, followerURLs(2), 1)

	_, err := c.Delete(context.Background(), "ghost")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}

	// Rejected before a version is assigned or anything is replicated.
	mu.Lock()
	if sent != 0 {
		t.Errorf("Expected no replication for rejected delete, got %d sends", sent)
	}
	mu.Unlock()

	outcome, err := c.Write(context.Background(), "k", "v")
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if outcome.Version != 1 {
		t.Errorf("Expected counter untouched by rejected delete, first write got version %d", outcome.Version)
	}
}

func TestCoordinator_DeleteReplicatesTombstonelessRemoval(t *testing.T) {
	store := storage.NewInMemoryStore()

	var mu sync.Mutex
	var records []Record
	transport := TransportFunc(func(ctx context.Context, url string, rec Record) error {
		mu.Lock()
		records = append(records, rec)
		mu.Unlock()
		return nil
	})
	c := newTestCoordinator(store, transport, followerURLs(1), 1)

	if _, err := c.Write(context.Background(), "k", "v"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := c.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, ok := store.Get("k"); ok {
		t.Error("Expected key removed from leader store")
	}

	mu.Lock()
	defer mu.Unlock()
	var del Record
	for _, r := range records {
		if r.Delete {
			del = r
		}
	}
	if del.Key != "k" || del.Value != nil || del.Version != 2 {
		t.Errorf("Expected delete record {k, nil, 2, true}, got %+v", del)
	}
	if err := del.Validate(); err != nil {
		t.Errorf("Expected valid delete record, got %v", err)
	}
}

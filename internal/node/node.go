package node

import (
	"context"
	"fmt"
	"log"

	"github.com/AlexandraB-C/PR-LAB-4/internal/clock"
	"github.com/AlexandraB-C/PR-LAB-4/internal/config"
	"github.com/AlexandraB-C/PR-LAB-4/internal/quorum"
	"github.com/AlexandraB-C/PR-LAB-4/internal/replication"
	"github.com/AlexandraB-C/PR-LAB-4/internal/role"
	"github.com/AlexandraB-C/PR-LAB-4/internal/storage"
)

// Node is one process of the cluster, fixed as leader or follower for its
// lifetime.
type Node struct {
	cfg     config.Config
	gate    *role.Gate
	store   storage.Store
	applier *replication.Applier
	coord   *replication.Coordinator // nil on followers
}

// New builds a node from a validated configuration.
func New(cfg config.Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid node config: %w", err)
	}

	store := storage.NewInMemoryStore()
	n := &Node{
		cfg:     cfg,
		gate:    role.NewGate(cfg.NodeRole()),
		store:   store,
		applier: replication.NewApplier(store),
	}

	if cfg.NodeRole() == role.Leader {
		transport := NewHTTPTransport(cfg.ReplicationTimeout(), cfg.MinDelay(), cfg.MaxDelay())
		pool := quorum.NewPool(cfg.MaxConcurrentReplications, cfg.ReplicationTimeout())
		n.coord = replication.NewCoordinator(
			store, clock.NewCounter(), transport, pool, cfg.FollowerURLs, cfg.WriteQuorum)
	}

	return n, nil
}

// Role returns the node's fixed role.
func (n *Node) Role() role.Role {
	return n.gate.Role()
}

// SubmitWrite accepts a client write. Rejected with a role error on
// followers.
func (n *Node) SubmitWrite(ctx context.Context, key, value string) (replication.Outcome, error) {
	if err := n.gate.Authorize(role.OpWrite); err != nil {
		return replication.Outcome{}, err
	}
	return n.coord.Write(ctx, key, value)
}

// SubmitDelete accepts a client delete. Rejected with a role error on
// followers.
func (n *Node) SubmitDelete(ctx context.Context, key string) (replication.Outcome, error) {
	if err := n.gate.Authorize(role.OpDelete); err != nil {
		return replication.Outcome{}, err
	}
	return n.coord.Delete(ctx, key)
}

// Read serves a point lookup on any role.
func (n *Node) Read(key string) (storage.Entry, bool) {
	return n.store.Get(key)
}

// ReceiveReplication applies one record delivered by the leader. Rejected
// with a role error on a leader; malformed records are rejected before
// touching the store. Stale records are dropped silently and reported as
// applied=false, which is not an error.
func (n *Node) ReceiveReplication(rec replication.Record) (bool, error) {
	if err := n.gate.Authorize(role.OpReplicate); err != nil {
		return false, err
	}
	if err := rec.Validate(); err != nil {
		return false, err
	}

	applied := n.applier.Apply(rec)
	if !applied {
		log.Printf("[%s] dropped stale record key=%s version=%d", n.Role(), rec.Key, rec.Version)
	}
	return applied, nil
}

// Status describes the node for the status endpoint.
type Status struct {
	NodeRole    string   `json:"node_role"`
	StorageSize int      `json:"storage_size"`
	Quorum      int      `json:"quorum"`
	Followers   []string `json:"followers"`
}

// Status reports the node's role, stored key count, and replication setup.
func (n *Node) Status() Status {
	followers := n.cfg.FollowerURLs
	if followers == nil {
		followers = []string{}
	}
	return Status{
		NodeRole:    string(n.Role()),
		StorageSize: n.store.Len(),
		Quorum:      n.cfg.WriteQuorum,
		Followers:   followers,
	}
}

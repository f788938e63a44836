// Package node assembles a single process of the cluster: the store, the
// role gate, the replication coordinator or applier depending on role, the
// HTTP API serving clients and the leader's replication traffic, and the
// HTTP transport the leader uses to reach its followers.
package node

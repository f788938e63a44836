// Package quorum provides coordination logic for quorum-gated replication
// fan-out. It handles parallel dispatch to followers, per-call timeout
// management, early return once the required acknowledgment count is
// reached, and bounding of the in-flight worker pool.
package quorum

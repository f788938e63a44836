// Package replication implements the leader-based replication protocol:
// the record format carried from leader to followers, the coordinator that
// assigns versions and gates writes on a follower quorum, and the apply
// policy that resolves conflicting or out-of-order deliveries on followers
// by last-writer-wins version comparison.
package replication

// Package clock provides the leader's version counter. Versions order all
// writes cluster-wide: the leader assigns one per accepted write or delete,
// and followers use them to resolve conflicting or out-of-order replication
// deliveries (highest version wins).
package clock

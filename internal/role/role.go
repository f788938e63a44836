package role

import "fmt"

// Role identifies what a node is allowed to do in the cluster.
type Role string

const (
	// Leader accepts client writes and deletes and fans them out to followers.
	Leader Role = "leader"
	// Follower serves reads and accepts replicated updates from the leader.
	Follower Role = "follower"
)

// Op is an operation kind checked against a node's role.
type Op string

const (
	OpWrite     Op = "write"
	OpDelete    Op = "delete"
	OpRead      Op = "read"
	OpReplicate Op = "replicate"
)

// Parse validates a role string.
func Parse(s string) (Role, error) {
	switch Role(s) {
	case Leader, Follower:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q (expected %q or %q)", s, Leader, Follower)
	}
}

// Error reports an operation attempted against the wrong role.
type Error struct {
	Role Role
	Op   Op
}

func (e *Error) Error() string {
	switch e.Op {
	case OpWrite, OpDelete:
		return fmt.Sprintf("%s operations allowed on leader only (node role: %s)", e.Op, e.Role)
	case OpReplicate:
		return fmt.Sprintf("replication endpoint for followers only (node role: %s)", e.Role)
	default:
		return fmt.Sprintf("operation %s not allowed for role %s", e.Op, e.Role)
	}
}

// Gate authorizes operations against the node's fixed role.
type Gate struct {
	role Role
}

// NewGate creates a gate for the given role.
func NewGate(r Role) *Gate {
	return &Gate{role: r}
}

// Role returns the node's role.
func (g *Gate) Role() Role {
	return g.role
}

// Authorize returns nil if the operation is permitted for this node's role.
// Reads are always permitted; writes and deletes only on the leader;
// replication apply only on followers.
func (g *Gate) Authorize(op Op) error {
	switch op {
	case OpRead:
		return nil
	case OpWrite, OpDelete:
		if g.role != Leader {
			return &Error{Role: g.role, Op: op}
		}
		return nil
	case OpReplicate:
		if g.role != Follower {
			return &Error{Role: g.role, Op: op}
		}
		return nil
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

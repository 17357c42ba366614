package authz

// Identity is the authenticated caller as supplied by the auth middleware.
type Identity struct {
	UserID string
	Role   string
}

// Policy answers whether a requester may access resources owned by ownerID.
// Role semantics live behind this interface; the document core only asks.
type Policy interface {
	CanAccess(requesterID, requesterRole, ownerID string) bool
}

// RolePolicy grants owners access to their own resources and listed roles
// access to everything.
type RolePolicy struct {
	privileged map[string]struct{}
}

// NewRolePolicy constructs a RolePolicy with the given privileged roles.
func NewRolePolicy(roles ...string) *RolePolicy {
	p := &RolePolicy{privileged: make(map[string]struct{}, len(roles))}
	for _, r := range roles {
		p.privileged[r] = struct{}{}
	}
	return p
}

// CanAccess implements Policy.
func (p *RolePolicy) CanAccess(requesterID, requesterRole, ownerID string) bool {
	if requesterID == "" {
		return false
	}
	if requesterID == ownerID {
		return true
	}
	_, ok := p.privileged[requesterRole]
	return ok
}

var _ Policy = (*RolePolicy)(nil)

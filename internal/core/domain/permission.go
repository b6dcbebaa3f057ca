package domain

// Authorize is the permission gate. A nil principal is the unauthenticated
// case; a principal without a resolved role cannot hold any capability.
func Authorize(p *Principal, c Capability) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.Role == nil {
		return ErrNoRole
	}
	if !p.Role.Allows(c) {
		return ErrPermissionDenied
	}
	return nil
}

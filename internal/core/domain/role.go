package domain

import (
	"encoding/json"
	"fmt"
)

// Capability names a single permission flag carried by a role.
type Capability string

const (
	CapPostLogin      Capability = "can_post_login"
	CapGetMyUser      Capability = "can_get_my_user"
	CapGetUsers       Capability = "can_get_users"
	CapPostProducts   Capability = "can_post_products"
	CapUploadImages   Capability = "can_upload_images"
	CapGetBestsellers Capability = "can_get_bestsellers"
)

// AllCapabilities is the closed set of capabilities the gate recognises.
var AllCapabilities = []Capability{
	CapPostLogin,
	CapGetMyUser,
	CapGetUsers,
	CapPostProducts,
	CapUploadImages,
	CapGetBestsellers,
}

// ParseCapability converts a flag name into a Capability, rejecting names
// outside AllCapabilities.
func ParseCapability(name string) (Capability, error) {
	for _, c := range AllCapabilities {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", name)
}

// RoleName identifies a role tier.
type RoleName string

const (
	RoleAdmin   RoleName = "ADMIN"
	RolePremium RoleName = "PREMIUM"
	RoleUser    RoleName = "USER"
	RoleBan     RoleName = "BAN"
)

// DefaultRole is assigned on registration.
const DefaultRole = RoleUser

// CapabilitySet holds the granted flags of a role. Missing entries are false.
type CapabilitySet map[Capability]bool

// Role is a named set of capability flags shared by many users.
type Role struct {
	ID           string
	Name         RoleName
	Capabilities CapabilitySet
}

// Allows reports whether the role grants c.
func (r *Role) Allows(c Capability) bool {
	if r == nil {
		return false
	}
	return r.Capabilities[c]
}

// MarshalJSON renders the role as {"name": ..., "<capability>": bool, ...},
// listing every known capability explicitly.
func (r Role) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(AllCapabilities)+1)
	out["name"] = r.Name
	for _, c := range AllCapabilities {
		out[string(c)] = r.Capabilities[c]
	}
	return json.Marshal(out)
}

package types

import "fmt"

// Role represents the profile of a responsible within the system
type Role string

const (
	RoleAdministrator      Role = "ADMINISTRATOR"
	RoleSystemManager      Role = "SYSTEM_MANAGER"
	RoleValidator          Role = "VALIDATOR"
	RoleAdvancedExecutor   Role = "ADVANCED_EXECUTOR"
	RoleExecutor           Role = "EXECUTOR"
	RoleRestrictedExecutor Role = "RESTRICTED_EXECUTOR"
	RoleSupportTechnician  Role = "SUPPORT_TECHNICIAN"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleAdministrator,
		RoleSystemManager,
		RoleValidator,
		RoleAdvancedExecutor,
		RoleExecutor,
		RoleRestrictedExecutor,
		RoleSupportTechnician,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator,
		RoleSystemManager,
		RoleValidator,
		RoleAdvancedExecutor,
		RoleExecutor,
		RoleRestrictedExecutor,
		RoleSupportTechnician:
		return true
	default:
		return false
	}
}

// IsPrivileged reports whether the role can act regardless of area membership
func (r Role) IsPrivileged() bool {
	return r == RoleAdministrator || r == RoleSystemManager
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

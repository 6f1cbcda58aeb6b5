package accounts

import "fmt"

// UserRole represents a staff role in the directory
type UserRole string

const (
	// RoleAdmin has full administrative access
	RoleAdmin UserRole = "ADMIN"
	// RoleManager can manage day to day operations
	RoleManager UserRole = "MANAGER"
	// RoleReceptionist is the default role for new accounts
	RoleReceptionist UserRole = "RECEPTIONIST"
)

// DefaultRole is assigned when registration omits the role field.
const DefaultRole = RoleReceptionist

// roleHierarchy defines role precedence, higher values mean more permissions
var roleHierarchy = map[UserRole]int{
	RoleAdmin:        100,
	RoleManager:      50,
	RoleReceptionist: 10,
}

// IsValid checks if the role is a recognized role
func (r UserRole) IsValid() bool {
	_, exists := roleHierarchy[r]
	return exists
}

// String returns the string representation of the role
func (r UserRole) String() string {
	return string(r)
}

// IsAtLeast checks if this role has at least the permissions of the given role
func (r UserRole) IsAtLeast(minimum UserRole) bool {
	currentLevel, ok := roleHierarchy[r]
	if !ok {
		return false
	}
	minimumLevel, ok := roleHierarchy[minimum]
	if !ok {
		return false
	}
	return currentLevel >= minimumLevel
}

// ParseRole converts a string to a UserRole, returns error if invalid
func ParseRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// GetAllRoles returns all valid roles
func GetAllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleManager, RoleReceptionist}
}

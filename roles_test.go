package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	accounts "github.com/goliatone/go-accounts"
)

func TestUserRole_IsValid(t *testing.T) {
	for _, role := range accounts.GetAllRoles() {
		assert.True(t, role.IsValid(), "expected %s to be valid", role)
	}

	assert.False(t, accounts.UserRole("GUEST").IsValid())
	assert.False(t, accounts.UserRole("admin").IsValid(), "roles are case sensitive")
	assert.False(t, accounts.UserRole("").IsValid())
}

func TestUserRole_IsAtLeast(t *testing.T) {
	assert.True(t, accounts.RoleAdmin.IsAtLeast(accounts.RoleReceptionist))
	assert.True(t, accounts.RoleAdmin.IsAtLeast(accounts.RoleManager))
	assert.True(t, accounts.RoleManager.IsAtLeast(accounts.RoleReceptionist))
	assert.True(t, accounts.RoleManager.IsAtLeast(accounts.RoleManager))

	assert.False(t, accounts.RoleReceptionist.IsAtLeast(accounts.RoleManager))
	assert.False(t, accounts.RoleManager.IsAtLeast(accounts.RoleAdmin))
	assert.False(t, accounts.UserRole("GUEST").IsAtLeast(accounts.RoleReceptionist))
}

func TestParseRole(t *testing.T) {
	role, err := accounts.ParseRole("ADMIN")
	assert.NoError(t, err)
	assert.Equal(t, accounts.RoleAdmin, role)

	_, err = accounts.ParseRole("SUPERUSER")
	assert.Error(t, err)

	_, err = accounts.ParseRole("")
	assert.Error(t, err)
}

func TestDefaultRole(t *testing.T) {
	assert.Equal(t, accounts.RoleReceptionist, accounts.DefaultRole)
}

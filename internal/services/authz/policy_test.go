package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range []string{"user", "manager", "admin"} {
		parsed, err := ParseRole(role)
		require.NoError(t, err)
		assert.Equal(t, Role(role), parsed)
	}

	for _, invalid := range []string{"", "superadmin", "Admin", "owner"} {
		_, err := ParseRole(invalid)
		assert.ErrorIs(t, err, ErrUnknownRole, "role %q should be rejected", invalid)
	}
}

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role          Role
		viewAll       bool
		markAnyDone   bool
		editAny       bool
		deleteAny     bool
		manageUsers   bool
		changeAnyRole bool
	}{
		{RoleUser, false, false, false, false, false, false},
		{RoleManager, true, true, false, false, false, false},
		{RoleAdmin, true, true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.viewAll, tt.role.CanViewAllTodos())
			assert.Equal(t, tt.markAnyDone, tt.role.CanMarkAnyTodoDone())
			assert.Equal(t, tt.editAny, tt.role.CanEditAnyTodo())
			assert.Equal(t, tt.deleteAny, tt.role.CanDeleteAnyTodo())
			assert.Equal(t, tt.manageUsers, tt.role.CanManageUsers())
			assert.Equal(t, tt.changeAnyRole, tt.role.CanChangeUserRole())
		})
	}
}

func TestEvaluateUpdate(t *testing.T) {
	allFields := Fields{Title: true, Description: true, Completed: true}

	tests := []struct {
		name      string
		role      Role
		isOwner   bool
		requested Fields
		wantGrant Grant
		wantErr   error
	}{
		{
			name:      "owner with user role updates any field",
			role:      RoleUser,
			isOwner:   true,
			requested: allFields,
			wantGrant: Grant{Title: true, Description: true, Completed: true},
		},
		{
			name:      "owner with manager role updates any field",
			role:      RoleManager,
			isOwner:   true,
			requested: allFields,
			wantGrant: Grant{Title: true, Description: true, Completed: true},
		},
		{
			name:      "admin updates any field of any todo",
			role:      RoleAdmin,
			isOwner:   false,
			requested: allFields,
			wantGrant: Grant{Title: true, Description: true, Completed: true},
		},
		{
			name:      "manager marks non-owned todo complete",
			role:      RoleManager,
			isOwner:   false,
			requested: Fields{Completed: true},
			wantGrant: Grant{Completed: true},
		},
		{
			name:      "manager with empty field set gets empty grant",
			role:      RoleManager,
			isOwner:   false,
			requested: Fields{},
			wantGrant: Grant{},
		},
		{
			name:      "manager editing title of non-owned todo is denied",
			role:      RoleManager,
			isOwner:   false,
			requested: Fields{Title: true},
			wantErr:   ErrManagerFieldsDenied,
		},
		{
			name:      "manager editing description of non-owned todo is denied",
			role:      RoleManager,
			isOwner:   false,
			requested: Fields{Description: true},
			wantErr:   ErrManagerFieldsDenied,
		},
		{
			name:      "manager mixed completed+title is denied outright",
			role:      RoleManager,
			isOwner:   false,
			requested: Fields{Title: true, Completed: true},
			wantErr:   ErrManagerFieldsDenied,
		},
		{
			name:      "regular user cannot touch someone else's todo",
			role:      RoleUser,
			isOwner:   false,
			requested: Fields{Completed: true},
			wantErr:   ErrEditDenied,
		},
		{
			name:      "regular user denied regardless of field set",
			role:      RoleUser,
			isOwner:   false,
			requested: allFields,
			wantErr:   ErrEditDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant, err := EvaluateUpdate(tt.role, tt.isOwner, tt.requested)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Grant{}, grant)
				assert.True(t, IsDenial(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantGrant, grant)
		})
	}
}

func TestEvaluateUpdateIsIdempotent(t *testing.T) {
	// Same inputs always produce the same decision; there is no hidden state.
	requested := Fields{Title: true, Completed: true}
	first, err1 := EvaluateUpdate(RoleUser, true, requested)
	second, err2 := EvaluateUpdate(RoleUser, true, requested)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestEvaluateDelete(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		isOwner bool
		wantErr error
	}{
		{"owner deletes own todo", RoleUser, true, nil},
		{"admin deletes any todo", RoleAdmin, false, nil},
		{"manager cannot delete non-owned todo", RoleManager, false, ErrDeleteDenied},
		{"manager deletes own todo", RoleManager, true, nil},
		{"regular user cannot delete non-owned todo", RoleUser, false, ErrDeleteDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EvaluateDelete(tt.role, tt.isOwner)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluateView(t *testing.T) {
	assert.NoError(t, EvaluateView(RoleUser, true))
	assert.NoError(t, EvaluateView(RoleManager, false))
	assert.NoError(t, EvaluateView(RoleAdmin, false))
	assert.ErrorIs(t, EvaluateView(RoleUser, false), ErrViewDenied)
}

func TestEvaluateRoleChange(t *testing.T) {
	t.Run("admin changes another user's role", func(t *testing.T) {
		assert.NoError(t, EvaluateRoleChange(RoleAdmin, "admin-1", "user-2"))
	})

	t.Run("admin cannot change own role", func(t *testing.T) {
		assert.ErrorIs(t, EvaluateRoleChange(RoleAdmin, "admin-1", "admin-1"), ErrSelfRoleChange)
	})

	t.Run("manager cannot change roles", func(t *testing.T) {
		assert.ErrorIs(t, EvaluateRoleChange(RoleManager, "mgr-1", "user-2"), ErrAdminRequired)
	})

	t.Run("user cannot change roles", func(t *testing.T) {
		assert.ErrorIs(t, EvaluateRoleChange(RoleUser, "user-1", "user-2"), ErrAdminRequired)
	})
}

func TestEvaluateUserList(t *testing.T) {
	assert.NoError(t, EvaluateUserList(RoleAdmin))
	assert.ErrorIs(t, EvaluateUserList(RoleManager), ErrAdminRequired)
	assert.ErrorIs(t, EvaluateUserList(RoleUser), ErrAdminRequired)
}

func TestIsDenialClassification(t *testing.T) {
	assert.True(t, IsDenial(ErrEditDenied))
	assert.True(t, IsDenial(ErrAdminRequired))
	assert.False(t, IsDenial(ErrUnknownRole))
	assert.False(t, IsDenial(nil))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

func newUserService(env *testEnv) UserService {
	return NewUserService(env.userRepo, env.orgRepo, env.estRepo, env.activity, testLogger())
}

func TestUserService_InviteUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	est := env.createEstablishment(t, org, "Acme Store")

	invited, err := svc.InviteUser(admin, InviteUserInput{
		Email:            "new@acme.test",
		Name:             "Nouveau",
		Password:         "s3curepass",
		Role:             models.RoleManager,
		EstablishmentIDs: []string{est.ID},
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, invited.Role)
	require.NotNil(t, invited.OrganizationID)
	assert.Equal(t, org.ID, *invited.OrganizationID)

	// Initial grants are view-only.
	perm, err := env.estRepo.FindPermission(invited.ID, est.ID)
	require.NoError(t, err)
	assert.True(t, perm.CanView)
	assert.False(t, perm.CanRespond)
	assert.False(t, perm.CanManage)

	env.pool.Wait()
	logs, err := env.activity.RecentByOrganization(org.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityUserInvited, logs[0].ActivityType)
}

func TestUserService_InviteUser_Restrictions(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	manager := env.createUser(t, org, "manager@acme.test", models.RoleManager)

	orgB := env.createOrg(t, "Org B")
	estB := env.createEstablishment(t, orgB, "B Store")

	tests := []struct {
		name    string
		actor   *models.User
		input   InviteUserInput
		wantErr error
	}{
		{
			name:    "manager cannot invite",
			actor:   manager,
			input:   InviteUserInput{Email: "x@acme.test", Name: "X", Password: "s3curepass", Role: models.RoleViewer},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "cannot mint a second owner",
			actor:   admin,
			input:   InviteUserInput{Email: "x@acme.test", Name: "X", Password: "s3curepass", Role: models.RoleOwner},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "unknown role rejected",
			actor:   admin,
			input:   InviteUserInput{Email: "x@acme.test", Name: "X", Password: "s3curepass", Role: "superchief"},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "duplicate email rejected",
			actor:   admin,
			input:   InviteUserInput{Email: "manager@acme.test", Name: "X", Password: "s3curepass", Role: models.RoleViewer},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:  "grants limited to own organization",
			actor: admin,
			input: InviteUserInput{
				Email: "x@acme.test", Name: "X", Password: "s3curepass", Role: models.RoleViewer,
				EstablishmentIDs: []string{estB.ID},
			},
			wantErr: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.InviteUser(tt.actor, tt.input, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserService_InviteUser_QuotaEnforced(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	org.MaxUsers = 2
	require.NoError(t, env.orgRepo.Update(org))
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)

	_, err := svc.InviteUser(admin, InviteUserInput{
		Email: "second@acme.test", Name: "Second", Password: "s3curepass", Role: models.RoleViewer,
	}, "")
	require.NoError(t, err)

	_, err = svc.InviteUser(admin, InviteUserInput{
		Email: "third@acme.test", Name: "Third", Password: "s3curepass", Role: models.RoleViewer,
	}, "")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestUserService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	viewer := env.createUser(t, org, "viewer@acme.test", models.RoleViewer)

	newName := "Renamed"
	newRole := models.RoleManager
	inactive := false
	updated, err := svc.UpdateUser(admin, viewer.ID, UpdateUserInput{
		Name:     &newName,
		Role:     &newRole,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.RoleManager, updated.Role)
	assert.False(t, updated.IsActive)
}

func TestUserService_OwnerProtection(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	owner := env.createUser(t, org, "owner@acme.test", models.RoleOwner)
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)

	demote := models.RoleViewer
	_, err := svc.UpdateUser(admin, owner.ID, UpdateUserInput{Role: &demote})
	assert.ErrorIs(t, err, ErrOwnerProtected)

	err = svc.DeleteUser(admin, owner.ID)
	assert.ErrorIs(t, err, ErrOwnerProtected)

	// The owner exists and is untouched.
	reloaded, err := env.userRepo.FindByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, reloaded.Role)
}

func TestUserService_CrossTenantDenied(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	orgA := env.createOrg(t, "Org A")
	orgB := env.createOrg(t, "Org B")
	adminA := env.createUser(t, orgA, "admin@a.test", models.RoleAdmin)
	userB := env.createUser(t, orgB, "user@b.test", models.RoleViewer)

	name := "Hijacked"
	_, err := svc.UpdateUser(adminA, userB.ID, UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.ErrorIs(t, svc.DeleteUser(adminA, userB.ID), ErrAccessDenied)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	viewer := env.createUser(t, org, "viewer@acme.test", models.RoleViewer)

	require.NoError(t, svc.DeleteUser(admin, viewer.ID))

	_, err := env.userRepo.FindByID(viewer.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserService_ListOrganizationUsers(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	org := env.createOrg(t, "Acme")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	env.createUser(t, org, "viewer@acme.test", models.RoleViewer)

	users, err := svc.ListOrganizationUsers(admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	viewer, err := env.userRepo.FindByEmail("viewer@acme.test")
	require.NoError(t, err)
	_, err = svc.ListOrganizationUsers(viewer)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

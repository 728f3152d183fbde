package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

func newEstablishmentService(env *testEnv) EstablishmentService {
	return NewEstablishmentService(env.estRepo, env.orgRepo, env.userRepo, env.policy, env.activity, testLogger())
}

func TestEstablishmentService_Create(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)

	est, err := svc.Create(admin, EstablishmentInput{Name: "Acme Store"}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, org.ID, est.OrganizationID)
	assert.True(t, est.IsActive)
	// Tone defaults from the organization when the input leaves it empty.
	assert.Equal(t, org.DefaultAiTone, est.AiTone)

	env.pool.Wait()
	logs, err := env.activity.RecentByOrganization(org.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityEstablishmentAdded, logs[0].ActivityType)
}

func TestEstablishmentService_Create_DeniedForManagerAndViewer(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")

	for _, role := range []models.Role{models.RoleManager, models.RoleViewer} {
		user := env.createUser(t, org, string(role)+"@acme.test", role)
		_, err := svc.Create(user, EstablishmentInput{Name: "Nope"}, "")
		assert.ErrorIs(t, err, ErrAccessDenied, "role %s", role)
	}
}

func TestEstablishmentService_Create_QuotaEnforced(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	org.MaxEstablishments = 2
	require.NoError(t, env.orgRepo.Update(org))
	owner := env.createUser(t, org, "owner@acme.test", models.RoleOwner)

	_, err := svc.Create(owner, EstablishmentInput{Name: "One"}, "")
	require.NoError(t, err)
	_, err = svc.Create(owner, EstablishmentInput{Name: "Two"}, "")
	require.NoError(t, err)

	_, err = svc.Create(owner, EstablishmentInput{Name: "Three"}, "")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestEstablishmentService_Get_ResourceBeforePermission(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	viewer := env.createUser(t, org, "viewer@acme.test", models.RoleViewer)
	est := env.createEstablishment(t, org, "Acme Store")

	// Missing resource reads as not-found even for users with no access at all.
	_, err := svc.Get(viewer, "no-such-id")
	assert.ErrorIs(t, err, repository.ErrEstablishmentNotFound)

	// Existing but ungranted resource reads as denied, not as not-found.
	_, err = svc.Get(viewer, est.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	env.grantPermission(t, viewer, est, true, false, false)
	got, err := svc.Get(viewer, est.ID)
	require.NoError(t, err)
	assert.Equal(t, est.ID, got.ID)
}

func TestEstablishmentService_List_FiltersByGrants(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	est1 := env.createEstablishment(t, org, "Store 1")
	est2 := env.createEstablishment(t, org, "Store 2")

	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	all, err := svc.List(admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	manager := env.createUser(t, org, "manager@acme.test", models.RoleManager)
	none, err := svc.List(manager)
	require.NoError(t, err)
	assert.Empty(t, none)

	env.grantPermission(t, manager, est1, true, false, false)
	granted, err := svc.List(manager)
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, est1.ID, granted[0].ID)
	_ = est2
}

func TestEstablishmentService_Update_ManageGrant(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	est := env.createEstablishment(t, org, "Acme Store")
	manager := env.createUser(t, org, "manager@acme.test", models.RoleManager)

	_, err := svc.Update(manager, est.ID, EstablishmentInput{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	env.grantPermission(t, manager, est, true, false, true)
	updated, err := svc.Update(manager, est.ID, EstablishmentInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestEstablishmentService_Delete_RequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	est := env.createEstablishment(t, org, "Acme Store")

	// A canManage grant allows updates but never deletion.
	manager := env.createUser(t, org, "manager@acme.test", models.RoleManager)
	env.grantPermission(t, manager, est, true, true, true)
	assert.ErrorIs(t, svc.Delete(manager, est.ID), ErrAccessDenied)

	owner := env.createUser(t, org, "owner@acme.test", models.RoleOwner)
	require.NoError(t, svc.Delete(owner, est.ID))

	_, err := env.estRepo.FindByID(est.ID)
	assert.ErrorIs(t, err, repository.ErrEstablishmentNotFound)
}

func TestEstablishmentService_SetPermission_UpsertsSingleRow(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	org := env.createOrg(t, "Acme")
	est := env.createEstablishment(t, org, "Acme Store")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)
	viewer := env.createUser(t, org, "viewer@acme.test", models.RoleViewer)

	perm, err := svc.SetPermission(admin, est.ID, PermissionInput{UserID: viewer.ID, CanView: true})
	require.NoError(t, err)
	assert.True(t, perm.CanView)
	assert.False(t, perm.CanRespond)

	// A second call updates the same row instead of inserting a duplicate.
	perm2, err := svc.SetPermission(admin, est.ID, PermissionInput{UserID: viewer.ID, CanView: true, CanRespond: true})
	require.NoError(t, err)
	assert.Equal(t, perm.ID, perm2.ID)
	assert.True(t, perm2.CanRespond)

	perms, err := env.estRepo.FindPermissionsByUser(viewer.ID)
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}

func TestEstablishmentService_SetPermission_CrossTenantTargetDenied(t *testing.T) {
	env := newTestEnv(t)
	svc := newEstablishmentService(env)
	orgA := env.createOrg(t, "Org A")
	orgB := env.createOrg(t, "Org B")
	est := env.createEstablishment(t, orgA, "A Store")
	adminA := env.createUser(t, orgA, "admin@a.test", models.RoleAdmin)
	userB := env.createUser(t, orgB, "user@b.test", models.RoleViewer)

	_, err := svc.SetPermission(adminA, est.ID, PermissionInput{UserID: userB.ID, CanView: true})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

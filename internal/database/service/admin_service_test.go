package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

func newAdminService(env *testEnv) AdminService {
	return NewAdminService(env.orgRepo, env.userRepo, env.estRepo, env.revRepo, env.billRepo, env.tplRepo, env.activity, testLogger())
}

func TestAdminService_Stats(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)
	org := env.createOrg(t, "Acme")
	est := env.createEstablishment(t, org, "Acme Store")
	admin := env.createUser(t, org, "admin@acme.test", models.RoleAdmin)

	env.createReview(t, est, 1, "Mauvais")
	env.createReview(t, est, 5, "Super")
	r3 := env.createReview(t, est, 5, "Excellent")

	// One posted response out of three reviews.
	reviewSvc := newReviewService(env, &fakeGenerator{text: "Merci"})
	_, err := reviewSvc.Respond(context.Background(), admin, r3.ID, "Merci !", "")
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalOrganizations)
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalEstablishments)
	assert.EqualValues(t, 3, stats.TotalReviews)
	assert.EqualValues(t, 2, stats.PendingReviews)
	assert.EqualValues(t, 1, stats.UrgentReviews)
	assert.EqualValues(t, 1, stats.TotalResponses)
	assert.Equal(t, float64(33), stats.ResponseRate)
}

func TestAdminService_Stats_EmptyPlatform(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReviews)
	// No reviews means a rate of zero, not a division error.
	assert.Zero(t, stats.ResponseRate)
}

func TestAdminService_CreateOrganization(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)

	org, err := svc.CreateOrganization(AdminOrganizationInput{Name: "Café de l'Été"})
	require.NoError(t, err)
	assert.True(t, org.IsActive)
	assert.Contains(t, org.Slug, "cafe-de-l-ete-")
	assert.Equal(t, 5, org.MaxUsers)
	assert.Equal(t, 10, org.MaxEstablishments)

	bill, err := env.billRepo.FindByOrganization(org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillingTrial, bill.Status)
	assert.NotNil(t, bill.TrialEndsAt)
}

func TestAdminService_ListOrganizations(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)

	org, err := svc.CreateOrganization(AdminOrganizationInput{Name: "Acme"})
	require.NoError(t, err)
	env.createUser(t, org, "a@acme.test", models.RoleOwner)
	env.createUser(t, org, "b@acme.test", models.RoleViewer)
	env.createEstablishment(t, org, "Store")

	summaries, err := svc.ListOrganizations()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 2, summaries[0].UsersCount)
	assert.EqualValues(t, 1, summaries[0].EstablishmentsCount)
	require.NotNil(t, summaries[0].Billing)
	assert.Equal(t, models.BillingTrial, summaries[0].Billing.Status)
}

func TestAdminService_GetOrganization(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)
	org := env.createOrg(t, "Acme")
	env.createUser(t, org, "a@acme.test", models.RoleOwner)
	env.createEstablishment(t, org, "Store")

	detail, err := svc.GetOrganization(org.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Users, 1)
	assert.Len(t, detail.Establishments, 1)

	_, err = svc.GetOrganization("no-such-org")
	assert.ErrorIs(t, err, repository.ErrOrganizationNotFound)
}

func TestAdminService_UpdateOrganization_Quotas(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)
	org := env.createOrg(t, "Acme")

	maxUsers := 50
	inactive := false
	updated, err := svc.UpdateOrganization(org.ID, AdminOrganizationInput{
		MaxUsers: &maxUsers,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.MaxUsers)
	assert.False(t, updated.IsActive)
	// Untouched fields keep their values.
	assert.Equal(t, "Acme", updated.Name)
}

func TestAdminService_CreateUser_CrossTenant(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)
	org := env.createOrg(t, "Acme")

	// The admin surface may mint owners, unlike org-scoped invitations.
	user, err := svc.CreateUser(AdminUserInput{
		Email:          "owner@acme.test",
		Name:           "Owner",
		Password:       "s3curepass",
		Role:           models.RoleOwner,
		OrganizationID: &org.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, user.Role)

	_, err = svc.CreateUser(AdminUserInput{
		Email: "owner@acme.test", Name: "Dup", Password: "s3curepass", Role: models.RoleViewer,
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	badOrg := "no-such-org"
	_, err = svc.CreateUser(AdminUserInput{
		Email: "x@acme.test", Name: "X", Password: "s3curepass", Role: models.RoleViewer,
		OrganizationID: &badOrg,
	})
	assert.ErrorIs(t, err, repository.ErrOrganizationNotFound)
}

func TestAdminService_UpdateUser_SuperAdminFlag(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)
	org := env.createOrg(t, "Acme")
	user := env.createUser(t, org, "x@acme.test", models.RoleViewer)

	grant := true
	updated, err := svc.UpdateUser(user.ID, AdminUserInput{IsSuperAdmin: &grant})
	require.NoError(t, err)
	assert.True(t, updated.IsSuperAdmin)
}

func TestAdminService_Billing(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)

	org, err := svc.CreateOrganization(AdminOrganizationInput{Name: "Acme"})
	require.NoError(t, err)

	customerID := "cus_123"
	bill, err := svc.UpdateBilling(org.ID, BillingInput{
		StripeCustomerID: &customerID,
		Status:           models.BillingActive,
		PlanName:         "pro",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillingActive, bill.Status)
	assert.Equal(t, "pro", bill.PlanName)
	require.NotNil(t, bill.StripeCustomerID)
	assert.Equal(t, "cus_123", *bill.StripeCustomerID)

	_, err = svc.GetBilling("no-such-org")
	assert.ErrorIs(t, err, repository.ErrOrganizationNotFound)
}

func TestAdminService_Templates(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)

	tpl, err := svc.CreateTemplate(AiTemplateInput{
		Name:           "Réponse standard",
		PromptTemplate: "Réponds poliment à {{review}}",
	})
	require.NoError(t, err)
	assert.Equal(t, "general", tpl.Category)
	assert.True(t, tpl.IsActive)

	deactivate := false
	updated, err := svc.UpdateTemplate(tpl.ID, AiTemplateInput{IsActive: &deactivate})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	tpls, err := svc.ListTemplates()
	require.NoError(t, err)
	assert.Len(t, tpls, 1)

	require.NoError(t, svc.DeleteTemplate(tpl.ID))
	assert.ErrorIs(t, svc.DeleteTemplate(tpl.ID), repository.ErrTemplateNotFound)
}

func TestAdminService_DeleteOrganization(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env)
	org := env.createOrg(t, "Acme")

	require.NoError(t, svc.DeleteOrganization(org.ID))
	assert.ErrorIs(t, svc.DeleteOrganization(org.ID), repository.ErrOrganizationNotFound)
}

package service

import (
	"errors"

	"github.com/avisgenius/backend-go/internal/config"
	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

// roleCapabilities is the capability table for the org-scoped role hierarchy.
// Ascending privilege: viewer < manager < admin = owner.
type roleCapabilities struct {
	// ManageEstablishments allows create/update/delete of any establishment
	// belonging to the user's own organization.
	ManageEstablishments bool
	// BypassPermissionRows grants implicit access to every establishment of
	// the organization without a UserEstablishmentPermission row.
	BypassPermissionRows bool
}

var roleCaps = map[models.Role]roleCapabilities{
	models.RoleOwner:   {ManageEstablishments: true, BypassPermissionRows: true},
	models.RoleAdmin:   {ManageEstablishments: true, BypassPermissionRows: true},
	models.RoleManager: {},
	models.RoleViewer:  {},
}

var roleRanks = map[models.Role]int{
	models.RoleViewer:  0,
	models.RoleManager: 1,
	models.RoleAdmin:   2,
	models.RoleOwner:   2,
}

// RoleRank returns the privilege rank of a role. Admin and owner are
// access-equivalent for establishment operations.
func RoleRank(r models.Role) int {
	return roleRanks[r]
}

func capsFor(r models.Role) roleCapabilities {
	return roleCaps[r]
}

// IsPlatformAdmin reports whether the user may use the administrative surface.
// Two independent grant paths exist: the isSuperAdmin column and the
// environment-configured admin email allowlist. Platform admin status never
// implies access to tenant business data outside the admin endpoints.
func IsPlatformAdmin(user *models.User, cfg *config.Config) bool {
	if user == nil {
		return false
	}
	return user.IsSuperAdmin || cfg.IsAdminEmail(user.Email)
}

// AccessPolicy decides whether a user may view, respond to, or manage a given
// establishment. Every check verifies tenant ownership first: cross-tenant
// access is denied regardless of role.
type AccessPolicy struct {
	estRepo repository.EstablishmentRepository
}

// NewAccessPolicy creates a new access policy instance
func NewAccessPolicy(estRepo repository.EstablishmentRepository) *AccessPolicy {
	return &AccessPolicy{estRepo: estRepo}
}

// CanViewEstablishment returns nil when the user may read the establishment
// and its reviews, ErrAccessDenied otherwise.
func (p *AccessPolicy) CanViewEstablishment(user *models.User, est *models.Establishment) error {
	if !user.InOrganization(est.OrganizationID) {
		return ErrAccessDenied
	}
	if capsFor(user.Role).BypassPermissionRows {
		return nil
	}
	perm, err := p.permission(user.ID, est.ID)
	if err != nil {
		return err
	}
	if perm == nil || !perm.CanView {
		return ErrAccessDenied
	}
	return nil
}

// CanRespondToEstablishment gates draft generation and posting. Managers and
// viewers need both canView and canRespond on their permission row; the
// canRespond grant is required even to generate a draft.
func (p *AccessPolicy) CanRespondToEstablishment(user *models.User, est *models.Establishment) error {
	if !user.InOrganization(est.OrganizationID) {
		return ErrAccessDenied
	}
	if capsFor(user.Role).BypassPermissionRows {
		return nil
	}
	perm, err := p.permission(user.ID, est.ID)
	if err != nil {
		return err
	}
	if perm == nil || !perm.CanView || !perm.CanRespond {
		return ErrAccessDenied
	}
	return nil
}

// CanManageEstablishment gates updates, review imports and permission grants
// on a single establishment.
func (p *AccessPolicy) CanManageEstablishment(user *models.User, est *models.Establishment) error {
	if !user.InOrganization(est.OrganizationID) {
		return ErrAccessDenied
	}
	if capsFor(user.Role).ManageEstablishments {
		return nil
	}
	perm, err := p.permission(user.ID, est.ID)
	if err != nil {
		return err
	}
	if perm == nil || !perm.CanView || !perm.CanManage {
		return ErrAccessDenied
	}
	return nil
}

// AccessibleEstablishmentIDs resolves the set of establishment ids the user
// may view: the whole organization for owner/admin, the granted subset for
// manager/viewer.
func (p *AccessPolicy) AccessibleEstablishmentIDs(user *models.User) ([]string, error) {
	if user.OrganizationID == nil {
		return []string{}, nil
	}

	if capsFor(user.Role).BypassPermissionRows {
		ests, err := p.estRepo.FindByOrganization(*user.OrganizationID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(ests))
		for _, est := range ests {
			ids = append(ids, est.ID)
		}
		return ids, nil
	}

	perms, err := p.estRepo.FindPermissionsByUser(user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(perms))
	for _, perm := range perms {
		if perm.CanView {
			ids = append(ids, perm.EstablishmentID)
		}
	}
	return ids, nil
}

func (p *AccessPolicy) permission(userID, establishmentID string) (*models.UserEstablishmentPermission, error) {
	perm, err := p.estRepo.FindPermission(userID, establishmentID)
	if err != nil {
		if errors.Is(err, repository.ErrPermissionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return perm, nil
}

// ErrAccessDenied is the uniform authorization failure. It never reveals
// whether the underlying resource exists.
var ErrAccessDenied = errors.New("access denied")

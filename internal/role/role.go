package role

import (
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Repository is the persistence surface for roles and their permission
// grants.
type Repository interface {
	List(limit, offset int) ([]datamodel.Role, error)
	GetByID(id int64) (*datamodel.Role, error)
	Create(role *datamodel.Role, permissionIDs []int64) (*datamodel.Role, error)
	Rename(id int64, name string) (*datamodel.Role, error)
	AddPermissions(roleID int64, permissionIDs []int64) (*datamodel.Role, error)
	RemovePermissions(roleID int64, permissionIDs []int64) (*datamodel.Role, error)
	Delete(id int64) error
}

// Response is the public shape of a role: permissions by name only.
type Response struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func ToResponse(r *datamodel.Role) Response {
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, p.Name)
	}
	return Response{
		Name:        r.Name,
		Permissions: perms,
	}
}

func ToResponses(roles []datamodel.Role) []Response {
	out := make([]Response, 0, len(roles))
	for i := range roles {
		out = append(out, ToResponse(&roles[i]))
	}
	return out
}

package user

import (
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Repository is the persistence surface for users. Create is the single
// write path for passwords: implementations hash before the row is
// written, plaintext never reaches storage.
type Repository interface {
	List(limit, offset int) ([]datamodel.User, error)
	GetByID(id int64) (*datamodel.User, error)
	Create(user *datamodel.User, roleIDs []int64) (*datamodel.User, error)
	Update(id int64, fields map[string]interface{}) (*datamodel.User, error)
	AddRoles(userID int64, roleIDs []int64) (*datamodel.User, error)
	Delete(id int64) error
}

// Mailer is the fire-and-forget mail side channel.
type Mailer interface {
	Send(to, subject, body string) error
}

// Response is the public shape of a user: never the password, roles by
// name only.
type Response struct {
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles,omitempty"`
}

func ToResponse(u *datamodel.User) Response {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, role.Name)
	}
	return Response{
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Roles:     roles,
	}
}

func ToResponses(users []datamodel.User) []Response {
	out := make([]Response, 0, len(users))
	for i := range users {
		out = append(out, ToResponse(&users[i]))
	}
	return out
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Claims carried by the signed bearer token: identity plus the role ids
// the authorization filter matches permissions against.
type Claims struct {
	UserID    int64   `json:"id"`
	Email     string  `json:"email"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	RoleIDs   []int64 `json:"roles"`
	jwt.RegisteredClaims
}

// UserRepository is the read side the credential service needs.
type UserRepository interface {
	GetByEmailWithRoles(email string) (*datamodel.User, error)
}

// UserCreator is the single write path that persists new users. Its
// implementation hashes the password before the row is written.
type UserCreator interface {
	Create(user *datamodel.User, roleIDs []int64) (*datamodel.User, error)
}

// PermissionRepository resolves the permission set attached to a list of
// roles, de-duplicated by permission name.
type PermissionRepository interface {
	ForRoles(roleIDs []int64) ([]datamodel.Permission, error)
}

// Mailer is the fire-and-forget mail side channel.
type Mailer interface {
	Send(to, subject, body string) error
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (string, error)
	Register(dto RegisterDTO) (*datamodel.User, error)
	Verify(token string) (*Claims, error)
	Revoke(token string) error
}

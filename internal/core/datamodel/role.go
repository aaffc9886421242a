package datamodel

// Reserved role ids, created by the seeder and never deletable.
const (
	RoleAdmin  int64 = 1
	RoleAuthor int64 = 2
	RoleReader int64 = 3
)

var ReservedRoleIDs = []int64{RoleAdmin, RoleAuthor, RoleReader}

func IsReservedRole(id int64) bool {
	for _, r := range ReservedRoleIDs {
		if r == id {
			return true
		}
	}
	return false
}

type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`

	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles" json:"users,omitempty"`
}

func (Role) TableName() string { return "roles" }

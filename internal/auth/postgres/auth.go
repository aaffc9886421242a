package postgres

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Repository implements the auth read interfaces using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmailWithRoles(email string) (*datamodel.User, error) {
	var user datamodel.User
	err := r.db.Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ForRoles returns the permissions attached to any of the given roles,
// de-duplicated by name.
func (r *Repository) ForRoles(roleIDs []int64) ([]datamodel.Permission, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var permissions []datamodel.Permission
	err := r.db.Model(&datamodel.Permission{}).
		Distinct("permissions.name", "permissions.method", "permissions.url").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}

	return permissions, nil
}

package postgres

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Repository persists roles and their permission grants with gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(limit, offset int) ([]datamodel.Role, error) {
	var roles []datamodel.Role
	err := r.db.Preload("Permissions").Limit(limit).Offset(offset).Order("id").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *Repository) GetByID(id int64) (*datamodel.Role, error) {
	var role datamodel.Role
	err := r.db.Preload("Permissions").First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Create writes the role row and its permission grants in one
// transaction.
func (r *Repository) Create(role *datamodel.Role, permissionIDs []int64) (*datamodel.Role, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return grantPermissions(tx, role.ID, permissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(role.ID)
}

func (r *Repository) Rename(id int64, name string) (*datamodel.Role, error) {
	err := r.db.Model(&datamodel.Role{}).Where("id = ?", id).Update("name", name).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *Repository) AddPermissions(roleID int64, permissionIDs []int64) (*datamodel.Role, error) {
	if err := grantPermissions(r.db, roleID, permissionIDs); err != nil {
		return nil, err
	}
	return r.GetByID(roleID)
}

func (r *Repository) RemovePermissions(roleID int64, permissionIDs []int64) (*datamodel.Role, error) {
	err := r.db.Exec(
		"DELETE FROM role_permissions WHERE role_id = ? AND permission_id IN ?",
		roleID, permissionIDs,
	).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(roleID)
}

// Delete removes the role, its permission grants and its user
// associations in one transaction.
func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&datamodel.Role{}, id).Error
	})
}

// grantPermissions inserts role-permission rows, skipping grants that
// already exist.
func grantPermissions(db *gorm.DB, roleID int64, permissionIDs []int64) error {
	for _, permissionID := range permissionIDs {
		err := db.Exec(
			"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			roleID, permissionID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

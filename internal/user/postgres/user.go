package postgres

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Repository persists users with gorm. Passwords are hashed here, on the
// only write path that accepts plaintext.
type Repository struct {
	db         *gorm.DB
	bcryptCost int
}

func NewRepository(db *gorm.DB, bcryptCost int) *Repository {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Repository{db: db, bcryptCost: bcryptCost}
}

func (r *Repository) List(limit, offset int) ([]datamodel.User, error) {
	var users []datamodel.User
	err := r.db.
		Preload("Roles").
		Limit(limit).
		Offset(offset).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) GetByID(id int64) (*datamodel.User, error) {
	var user datamodel.User
	err := r.db.Preload("Roles").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByEmailWithRoles(email string) (*datamodel.User, error) {
	var user datamodel.User
	err := r.db.Preload("Roles").Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create hashes the password, writes the user row and its role
// associations in one transaction, and returns the stored user with
// roles preloaded.
func (r *Repository) Create(user *datamodel.User, roleIDs []int64) (*datamodel.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), r.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.Password = string(hashed)

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return attachRoles(tx, user.ID, roleIDs)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(user.ID)
}

func (r *Repository) Update(id int64, fields map[string]interface{}) (*datamodel.User, error) {
	err := r.db.Model(&datamodel.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *Repository) AddRoles(userID int64, roleIDs []int64) (*datamodel.User, error) {
	if err := attachRoles(r.db, userID, roleIDs); err != nil {
		return nil, err
	}
	return r.GetByID(userID)
}

// Delete removes the user, its role associations and its authored books
// in one transaction. Loans against those books go first so foreign
// keys stay satisfied.
func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM loans WHERE user_id = ? OR book_id IN (SELECT id FROM books WHERE author_id = ?)",
			id, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&datamodel.Book{}).Error; err != nil {
			return err
		}
		return tx.Delete(&datamodel.User{}, id).Error
	})
}

// attachRoles inserts user-role rows, skipping pairs that already
// exist.
func attachRoles(db *gorm.DB, userID int64, roleIDs []int64) error {
	for _, roleID := range roleIDs {
		err := db.Exec(
			"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			userID, roleID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/book"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Repository persists the catalog with gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(status string, limit, offset int) ([]datamodel.Book, error) {
	query := r.db.Preload("Author").Limit(limit).Offset(offset).Order("id")

	switch status {
	case book.StatusPending:
		query = query.Where("is_valid = ?", false)
	case book.StatusValidated:
		query = query.Where("is_valid = ?", true)
	}

	var books []datamodel.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *Repository) GetValidatedByID(id int64) (*datamodel.Book, error) {
	var b datamodel.Book
	err := r.db.Preload("Author").Where("is_valid = ?", true).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) GetByID(id int64) (*datamodel.Book, error) {
	var b datamodel.Book
	err := r.db.Preload("Author").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) Create(b *datamodel.Book) (*datamodel.Book, error) {
	if err := r.db.Create(b).Error; err != nil {
		return nil, err
	}
	return r.GetByID(b.ID)
}

func (r *Repository) Update(id int64, fields map[string]interface{}) (*datamodel.Book, error) {
	err := r.db.Model(&datamodel.Book{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *Repository) MarkValidated(id int64, publishedAt time.Time) (*datamodel.Book, error) {
	err := r.db.Model(&datamodel.Book{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_valid":     true,
			"published_at": publishedAt,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes the book and its loan history in one transaction.
func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM loans WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&datamodel.Book{}, id).Error
	})
}

// LoanRepository persists the loan ledger.
type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) CreateLoans(loans []datamodel.Loan) error {
	return r.db.Create(&loans).Error
}

func (r *LoanRepository) HasOutstanding(userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&datamodel.Loan{}).
		Where("user_id = ? AND return_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReturnAll stamps every outstanding loan of the user as returned and
// reports how many were closed.
func (r *LoanRepository) ReturnAll(userID int64, returnedAt time.Time) (int64, error) {
	result := r.db.Model(&datamodel.Loan{}).
		Where("user_id = ? AND return_at IS NULL", userID).
		Update("return_at", returnedAt)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

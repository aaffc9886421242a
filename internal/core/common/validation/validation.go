package validation

import (
	"fmt"
	"net/mail"
	"time"

	"gorm.io/gorm"

	errors "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Violation is one failed rule on one field.
type Violation struct {
	Rule    string
	Message string
}

// RuleFunc runs a single check against a field value. A nil return means
// the check passed.
type RuleFunc func(value interface{}) *Violation

type FieldValidator struct {
	FieldName string
	Value     interface{}
	Rules     []RuleFunc

	db *gorm.DB
}

// Builder accumulates field rule sets for one operation. Every declared
// rule runs; violations are collected wholesale rather than stopping at
// the first failure.
type Builder struct {
	db     *gorm.DB
	fields []*FieldValidator
}

// New creates a builder. The db handle is only read from, by the
// persistence-backed rules (Unique, Available, LoanableBooks).
func New(db *gorm.DB) *Builder {
	return &Builder{db: db}
}

func (b *Builder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName: name,
		Value:     value,
		db:        b.db,
	}
	b.fields = append(b.fields, fv)
	return fv
}

// Violations runs every rule of every field and returns the full list of
// failures grouped by property.
func (b *Builder) Violations() []errors.FieldViolation {
	var out []errors.FieldViolation

	for _, field := range b.fields {
		infos := make(map[string]string)
		for _, rule := range field.Rules {
			if v := rule(field.Value); v != nil {
				infos[v.Rule] = v.Message
			}
		}
		if len(infos) > 0 {
			out = append(out, errors.FieldViolation{
				Property: field.FieldName,
				Infos:    infos,
			})
		}
	}

	return out
}

// Error returns a validation AppError carrying all collected violations,
// or nil if everything passed.
func (b *Builder) Error() *errors.AppError {
	violations := b.Violations()
	if len(violations) == 0 {
		return nil
	}
	return errors.NewValidationError(violations)
}

// ----------------- PURE RULES -----------------

func (fv *FieldValidator) Required(message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		switch v := value.(type) {
		case string:
			if v == "" {
				return &Violation{Rule: "isNotEmpty", Message: message}
			}
		case time.Time:
			if v.IsZero() {
				return &Violation{Rule: "isNotEmpty", Message: message}
			}
		case nil:
			return &Violation{Rule: "isNotEmpty", Message: message}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email(message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if v, ok := value.(string); ok && v != "" {
			if _, err := mail.ParseAddress(v); err != nil {
				return &Violation{Rule: "isEmail", Message: message}
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Length(min, max int, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if v, ok := value.(string); ok {
			if len(v) < min || len(v) > max {
				return &Violation{Rule: "isLength", Message: message}
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) IntMin(min int, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if v, ok := value.(int); ok && v < min {
			return &Violation{Rule: "min", Message: message}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) ArrayMinSize(size int, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if ids, ok := value.([]int64); ok && len(ids) < size {
			return &Violation{Rule: "arrayMinSize", Message: message}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) ArrayMaxSize(size int, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if ids, ok := value.([]int64); ok && len(ids) > size {
			return &Violation{Rule: "arrayMaxSize", Message: message}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) ArrayUnique(message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if ids, ok := value.([]int64); ok {
			seen := make(map[int64]struct{}, len(ids))
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					return &Violation{Rule: "arrayUnique", Message: message}
				}
				seen[id] = struct{}{}
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) ArrayExcludes(forbidden int64, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if ids, ok := value.([]int64); ok {
			for _, id := range ids {
				if id == forbidden {
					return &Violation{Rule: "isNotIn", Message: message}
				}
			}
		}
		return nil
	})
	return fv
}

// NotPast rejects times before now. A minute of tolerance absorbs clock
// skew between client and server.
func (fv *FieldValidator) NotPast(message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if v, ok := value.(time.Time); ok && !v.IsZero() {
			if v.Before(time.Now().Add(-time.Minute)) {
				return &Violation{Rule: "minDate", Message: message}
			}
		}
		return nil
	})
	return fv
}

// After rejects the value unless it is strictly after the other time.
func (fv *FieldValidator) After(other time.Time, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		if v, ok := value.(time.Time); ok && !v.IsZero() {
			if !v.After(other) {
				return &Violation{Rule: "isValidReturnDate", Message: message}
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(rule RuleFunc) *FieldValidator {
	fv.Rules = append(fv.Rules, rule)
	return fv
}

// ----------------- PERSISTENCE-BACKED RULES -----------------

// Unique fails when another row of model already has this value in column.
// Skipped on empty strings so optional update fields pass through.
func (fv *FieldValidator) Unique(model interface{}, column, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		var count int64
		if err := fv.db.Model(model).Where(fmt.Sprintf("%s = ?", column), v).Count(&count).Error; err != nil {
			return &Violation{Rule: "isUnique", Message: message}
		}
		if count > 0 {
			return &Violation{Rule: "isUnique", Message: message}
		}
		return nil
	})
	return fv
}

// Available fails unless every id in the submitted list corresponds to an
// existing row of model.
func (fv *FieldValidator) Available(model interface{}, message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		ids, ok := value.([]int64)
		if !ok || len(ids) == 0 {
			return nil
		}
		distinct := distinctIDs(ids)
		var count int64
		if err := fv.db.Model(model).Where("id IN ?", distinct).Count(&count).Error; err != nil {
			return &Violation{Rule: "isAvailable", Message: message}
		}
		if count != int64(len(distinct)) {
			return &Violation{Rule: "isAvailable", Message: message}
		}
		return nil
	})
	return fv
}

// ValidatedBooks fails unless every id refers to a validated book.
func (fv *FieldValidator) ValidatedBooks(message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		ids, ok := value.([]int64)
		if !ok || len(ids) == 0 {
			return nil
		}
		distinct := distinctIDs(ids)
		var count int64
		err := fv.db.Model(&datamodel.Book{}).
			Where("id IN ? AND is_valid = ?", distinct, true).
			Count(&count).Error
		if err != nil || count != int64(len(distinct)) {
			return &Violation{Rule: "isBookIdExists", Message: message}
		}
		return nil
	})
	return fv
}

// LoanableBooks fails when any listed book has as many outstanding loans
// as copies. Read-then-write: two concurrent loans can both pass here,
// matching the persistence-layer isolation this system settles for.
func (fv *FieldValidator) LoanableBooks(message string) *FieldValidator {
	fv.Rules = append(fv.Rules, func(value interface{}) *Violation {
		ids, ok := value.([]int64)
		if !ok || len(ids) == 0 {
			return nil
		}
		for _, id := range distinctIDs(ids) {
			var book datamodel.Book
			if err := fv.db.First(&book, id).Error; err != nil {
				return &Violation{Rule: "isBookAvailableToLoan", Message: message}
			}
			var outstanding int64
			err := fv.db.Model(&datamodel.Loan{}).
				Where("book_id = ? AND return_at IS NULL", id).
				Count(&outstanding).Error
			if err != nil || outstanding >= int64(book.Quantity) {
				return &Violation{Rule: "isBookAvailableToLoan", Message: message}
			}
		}
		return nil
	})
	return fv
}

func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

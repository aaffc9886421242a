package datamodel

import "time"

// Loan with a nil ReturnAt is outstanding.
type Loan struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64      `gorm:"not null;index" json:"userId"`
	BookID           int64      `gorm:"not null;index" json:"bookId"`
	LoanAt           time.Time  `gorm:"not null" json:"loanAt"`
	SupposedReturnAt time.Time  `gorm:"not null" json:"supposedReturnAt"`
	ReturnAt         *time.Time `json:"returnAt,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Loan) TableName() string { return "loans" }

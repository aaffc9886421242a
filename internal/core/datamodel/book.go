package datamodel

import "time"

// Book has two states: pending (IsValid false) and validated. The only
// transition is pending to validated, which stamps PublishedAt.
type Book struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:255;not null;uniqueIndex" json:"title"`
	ISBN        string     `gorm:"size:20;not null;uniqueIndex" json:"isbn"`
	Quantity    int        `gorm:"not null;default:1" json:"quantity"`
	Resume      string     `gorm:"type:text;not null" json:"resume"`
	IsValid     bool       `gorm:"not null;default:false" json:"isValid"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	AuthorID    int64      `gorm:"not null;index" json:"authorId"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Author User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Loans  []Loan `gorm:"foreignKey:BookID" json:"loans,omitempty"`
}

func (Book) TableName() string { return "books" }

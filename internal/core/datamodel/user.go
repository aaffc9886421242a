package datamodel

import "time"

// User is the persistence model for library accounts. Password always
// holds a bcrypt hash; the repository hashes before any write.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Firstname string    `gorm:"size:50;not null" json:"firstname"`
	Lastname  string    `gorm:"size:50;not null" json:"lastname"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Roles []Role `gorm:"many2many:user_roles" json:"roles,omitempty"`
	Books []Book `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
	Loans []Loan `gorm:"foreignKey:UserID" json:"loans,omitempty"`
}

func (User) TableName() string { return "users" }

package datamodel

// Permission grants access to requests whose method equals Method and
// whose path matches URL interpreted as a regular expression.
type Permission struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Method string `gorm:"size:10;not null" json:"method"`
	URL    string `gorm:"size:255;not null" json:"url"`

	Roles []Role `gorm:"many2many:role_permissions" json:"roles,omitempty"`
}

func (Permission) TableName() string { return "permissions" }

package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Person represents a votable candidate. The display name is unique; the
// first/last split is derived once on creation and stays fixed afterwards.
type Person struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// BeforeSave derives FirstName/LastName from Name when neither is set.
// A single-word name lands entirely in FirstName.
func (p *Person) BeforeSave(tx *gorm.DB) (err error) {
	if p.FirstName == "" && p.LastName == "" && p.Name != "" {
		parts := strings.Fields(strings.TrimSpace(p.Name))
		if len(parts) >= 2 {
			p.FirstName = parts[0]
			p.LastName = strings.Join(parts[1:], " ")
		} else {
			p.FirstName = p.Name
			p.LastName = ""
		}
	}
	return
}

package models

import "time"

// Category represents one voting question. Only active categories take part
// in a voting session; sessions snapshot the ordered active list at creation.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;index"`
	Description string    `json:"description"`
	ImagePath   *string   `json:"image_path,omitempty"` // relative path in the media store, nullable
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

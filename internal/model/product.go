package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog item. Quantity is the authoritative on-hand
// stock and is mutated only through the ledger.
type Product struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Name          string         `json:"name" gorm:"type:varchar(255);not null"`
	Description   string         `json:"description" gorm:"type:text"`
	ImageURL      string         `json:"image_url" gorm:"type:varchar(512)"`
	Unit          string         `json:"unit" gorm:"type:varchar(50)"`
	Reference     *string        `json:"reference,omitempty" gorm:"type:varchar(100)"`
	Quantity      int            `json:"quantity" gorm:"not null;default:0"`
	CategoryID    uint           `json:"category_id" gorm:"index;not null"`
	Category      *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SubCategoryID *uint          `json:"sub_category_id,omitempty" gorm:"index"`
	SubCategory   *SubCategory   `json:"sub_category,omitempty" gorm:"foreignKey:SubCategoryID"`
	EntrepriseID  uint           `json:"entreprise_id" gorm:"index;not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

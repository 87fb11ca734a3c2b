package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products within a tenant
type Category struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	EntrepriseID uint           `json:"entreprise_id" gorm:"index;not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// SubCategory refines a category; belongs to exactly one category and one tenant
type SubCategory struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	CategoryID   uint           `json:"category_id" gorm:"index;not null"`
	Category     *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	EntrepriseID uint           `json:"entreprise_id" gorm:"index;not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

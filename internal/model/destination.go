package model

import (
	"time"

	"gorm.io/gorm"
)

// Destination is the target of an outbound stock movement, e.g. a client,
// site or department.
type Destination struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	EntrepriseID uint           `json:"entreprise_id" gorm:"index;not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

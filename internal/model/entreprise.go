package model

import "time"

// Entreprise is the tenant root: every other entity carries its ID and every
// query filters by it. Created lazily on first authenticated contact.
type Entreprise struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Email     string    `json:"email" gorm:"type:varchar(255);unique;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package model

import "time"

// Transaction types
const (
	TransactionIn  = "IN"
	TransactionOut = "OUT"
)

// StockTransaction is the immutable audit record of a single quantity change.
// Rows are created exclusively by the ledger and never updated or deleted,
// hence no UpdatedAt and no soft delete.
type StockTransaction struct {
	ID            uint         `json:"id" gorm:"primarykey"`
	Type          string       `json:"type" gorm:"type:varchar(10);not null;index"`
	Quantity      int          `json:"quantity" gorm:"not null"`
	ProductID     uint         `json:"product_id" gorm:"index;not null"`
	Product       *Product     `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	EntrepriseID  uint         `json:"entreprise_id" gorm:"index;not null"`
	DestinationID *uint        `json:"destination_id,omitempty" gorm:"index"`
	Destination   *Destination `json:"destination,omitempty" gorm:"foreignKey:DestinationID"`
	CreatedAt     time.Time    `json:"created_at"`
}

package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNoItems         = errors.New("order must contain at least one item")
)

// ProductNotFoundError reports products that do not exist under the tenant.
// A product belonging to another tenant is indistinguishable from a missing
// one on purpose.
type ProductNotFoundError struct {
	ProductIDs []uint
}

func (e *ProductNotFoundError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("product not found: %s", strings.Join(ids, ", "))
}

// Shortfall describes one product whose available stock cannot cover the
// requested quantity.
type Shortfall struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// InsufficientStockError rejects a deduction batch; it lists every failing
// item so the caller can render a precise message.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		parts[i] = fmt.Sprintf("%s: requested %d, available %d", s.ProductName, s.Requested, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

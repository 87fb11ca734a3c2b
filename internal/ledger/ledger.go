package ledger

import (
	"context"

	"stock-service/internal/model"

	"gorm.io/gorm"
)

// OrderItem is one line of an outbound stock movement.
type OrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Ledger applies stock-affecting operations as atomic, tenant-scoped units of
// work, and records an immutable StockTransaction for every quantity change.
// It holds no state between calls: every decision reads the committed
// quantity inside the same transaction that writes it, and the decrement is
// guarded by a `quantity >= ?` condition so two concurrent deductions cannot
// jointly overdraw a product.
type Ledger struct {
	db *gorm.DB
}

// New creates a ledger bound to the given database handle
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Replenish increments a product's stock and records an IN transaction.
// Both writes commit together or not at all.
func (l *Ledger) Replenish(ctx context.Context, tenantID, productID uint, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var product model.Product
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Product{}).
			Where("id = ? AND entreprise_id = ?", productID, tenantID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &ProductNotFoundError{ProductIDs: []uint{productID}}
		}

		movement := model.StockTransaction{
			Type:         model.TransactionIn,
			Quantity:     quantity,
			ProductID:    productID,
			EntrepriseID: tenantID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		return tx.Where("id = ? AND entreprise_id = ?", productID, tenantID).First(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Deduct decrements stock for every order item and records one OUT
// transaction per item, optionally attributed to a destination. The whole
// batch is a single unit of work: if any item is missing or short, nothing
// is applied.
func (l *Ledger) Deduct(ctx context.Context, tenantID uint, items []OrderItem, destinationID *uint) ([]model.Product, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	var updated []model.Product
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Validation pass: resolve every product under the tenant and collect
		// all failures before touching anything.
		ids := make([]uint, len(items))
		for i, item := range items {
			ids[i] = item.ProductID
		}

		var products []model.Product
		if err := tx.Where("id IN ? AND entreprise_id = ?", ids, tenantID).Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[uint]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		var missing []uint
		var shortfalls []Shortfall
		for _, item := range items {
			product, ok := byID[item.ProductID]
			if !ok {
				missing = append(missing, item.ProductID)
				continue
			}
			if product.Quantity < item.Quantity {
				shortfalls = append(shortfalls, Shortfall{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Quantity,
				})
			}
		}
		if len(missing) > 0 {
			return &ProductNotFoundError{ProductIDs: missing}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Shortfalls: shortfalls}
		}

		// Mutation pass, in input order. The quantity guard in the WHERE
		// clause closes the window between the validation read above and
		// this write: a concurrent deduction that drained the product in
		// between leaves RowsAffected at zero and aborts the batch.
		for _, item := range items {
			result := tx.Model(&model.Product{}).
				Where("id = ? AND entreprise_id = ? AND quantity >= ?", item.ProductID, tenantID, item.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				var current model.Product
				if err := tx.Where("id = ? AND entreprise_id = ?", item.ProductID, tenantID).First(&current).Error; err != nil {
					return &ProductNotFoundError{ProductIDs: []uint{item.ProductID}}
				}
				return &InsufficientStockError{Shortfalls: []Shortfall{{
					ProductID:   current.ID,
					ProductName: current.Name,
					Requested:   item.Quantity,
					Available:   current.Quantity,
				}}}
			}

			movement := model.StockTransaction{
				Type:          model.TransactionOut,
				Quantity:      item.Quantity,
				ProductID:     item.ProductID,
				EntrepriseID:  tenantID,
				DestinationID: destinationID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		return tx.Where("id IN ? AND entreprise_id = ?", ids, tenantID).Find(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

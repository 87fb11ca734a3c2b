package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stock-service/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	// A single connection keeps the in-memory database alive and serializes
	// transactions the way Postgres row locks would.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get database object: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Entreprise{},
		&model.Category{},
		&model.SubCategory{},
		&model.Product{},
		&model.Destination{},
		&model.StockTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, email string) *model.Entreprise {
	t.Helper()
	entreprise := model.Entreprise{Email: email, Name: "Test " + email}
	if err := db.Create(&entreprise).Error; err != nil {
		t.Fatalf("seed entreprise: %v", err)
	}
	return &entreprise
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID uint, name string, quantity int) *model.Product {
	t.Helper()
	category := model.Category{Name: name + " category", EntrepriseID: tenantID}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := model.Product{
		Name:         name,
		Unit:         "pcs",
		Quantity:     quantity,
		CategoryID:   category.ID,
		EntrepriseID: tenantID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func productQuantity(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product model.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return product.Quantity
}

func transactionCount(t *testing.T, db *gorm.DB, productID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.StockTransaction{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}

func TestReplenishRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	product := seedProduct(t, db, tenant.ID, "Screws", 10)
	l := New(db)

	for _, quantity := range []int{0, -5} {
		if _, err := l.Replenish(context.Background(), tenant.ID, product.ID, quantity); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("Replenish(%d): got %v, want ErrInvalidQuantity", quantity, err)
		}
	}

	if got := productQuantity(t, db, product.ID); got != 10 {
		t.Fatalf("quantity changed to %d after rejected replenish", got)
	}
	if got := transactionCount(t, db, product.ID); got != 0 {
		t.Fatalf("got %d transactions after rejected replenish, want 0", got)
	}
}

func TestReplenishUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	l := New(db)

	_, err := l.Replenish(context.Background(), tenant.ID, 9999, 5)
	var notFound *ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want ProductNotFoundError", err)
	}
}

func TestReplenishAndDeductRoundTrip(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	product := seedProduct(t, db, tenant.ID, "Paint", 0)
	destination := model.Destination{Name: "Site A", EntrepriseID: tenant.ID}
	if err := db.Create(&destination).Error; err != nil {
		t.Fatalf("seed destination: %v", err)
	}
	l := New(db)

	updated, err := l.Replenish(context.Background(), tenant.ID, product.ID, 20)
	if err != nil {
		t.Fatalf("Replenish: %v", err)
	}
	if updated.Quantity != 20 {
		t.Fatalf("quantity after replenish = %d, want 20", updated.Quantity)
	}

	if _, err := l.Deduct(context.Background(), tenant.ID, []OrderItem{{ProductID: product.ID, Quantity: 5}}, &destination.ID); err != nil {
		t.Fatalf("Deduct: %v", err)
	}

	if got := productQuantity(t, db, product.ID); got != 15 {
		t.Fatalf("final quantity = %d, want 15", got)
	}

	var movements []model.StockTransaction
	if err := db.Where("product_id = ?", product.ID).Order("id asc").Find(&movements).Error; err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("got %d transactions, want 2", len(movements))
	}
	in, out := movements[0], movements[1]
	if in.Type != model.TransactionIn || in.Quantity != 20 || in.DestinationID != nil {
		t.Fatalf("unexpected IN transaction: %+v", in)
	}
	if out.Type != model.TransactionOut || out.Quantity != 5 {
		t.Fatalf("unexpected OUT transaction: %+v", out)
	}
	if out.DestinationID == nil || *out.DestinationID != destination.ID {
		t.Fatalf("OUT transaction destination = %v, want %d", out.DestinationID, destination.ID)
	}
}

func TestDeductAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	productA := seedProduct(t, db, tenant.ID, "Bolts", 10)
	productB := seedProduct(t, db, tenant.ID, "Nuts", 2)
	l := New(db)

	_, err := l.Deduct(context.Background(), tenant.ID, []OrderItem{
		{ProductID: productA.ID, Quantity: 5},
		{ProductID: productB.ID, Quantity: 3},
	}, nil)

	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("got %v, want InsufficientStockError", err)
	}
	if len(short.Shortfalls) != 1 {
		t.Fatalf("got %d shortfalls, want 1", len(short.Shortfalls))
	}
	s := short.Shortfalls[0]
	if s.ProductID != productB.ID || s.Requested != 3 || s.Available != 2 {
		t.Fatalf("unexpected shortfall: %+v", s)
	}

	if got := productQuantity(t, db, productA.ID); got != 10 {
		t.Fatalf("product A quantity = %d after rejected batch, want 10", got)
	}
	if got := productQuantity(t, db, productB.ID); got != 2 {
		t.Fatalf("product B quantity = %d after rejected batch, want 2", got)
	}
	if got := transactionCount(t, db, productA.ID); got != 0 {
		t.Fatalf("got %d transactions for product A, want 0", got)
	}
}

func TestDeductReportsAllShortfalls(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	productA := seedProduct(t, db, tenant.ID, "Bolts", 1)
	productB := seedProduct(t, db, tenant.ID, "Nuts", 2)
	l := New(db)

	_, err := l.Deduct(context.Background(), tenant.ID, []OrderItem{
		{ProductID: productA.ID, Quantity: 4},
		{ProductID: productB.ID, Quantity: 3},
	}, nil)

	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("got %v, want InsufficientStockError", err)
	}
	if len(short.Shortfalls) != 2 {
		t.Fatalf("got %d shortfalls, want 2: %+v", len(short.Shortfalls), short.Shortfalls)
	}
}

func TestDeductUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	product := seedProduct(t, db, tenant.ID, "Bolts", 10)
	l := New(db)

	_, err := l.Deduct(context.Background(), tenant.ID, []OrderItem{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: 4242, Quantity: 1},
	}, nil)

	var notFound *ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want ProductNotFoundError", err)
	}
	if len(notFound.ProductIDs) != 1 || notFound.ProductIDs[0] != 4242 {
		t.Fatalf("unexpected missing ids: %v", notFound.ProductIDs)
	}
	if got := productQuantity(t, db, product.ID); got != 10 {
		t.Fatalf("quantity = %d after rejected batch, want 10", got)
	}
}

func TestDeductValidatesArguments(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	product := seedProduct(t, db, tenant.ID, "Bolts", 10)
	l := New(db)

	if _, err := l.Deduct(context.Background(), tenant.ID, nil, nil); !errors.Is(err, ErrNoItems) {
		t.Fatalf("empty batch: got %v, want ErrNoItems", err)
	}
	if _, err := l.Deduct(context.Background(), tenant.ID, []OrderItem{{ProductID: product.ID, Quantity: 0}}, nil); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero quantity: got %v, want ErrInvalidQuantity", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	owner := seedTenant(t, db, "owner@example.com")
	other := seedTenant(t, db, "other@example.com")
	product := seedProduct(t, db, owner.ID, "Paint", 10)
	l := New(db)

	var notFound *ProductNotFoundError
	if _, err := l.Replenish(context.Background(), other.ID, product.ID, 5); !errors.As(err, &notFound) {
		t.Fatalf("cross-tenant replenish: got %v, want ProductNotFoundError", err)
	}
	if _, err := l.Deduct(context.Background(), other.ID, []OrderItem{{ProductID: product.ID, Quantity: 5}}, nil); !errors.As(err, &notFound) {
		t.Fatalf("cross-tenant deduct: got %v, want ProductNotFoundError", err)
	}

	if got := productQuantity(t, db, product.ID); got != 10 {
		t.Fatalf("owner's quantity = %d after cross-tenant attempts, want 10", got)
	}
	if got := transactionCount(t, db, product.ID); got != 0 {
		t.Fatalf("got %d transactions after cross-tenant attempts, want 0", got)
	}
}

func TestQuantityMatchesTransactionSum(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	product := seedProduct(t, db, tenant.ID, "Wire", 0)
	l := New(db)

	ctx := context.Background()
	ops := []struct {
		in  int
		out int
	}{{in: 50}, {out: 12}, {in: 7}, {out: 30}, {in: 3}}

	for _, op := range ops {
		if op.in > 0 {
			if _, err := l.Replenish(ctx, tenant.ID, product.ID, op.in); err != nil {
				t.Fatalf("Replenish(%d): %v", op.in, err)
			}
		}
		if op.out > 0 {
			if _, err := l.Deduct(ctx, tenant.ID, []OrderItem{{ProductID: product.ID, Quantity: op.out}}, nil); err != nil {
				t.Fatalf("Deduct(%d): %v", op.out, err)
			}
		}
	}

	var movements []model.StockTransaction
	if err := db.Where("product_id = ?", product.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	sum := 0
	for _, m := range movements {
		if m.Type == model.TransactionIn {
			sum += m.Quantity
		} else {
			sum -= m.Quantity
		}
	}

	quantity := productQuantity(t, db, product.ID)
	if quantity != sum {
		t.Fatalf("quantity %d does not match signed transaction sum %d", quantity, sum)
	}
	if quantity < 0 {
		t.Fatalf("quantity went negative: %d", quantity)
	}
}

func TestConcurrentDeductsNeverOverdraw(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "shop@example.com")
	product := seedProduct(t, db, tenant.ID, "Cement", 5)
	l := New(db)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Deduct(context.Background(), tenant.ID, []OrderItem{{ProductID: product.ID, Quantity: 1}}, nil)
		}(i)
	}
	wg.Wait()

	succeeded, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var insufficient *InsufficientStockError
			if !errors.As(err, &insufficient) {
				t.Fatalf("unexpected error: %v", err)
			}
			short++
		}
	}

	if succeeded != 5 || short != 3 {
		t.Fatalf("got %d successes and %d shortfalls, want 5 and 3", succeeded, short)
	}
	if got := productQuantity(t, db, product.ID); got != 0 {
		t.Fatalf("final quantity = %d, want 0", got)
	}
	if got := transactionCount(t, db, product.ID); got != 5 {
		t.Fatalf("got %d transactions, want 5", got)
	}
}

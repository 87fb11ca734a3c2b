package tenant

import (
	"errors"
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
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get database object: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Entreprise{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestByEmailUnknown(t *testing.T) {
	r := NewResolver(newTestDB(t))

	if _, err := r.ByEmail("nobody@example.com"); !errors.Is(err, ErrEntrepriseNotFound) {
		t.Fatalf("got %v, want ErrEntrepriseNotFound", err)
	}
	if _, err := r.ByEmail(""); !errors.Is(err, ErrEntrepriseNotFound) {
		t.Fatalf("empty email: got %v, want ErrEntrepriseNotFound", err)
	}
}

func TestEnsureCreatesOnce(t *testing.T) {
	r := NewResolver(newTestDB(t))

	first, err := r.Ensure("shop@example.com", "Shop")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if first.ID == 0 || first.Email != "shop@example.com" || first.Name != "Shop" {
		t.Fatalf("unexpected entreprise: %+v", first)
	}

	// A second contact with a different display name keeps the original row
	second, err := r.Ensure("shop@example.com", "Renamed Shop")
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if second.ID != first.ID || second.Name != "Shop" {
		t.Fatalf("Ensure created a duplicate: %+v vs %+v", first, second)
	}

	found, err := r.ByEmail("shop@example.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("ByEmail returned id %d, want %d", found.ID, first.ID)
	}
}

package tenant

import (
	"errors"

	"stock-service/internal/model"

	"gorm.io/gorm"
)

// ErrEntrepriseNotFound is returned when no entreprise exists for an email.
var ErrEntrepriseNotFound = errors.New("entreprise not found")

// Resolver maps a caller-asserted tenant email to the Entreprise row. Every
// tenant-scoped operation goes through it before touching any other table.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver bound to the given database handle
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ByEmail returns the entreprise owning the given email
func (r *Resolver) ByEmail(email string) (*model.Entreprise, error) {
	if email == "" {
		return nil, ErrEntrepriseNotFound
	}

	var entreprise model.Entreprise
	result := r.db.Where("email = ?", email).First(&entreprise)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEntrepriseNotFound
		}
		return nil, result.Error
	}
	return &entreprise, nil
}

// Ensure creates the entreprise lazily on first contact. Safe to call on
// every login: an existing row is returned as-is, and a duplicate insert
// racing another request falls back to the committed row.
func (r *Resolver) Ensure(email, name string) (*model.Entreprise, error) {
	if email == "" {
		return nil, ErrEntrepriseNotFound
	}

	entreprise, err := r.ByEmail(email)
	if err == nil {
		return entreprise, nil
	}
	if !errors.Is(err, ErrEntrepriseNotFound) {
		return nil, err
	}

	created := model.Entreprise{Email: email, Name: name}
	if result := r.db.Create(&created); result.Error != nil {
		// Another request may have created the row between the lookup and the
		// insert; the unique email constraint rejects ours, theirs wins.
		if existing, lookupErr := r.ByEmail(email); lookupErr == nil {
			return existing, nil
		}
		return nil, result.Error
	}
	return &created, nil
}

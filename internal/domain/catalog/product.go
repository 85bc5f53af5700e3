package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
)

// Category classifies a product on the storefront
type Category string

const (
	CategorySupplement    Category = "supplement"
	CategoryOTC           Category = "otc"
	CategoryMedicalDevice Category = "medical_device"
	CategoryPrescription  Category = "prescription"
)

// IsValid checks if the category is a known Category
func (c Category) IsValid() bool {
	switch c {
	case CategorySupplement, CategoryOTC, CategoryMedicalDevice, CategoryPrescription:
		return true
	}
	return false
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL slug from a product name
func Slugify(name string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Product is a catalog entry. Identity is immutable; metadata and the active
// flag may change over the product's life.
type Product struct {
	shared.BaseEntity
	Name                 string   `gorm:"size:255;not null;index"`
	Slug                 string   `gorm:"size:255;not null;uniqueIndex"`
	Category             Category `gorm:"size:32;not null;index"`
	Description          string   `gorm:"type:text"`
	ActiveIngredients    string   `gorm:"type:text"`
	StorageCondition     string   `gorm:"size:255"`
	PrescriptionRequired bool     `gorm:"not null;default:false"`
	AgeRestriction       int      `gorm:"default:0"`
	IsActive             bool     `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(name string, category Category, prescriptionRequired bool) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown product category")
	}

	return &Product{
		BaseEntity:           shared.NewBaseEntity(),
		Name:                 name,
		Slug:                 Slugify(name),
		Category:             category,
		PrescriptionRequired: prescriptionRequired,
		IsActive:             true,
	}, nil
}

// Activate makes the product visible on the storefront
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

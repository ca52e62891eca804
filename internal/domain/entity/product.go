package entity

import (
	"maps"
	"strings"
	"time"

	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a read-only snapshot of a back-office product as the register
// sees it. The register never changes stock; the back office decrements it
// when an order is created.
type Product struct {
	ID                int64              `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name              string             `gorm:"size:255;not null;index" json:"name"`
	Reference         string             `gorm:"size:100;index" json:"reference"`
	Barcode           *string            `gorm:"size:100;index" json:"barcode,omitempty"`
	PriceInclusiveTax decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"price_ttc"`
	PriceExclusiveTax decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"price_ht"`
	TaxRate           decimal.Decimal    `gorm:"type:numeric(5,2);not null" json:"tva_rate"`
	IsVisible         bool               `gorm:"default:true" json:"is_visible"`
	StockByStore      map[enum.Store]int `gorm:"-" json:"stock_by_store"`
	StockVilleAvray   int                `gorm:"column:stock_ville_avray;default:0" json:"-"`
	StockGarches      int                `gorm:"column:stock_garches;default:0" json:"-"`
	SyncedAt          time.Time          `gorm:"index" json:"synced_at"`
}

// TableName returns the table name for the Product snapshot
func (Product) TableName() string {
	return "catalog_products"
}

// BeforeSave flattens the per-store stock map into its columns
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.StockVilleAvray = p.Stock(enum.StoreVilleAvray)
	p.StockGarches = p.Stock(enum.StoreGarches)
	return nil
}

// AfterFind rebuilds the per-store stock map from its columns
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.StockByStore = map[enum.Store]int{
		enum.StoreVilleAvray: p.StockVilleAvray,
		enum.StoreGarches:    p.StockGarches,
	}
	return nil
}

// Stock returns the available quantity in store. Unknown stores and negative
// counts read as zero.
func (p *Product) Stock(store enum.Store) int {
	n := p.StockByStore[store]
	if n < 0 {
		return 0
	}
	return n
}

func (p Product) clone() Product {
	if p.Barcode != nil {
		barcode := *p.Barcode
		p.Barcode = &barcode
	}
	p.StockByStore = maps.Clone(p.StockByStore)
	return p
}

// BarcodeValue returns the barcode or an empty string
func (p *Product) BarcodeValue() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}

// Matches reports whether the already normalized term is contained in the
// product's name, reference or barcode, ignoring case.
func (p *Product) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Reference), term) ||
		strings.Contains(strings.ToLower(p.BarcodeValue()), term)
}

// BarcodeEquals reports whether the barcode equals the normalized term
func (p *Product) BarcodeEquals(term string) bool {
	return p.Barcode != nil && strings.ToLower(*p.Barcode) == term
}

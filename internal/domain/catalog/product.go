// internal/domain/catalog/product.go
package catalog

import (
	"errors"
	"strings"
	"time"
)

// ========================================
// Enumerations (wire contract, do not rename)
// ========================================

// Storage capacity codes used as first-level variant keys.
var Storages = []string{"64", "128", "256", "512", "1024"}

// Condition codes used as second-level variant keys.
const (
	ConditionNeufSousBlister = "neuf_sous_blister"
	ConditionNeufSansBoite   = "neuf_sans_boite"
	ConditionEtatParfait     = "etat_parfait"
	ConditionTresBonEtat     = "tres_bon_etat"
)

var Conditions = []string{
	ConditionNeufSousBlister,
	ConditionNeufSansBoite,
	ConditionEtatParfait,
	ConditionTresBonEtat,
}

// Legacy condition codes (flat per-condition stock, colors are names only).
const (
	LegacyNewSealed = "new_sealed"
	LegacyNewOpen   = "new_open"
	LegacyPerfect   = "perfect"
	LegacyGood      = "good"
)

var LegacyConditions = []string{
	LegacyNewSealed,
	LegacyNewOpen,
	LegacyPerfect,
	LegacyGood,
}

func ValidStorage(s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range Storages {
		if v == s {
			return true
		}
	}
	return false
}

func ValidCondition(c string) bool {
	c = strings.TrimSpace(c)
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

func ValidLegacyCondition(c string) bool {
	c = strings.TrimSpace(c)
	for _, v := range LegacyConditions {
		if v == c {
			return true
		}
	}
	return false
}

// ========================================
// Types
// ========================================

// ColorStock is one color bucket inside a variant leaf.
type ColorStock struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// VariantLeaf is the innermost {price, colors} object reached by a
// full (storage, condition) path.
type VariantLeaf struct {
	Price       float64      `json:"price"`
	PublicPrice *float64     `json:"publicPrice,omitempty"`
	Colors      []ColorStock `json:"colors"`
}

// Variants maps storage code -> condition code -> leaf.
type Variants map[string]map[string]VariantLeaf

// LegacyCondition is the older flat-per-condition shape.
// Stock is per condition; colors carry no individual stock.
type LegacyCondition struct {
	Price  float64  `json:"price"`
	Stock  int      `json:"stock"`
	Colors []string `json:"colors"`
}

// Product is a catalog document. Exactly one of the three pricing
// shapes is authoritative; see Model().
type Product struct {
	ID          string
	Name        string
	Brand       string
	Description string
	ImageURL    string

	Variants          Variants
	AvailableStorages []string

	Conditions map[string]LegacyCondition

	// Flat fallback fields.
	Price  float64
	Stock  int
	Colors []string

	SoldCount int

	IsBestSeller    bool
	BestSellerOrder *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ========================================
// Errors
// ========================================

var (
	ErrNotFound  = errors.New("catalog: product not found")
	ErrConflict  = errors.New("catalog: product already exists")
	ErrInvalidID = errors.New("catalog: invalid id")

	ErrInvalidName      = errors.New("catalog: invalid name")
	ErrInvalidStorage   = errors.New("catalog: invalid storage code")
	ErrInvalidCondition = errors.New("catalog: invalid condition code")
	ErrAmbiguousCatalog = errors.New("catalog: variants and conditions are both populated")

	ErrSelectionRequired   = errors.New("catalog: storage and condition are required for this product")
	ErrVariantNotFound     = errors.New("catalog: variant not found")
	ErrConditionNotFound   = errors.New("catalog: condition not found")
	ErrColorNotAvailable   = errors.New("catalog: color not available")
	ErrColorNotInCondition = errors.New("catalog: color not available for condition")

	ErrInvalidQuantity   = errors.New("catalog: invalid quantity")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")

	ErrBestSellerSlotsFull    = errors.New("catalog: all best-seller slots are taken")
	ErrInvalidBestSellerOrder = errors.New("catalog: bestSellerOrder must be between 1 and 4")
	ErrNotBestSeller          = errors.New("catalog: product is not a best seller")
)

// MaxBestSellers is the number of featured slots.
const MaxBestSellers = 4

// ========================================
// Model selection
// ========================================

// ModelKind tags which pricing shape is authoritative for a product.
type ModelKind string

const (
	ModelVariants ModelKind = "variants"
	ModelLegacy   ModelKind = "conditions"
	ModelFlat     ModelKind = "flat"
)

// Model selects the authoritative pricing shape by non-emptiness,
// in variants -> conditions -> flat priority order. Callers must not
// read price/stock from a non-authoritative shape.
func (p Product) Model() ModelKind {
	if len(p.Variants) > 0 {
		return ModelVariants
	}
	if len(p.Conditions) > 0 {
		return ModelLegacy
	}
	return ModelFlat
}

// ========================================
// Normalization
// ========================================

// Normalized returns a cleaned copy of p ready for persistence:
// - trims identity fields
// - prunes unconfigured variant leaves (price <= 0, no valid color)
// - drops colors with empty names or negative stock
// - rebuilds AvailableStorages from the surviving variant keys
// - validates enum keys and the best-seller slot range
// It rejects products where variants and conditions are both populated.
func (p Product) Normalized() (Product, error) {
	out := p.Clone()

	out.ID = strings.TrimSpace(out.ID)
	out.Name = strings.TrimSpace(out.Name)
	out.Brand = strings.TrimSpace(out.Brand)
	out.Description = strings.TrimSpace(out.Description)
	out.ImageURL = strings.TrimSpace(out.ImageURL)

	if out.Name == "" {
		return Product{}, ErrInvalidName
	}

	out.Variants = pruneVariants(out.Variants)
	if err := validateVariantKeys(out.Variants); err != nil {
		return Product{}, err
	}

	out.Conditions = pruneLegacy(out.Conditions)
	if err := validateLegacyKeys(out.Conditions); err != nil {
		return Product{}, err
	}

	if len(out.Variants) > 0 && len(out.Conditions) > 0 {
		return Product{}, ErrAmbiguousCatalog
	}

	out.AvailableStorages = storageKeys(out.Variants)

	if out.Stock < 0 {
		out.Stock = 0
	}
	if out.SoldCount < 0 {
		out.SoldCount = 0
	}

	if out.BestSellerOrder != nil {
		n := *out.BestSellerOrder
		if n < 1 || n > MaxBestSellers {
			return Product{}, ErrInvalidBestSellerOrder
		}
	}

	return out, nil
}

// Clone deep-copies the product so mutation helpers can stay pure.
func (p Product) Clone() Product {
	out := p

	if p.Variants != nil {
		vs := make(Variants, len(p.Variants))
		for storage, byCond := range p.Variants {
			m := make(map[string]VariantLeaf, len(byCond))
			for cond, leaf := range byCond {
				l := leaf
				if leaf.PublicPrice != nil {
					pp := *leaf.PublicPrice
					l.PublicPrice = &pp
				}
				l.Colors = append([]ColorStock(nil), leaf.Colors...)
				m[cond] = l
			}
			vs[storage] = m
		}
		out.Variants = vs
	}

	if p.Conditions != nil {
		cs := make(map[string]LegacyCondition, len(p.Conditions))
		for code, lc := range p.Conditions {
			c := lc
			c.Colors = append([]string(nil), lc.Colors...)
			cs[code] = c
		}
		out.Conditions = cs
	}

	out.AvailableStorages = append([]string(nil), p.AvailableStorages...)
	out.Colors = append([]string(nil), p.Colors...)

	if p.BestSellerOrder != nil {
		n := *p.BestSellerOrder
		out.BestSellerOrder = &n
	}

	return out
}

// TotalStock sums the per-color stock of a leaf.
func (l VariantLeaf) TotalStock() int {
	total := 0
	for _, c := range l.Colors {
		if c.Stock > 0 {
			total += c.Stock
		}
	}
	return total
}

// NormalizeColor is the canonical key for color matching.
func NormalizeColor(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func pruneVariants(vs Variants) Variants {
	if len(vs) == 0 {
		return nil
	}
	out := make(Variants, len(vs))
	for storage, byCond := range vs {
		storage = strings.TrimSpace(storage)
		kept := make(map[string]VariantLeaf, len(byCond))
		for cond, leaf := range byCond {
			cond = strings.TrimSpace(cond)

			colors := make([]ColorStock, 0, len(leaf.Colors))
			for _, c := range leaf.Colors {
				name := strings.TrimSpace(c.Name)
				if name == "" || c.Stock < 0 {
					continue
				}
				colors = append(colors, ColorStock{Name: name, Stock: c.Stock})
			}
			leaf.Colors = colors

			// A leaf is configured only with a positive price and at
			// least one color bucket.
			if leaf.Price <= 0 || len(leaf.Colors) == 0 {
				continue
			}
			kept[cond] = leaf
		}
		if len(kept) > 0 {
			out[storage] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func pruneLegacy(cs map[string]LegacyCondition) map[string]LegacyCondition {
	if len(cs) == 0 {
		return nil
	}
	out := make(map[string]LegacyCondition, len(cs))
	for code, lc := range cs {
		code = strings.TrimSpace(code)
		if lc.Price <= 0 {
			continue
		}
		if lc.Stock < 0 {
			lc.Stock = 0
		}
		colors := make([]string, 0, len(lc.Colors))
		for _, c := range lc.Colors {
			c = strings.TrimSpace(c)
			if c != "" {
				colors = append(colors, c)
			}
		}
		lc.Colors = colors
		out[code] = lc
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateVariantKeys(vs Variants) error {
	for storage, byCond := range vs {
		if !ValidStorage(storage) {
			return ErrInvalidStorage
		}
		for cond := range byCond {
			if !ValidCondition(cond) {
				return ErrInvalidCondition
			}
		}
	}
	return nil
}

func validateLegacyKeys(cs map[string]LegacyCondition) error {
	for code := range cs {
		if !ValidLegacyCondition(code) {
			return ErrInvalidCondition
		}
	}
	return nil
}

// storageKeys returns variant storage keys in enumeration order.
func storageKeys(vs Variants) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, s := range Storages {
		if _, ok := vs[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

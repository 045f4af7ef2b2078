// internal/domain/catalog/resolve.go
package catalog

import "strings"

// Selection is the buyer's requested configuration. Storage/Condition
// address a variant leaf; Condition alone addresses a legacy bucket;
// everything may be empty for flat products.
type Selection struct {
	Storage   string `json:"storage,omitempty"`
	Condition string `json:"condition,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (s Selection) normalized() Selection {
	return Selection{
		Storage:   strings.TrimSpace(s.Storage),
		Condition: strings.TrimSpace(s.Condition),
		Color:     strings.TrimSpace(s.Color),
	}
}

// Quote is the result of resolving a selection against a product.
type Quote struct {
	UnitPrice      float64 `json:"unitPrice"`
	AvailableStock int     `json:"availableStock"`
}

// Resolve returns the effective unit price and available stock for a
// selection, reading only the authoritative pricing shape.
//
// Variant products require storage+condition; with no color the stock
// is the aggregate across colors (display only, not purchasable as
// such). Legacy products require a condition; a color, when given,
// must be one of the condition's color names. Flat products ignore
// the selection entirely.
func Resolve(p Product, sel Selection) (Quote, error) {
	sel = sel.normalized()

	switch p.Model() {
	case ModelVariants:
		if sel.Storage == "" || sel.Condition == "" {
			return Quote{}, ErrSelectionRequired
		}
		byCond, ok := p.Variants[sel.Storage]
		if !ok {
			return Quote{}, ErrVariantNotFound
		}
		leaf, ok := byCond[sel.Condition]
		if !ok {
			return Quote{}, ErrVariantNotFound
		}
		q := Quote{UnitPrice: leaf.Price}
		if sel.Color == "" {
			q.AvailableStock = leaf.TotalStock()
			return q, nil
		}
		cs, ok := leaf.colorByName(sel.Color)
		if !ok {
			return Quote{}, ErrColorNotAvailable
		}
		q.AvailableStock = cs.Stock
		return q, nil

	case ModelLegacy:
		if sel.Condition == "" {
			return Quote{}, ErrSelectionRequired
		}
		lc, ok := p.Conditions[sel.Condition]
		if !ok {
			return Quote{}, ErrConditionNotFound
		}
		if sel.Color != "" && !containsColor(lc.Colors, sel.Color) {
			return Quote{}, ErrColorNotInCondition
		}
		return Quote{UnitPrice: lc.Price, AvailableStock: lc.Stock}, nil

	default:
		// Flat fallback: color, if any, is informational.
		return Quote{UnitPrice: p.Price, AvailableStock: p.Stock}, nil
	}
}

// LowestPrice is the listing display price: the minimum price across
// stocked leaves of the active model. When every leaf is sold out it
// falls back to the minimum configured price, and flat products use
// the flat price directly.
func LowestPrice(p Product) float64 {
	switch p.Model() {
	case ModelVariants:
		stocked, any := 0.0, 0.0
		for _, byCond := range p.Variants {
			for _, leaf := range byCond {
				any = minPositive(any, leaf.Price)
				if leaf.TotalStock() > 0 {
					stocked = minPositive(stocked, leaf.Price)
				}
			}
		}
		if stocked > 0 {
			return stocked
		}
		return any

	case ModelLegacy:
		stocked, any := 0.0, 0.0
		for _, lc := range p.Conditions {
			any = minPositive(any, lc.Price)
			if lc.Stock > 0 {
				stocked = minPositive(stocked, lc.Price)
			}
		}
		if stocked > 0 {
			return stocked
		}
		return any

	default:
		return p.Price
	}
}

// InStock reports whether any bucket of the active model has stock,
// an OR across the whole structure.
func InStock(p Product) bool {
	switch p.Model() {
	case ModelVariants:
		for _, byCond := range p.Variants {
			for _, leaf := range byCond {
				if leaf.TotalStock() > 0 {
					return true
				}
			}
		}
		return false
	case ModelLegacy:
		for _, lc := range p.Conditions {
			if lc.Stock > 0 {
				return true
			}
		}
		return false
	default:
		return p.Stock > 0
	}
}

func (l VariantLeaf) colorByName(name string) (ColorStock, bool) {
	key := NormalizeColor(name)
	for _, c := range l.Colors {
		if NormalizeColor(c.Name) == key {
			return c, true
		}
	}
	return ColorStock{}, false
}

func containsColor(colors []string, name string) bool {
	key := NormalizeColor(name)
	for _, c := range colors {
		if NormalizeColor(c) == key {
			return true
		}
	}
	return false
}

func minPositive(cur, candidate float64) float64 {
	if candidate <= 0 {
		return cur
	}
	if cur <= 0 || candidate < cur {
		return candidate
	}
	return cur
}

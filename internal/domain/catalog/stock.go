// internal/domain/catalog/stock.go
package catalog

// Pure stock mutation. Both functions return a new Product and leave
// the input untouched; persisting the result (and doing so atomically)
// is the repository's job.

// Decrease subtracts qty from the leaf addressed by sel and adds qty
// to SoldCount. It never performs a partial mutation: on any error the
// input product is returned unchanged.
//
// Variant products are decremented per color, so a color is required.
func Decrease(p Product, sel Selection, qty int) (Product, error) {
	if qty <= 0 {
		return p, ErrInvalidQuantity
	}
	sel = sel.normalized()

	switch p.Model() {
	case ModelVariants:
		if !ValidCondition(sel.Condition) {
			return p, ErrInvalidCondition
		}
		if sel.Storage == "" || sel.Color == "" {
			return p, ErrSelectionRequired
		}
		byCond, ok := p.Variants[sel.Storage]
		if !ok {
			return p, ErrVariantNotFound
		}
		leaf, ok := byCond[sel.Condition]
		if !ok {
			return p, ErrVariantNotFound
		}
		idx := -1
		for i, c := range leaf.Colors {
			if NormalizeColor(c.Name) == NormalizeColor(sel.Color) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return p, ErrColorNotAvailable
		}
		if leaf.Colors[idx].Stock < qty {
			return p, ErrInsufficientStock
		}

		out := p.Clone()
		out.Variants[sel.Storage][sel.Condition].Colors[idx].Stock -= qty
		out.SoldCount += qty
		return out, nil

	case ModelLegacy:
		if !ValidLegacyCondition(sel.Condition) {
			return p, ErrInvalidCondition
		}
		lc, ok := p.Conditions[sel.Condition]
		if !ok {
			return p, ErrConditionNotFound
		}
		if lc.Stock < qty {
			return p, ErrInsufficientStock
		}

		out := p.Clone()
		lc = out.Conditions[sel.Condition]
		lc.Stock -= qty
		out.Conditions[sel.Condition] = lc
		out.SoldCount += qty
		return out, nil

	default:
		if p.Stock < qty {
			return p, ErrInsufficientStock
		}
		out := p.Clone()
		out.Stock -= qty
		out.SoldCount += qty
		return out, nil
	}
}

// Increase is the compensating inverse of Decrease: it restores qty
// to the addressed leaf and rolls SoldCount back (never below zero).
func Increase(p Product, sel Selection, qty int) (Product, error) {
	if qty <= 0 {
		return p, ErrInvalidQuantity
	}
	sel = sel.normalized()

	switch p.Model() {
	case ModelVariants:
		if !ValidCondition(sel.Condition) {
			return p, ErrInvalidCondition
		}
		if sel.Storage == "" || sel.Color == "" {
			return p, ErrSelectionRequired
		}
		byCond, ok := p.Variants[sel.Storage]
		if !ok {
			return p, ErrVariantNotFound
		}
		leaf, ok := byCond[sel.Condition]
		if !ok {
			return p, ErrVariantNotFound
		}
		idx := -1
		for i, c := range leaf.Colors {
			if NormalizeColor(c.Name) == NormalizeColor(sel.Color) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return p, ErrColorNotAvailable
		}

		out := p.Clone()
		out.Variants[sel.Storage][sel.Condition].Colors[idx].Stock += qty
		out.SoldCount = maxInt(0, out.SoldCount-qty)
		return out, nil

	case ModelLegacy:
		if !ValidLegacyCondition(sel.Condition) {
			return p, ErrInvalidCondition
		}
		lc, ok := p.Conditions[sel.Condition]
		if !ok {
			return p, ErrConditionNotFound
		}

		out := p.Clone()
		lc = out.Conditions[sel.Condition]
		lc.Stock += qty
		out.Conditions[sel.Condition] = lc
		out.SoldCount = maxInt(0, out.SoldCount-qty)
		return out, nil

	default:
		out := p.Clone()
		out.Stock += qty
		out.SoldCount = maxInt(0, out.SoldCount-qty)
		return out, nil
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

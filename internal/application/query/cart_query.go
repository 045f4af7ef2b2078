// internal/application/query/cart_query.go
package query

import (
	"context"
	"errors"

	catalogdom "remarket/internal/domain/catalog"
)

// The cart itself lives on the client (product id + selection + qty,
// keyed by the combination so two configurations of one product stay
// distinct lines). This query re-prices those lines against the live
// catalog before checkout.

// CartLine is one client-held cart entry.
type CartLine struct {
	ProductID string `json:"productId"`
	Storage   string `json:"storage,omitempty"`
	Condition string `json:"condition,omitempty"`
	Color     string `json:"color,omitempty"`
	Qty       int    `json:"qty"`
}

// CartLineQuote is the per-line revalidation result. Lines are
// best-effort: a stale line reports its problem instead of failing
// the whole cart.
type CartLineQuote struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name,omitempty"`
	UnitPrice      float64 `json:"unitPrice"`
	AvailableStock int     `json:"availableStock"`
	Qty            int     `json:"qty"`
	OK             bool    `json:"ok"`
	Reason         string  `json:"reason,omitempty"`
}

// CartQuery re-quotes client cart lines.
type CartQuery struct {
	repo catalogdom.Repository
}

func NewCartQuery(repo catalogdom.Repository) *CartQuery {
	return &CartQuery{repo: repo}
}

func (q *CartQuery) QuoteLines(ctx context.Context, lines []CartLine) ([]CartLineQuote, error) {
	if q == nil || q.repo == nil {
		return nil, ErrCatalogQueryNotConfigured
	}

	out := make([]CartLineQuote, 0, len(lines))
	for _, line := range lines {
		lq := CartLineQuote{ProductID: line.ProductID, Qty: line.Qty}

		if line.Qty < 1 {
			lq.Reason = "invalid quantity"
			out = append(out, lq)
			continue
		}

		p, err := q.repo.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalogdom.ErrNotFound) {
				lq.Reason = "product not found"
				out = append(out, lq)
				continue
			}
			return nil, err
		}
		lq.Name = p.Name

		quote, err := catalogdom.Resolve(p, catalogdom.Selection{
			Storage:   line.Storage,
			Condition: line.Condition,
			Color:     line.Color,
		})
		if err != nil {
			lq.Reason = err.Error()
			out = append(out, lq)
			continue
		}

		lq.UnitPrice = quote.UnitPrice
		lq.AvailableStock = quote.AvailableStock
		lq.OK = quote.AvailableStock >= line.Qty
		if !lq.OK {
			lq.Reason = "insufficient stock"
		}
		out = append(out, lq)
	}

	return out, nil
}

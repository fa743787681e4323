// Package pipeline implements the opportunity pipeline engine: stage
// registry, opportunity store, engagement log, valuation, and forecasting.
// All business rules live here; the types.Store underneath is a dumb durable
// collection.
package pipeline

import "github.com/agrovista/fieldops/pkg/types"

// PriceLookup resolves the current unit price of a catalog item. The second
// return value is false when the item cannot be resolved (removed from the
// catalog or deactivated).
type PriceLookup func(itemID string) (float64, bool)

// ComputeTotal values an opportunity's activity groups. The unit price
// recorded when a line was added (PriceAtTime) governs; the live lookup is
// consulted only for lines carrying no snapshot. A line whose item cannot be
// resolved contributes zero rather than failing the whole computation.
//
// ComputeTotal has no side effects and is safe for concurrent callers.
func ComputeTotal(groups []types.ActivityGroup, lookup PriceLookup) float64 {
	total := 0.0
	for _, g := range groups {
		for _, item := range g.Items {
			price := item.PriceAtTime
			if price == 0 && lookup != nil {
				current, ok := lookup(item.ItemID)
				if !ok {
					continue
				}
				price = current
			}
			total += price * item.Quantity
		}
	}
	return total
}

// NewLineItem builds a line item, capturing the current catalog price as the
// PriceAtTime snapshot. An unresolvable item records a zero snapshot; it is
// repriced if the item reappears in the catalog.
func NewLineItem(itemID string, quantity float64, lookup PriceLookup) types.LineItem {
	item := types.LineItem{ItemID: itemID, Quantity: quantity}
	if lookup != nil {
		if price, ok := lookup(itemID); ok {
			item.PriceAtTime = price
		}
	}
	return item
}

// PriceFromCatalog adapts a catalog table into a PriceLookup. Deactivated
// items do not resolve, so their lines fall back to their recorded snapshot.
func PriceFromCatalog(catalog types.CatalogTable) PriceLookup {
	return func(itemID string) (float64, bool) {
		item, err := catalog.Get(itemID)
		if err != nil || !item.Active {
			return 0, false
		}
		return item.Price, true
	}
}

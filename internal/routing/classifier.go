// Package routing partitions order line items into ticket groups.
package routing

import "github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"

// Catalog resolves an item id to its routing group. The menu catalog
// implements this; tests use map-backed fakes.
type Catalog interface {
	GroupFor(itemID int) (model.RoutingGroup, bool)
}

// Classify splits items into per-group lists. The output is a disjoint,
// exhaustive partition of the input: items whose catalog entry is missing,
// or whose group is unrecognized, land in the kitchen group rather than
// being dropped. Groups without items are absent from the result.
func Classify(items []model.OrderItem, catalog Catalog) map[model.RoutingGroup][]model.OrderItem {
	groups := make(map[model.RoutingGroup][]model.OrderItem)
	for _, item := range items {
		group := model.GroupKitchen
		if g, ok := catalog.GroupFor(item.ID); ok && model.KnownGroup(g) {
			group = g
		}
		groups[group] = append(groups[group], item)
	}
	return groups
}

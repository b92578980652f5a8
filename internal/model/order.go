package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoutingGroup is the classification that decides which physical ticket a
// line item ends up on. Unknown groups collapse to GroupKitchen.
type RoutingGroup string

const (
	GroupKitchen RoutingGroup = "kitchen"
	GroupDrinks  RoutingGroup = "drinks"
)

// KnownGroup reports whether g is one of the groups the classifier routes
// to. Anything else falls back to the kitchen.
func KnownGroup(g RoutingGroup) bool {
	return g == GroupKitchen || g == GroupDrinks
}

// OrderItem is one line of an active order. The routing group is not stored
// here; it is resolved from the menu catalog at classification time.
type OrderItem struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Surcharge decimal.Decimal `json:"surcharge,omitempty"`
}

// LineTotal is UnitPrice*Quantity plus the surcharge.
func (it OrderItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Add(it.Surcharge)
}

// Order is an active order owned by one table or counter slot. Items stay
// mutable until the order is finalized and printed.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	Table     string      `json:"table"`
	Location  string      `json:"location"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Subtotal sums UnitPrice*Quantity over all items.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// SurchargeTotal sums the per-line surcharges.
func (o *Order) SurchargeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Surcharge)
	}
	return total
}

// Total is Subtotal plus SurchargeTotal.
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal().Add(o.SurchargeTotal())
}

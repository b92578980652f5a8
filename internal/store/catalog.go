// Package store holds the simple persistence collaborators: the menu
// catalog and the finalized-bill records, both flat JSON files.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

// MenuEntry is one catalog row. Group is the routing tag consumed by the
// classifier; it may be absent, in which case items route to the kitchen.
type MenuEntry struct {
	ID    int                `json:"id"`
	Name  string             `json:"name"`
	Price decimal.Decimal    `json:"price"`
	Group model.RoutingGroup `json:"group,omitempty"`
}

// Catalog is the loaded menu, indexed by item id. It is read-only after
// load and satisfies routing.Catalog.
type Catalog struct {
	entries map[int]MenuEntry
	ordered []MenuEntry
}

// LoadCatalog reads the catalog JSON file (an array of MenuEntry).
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var entries []MenuEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(entries), nil
}

// NewCatalog builds a catalog from entries, keeping their order for menu
// listings.
func NewCatalog(entries []MenuEntry) *Catalog {
	c := &Catalog{entries: make(map[int]MenuEntry, len(entries)), ordered: entries}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	return c
}

// GroupFor resolves an item id to its routing group.
func (c *Catalog) GroupFor(itemID int) (model.RoutingGroup, bool) {
	e, ok := c.entries[itemID]
	if !ok || e.Group == "" {
		return "", false
	}
	return e.Group, true
}

// Entry returns the catalog row for an item id.
func (c *Catalog) Entry(itemID int) (MenuEntry, bool) {
	e, ok := c.entries[itemID]
	return e, ok
}

// Entries lists the catalog in file order.
func (c *Catalog) Entries() []MenuEntry {
	return c.ordered
}

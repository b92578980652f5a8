package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

// BillRecord is the persisted form of a finalized order.
type BillRecord struct {
	ID        uuid.UUID         `json:"id"`
	OrderID   uuid.UUID         `json:"orderId"`
	Table     string            `json:"table"`
	Location  string            `json:"location"`
	Items     []model.OrderItem `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Surcharge decimal.Decimal   `json:"surcharge"`
	Total     decimal.Decimal   `json:"total"`
	PrintedAt time.Time         `json:"printedAt"`
}

// Store keeps active orders in memory and appends finalized bills to a
// JSON file, with an archival PDF copy per bill.
type Store struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*model.Order
	billsFile string
	pdfDir    string
	log       *zap.Logger
}

func NewStore(billsFile, pdfDir string, log *zap.Logger) *Store {
	return &Store{
		orders:    make(map[uuid.UUID]*model.Order),
		billsFile: billsFile,
		pdfDir:    pdfDir,
		log:       log,
	}
}

// CreateOrder opens a new active order for a table/counter slot.
func (s *Store) CreateOrder(table, location string) model.Order {
	order := &model.Order{
		ID:        uuid.New(),
		Table:     table,
		Location:  location,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()
	return *order
}

// Order returns a snapshot of the active order by id. The live order never
// leaves the store; callers get a copy they can marshal without racing
// concurrent AddItem/RemoveItem calls.
func (s *Store) Order(id uuid.UUID) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return snapshot(o), true
}

// Orders lists snapshots of the active orders.
func (s *Store) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		list = append(list, snapshot(o))
	}
	return list
}

// AddItem appends a line item; an existing line with the same item id has
// its quantity bumped instead. Returns the updated order snapshot.
func (s *Store) AddItem(orderID uuid.UUID, item model.OrderItem) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s not found", orderID)
	}
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i].Quantity += item.Quantity
			order.Items[i].Surcharge = order.Items[i].Surcharge.Add(item.Surcharge)
			return snapshot(order), nil
		}
	}
	order.Items = append(order.Items, item)
	return snapshot(order), nil
}

// RemoveItem drops a line item by item id. Returns the updated order snapshot.
func (s *Store) RemoveItem(orderID uuid.UUID, itemID int) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s not found", orderID)
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items = append(order.Items[:i], order.Items[i+1:]...)
			return snapshot(order), nil
		}
	}
	return model.Order{}, fmt.Errorf("item %d not on order %s", itemID, orderID)
}

// snapshot copies an order with its own Items backing array, so the copy
// can be read after the store lock is released.
func snapshot(o *model.Order) model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return c
}

// Finalize closes an active order: the bill record is appended to the bills
// file, an archival PDF is written, and the order leaves the active set.
// The PDF is best-effort; a write failure there is logged, not returned.
func (s *Store) Finalize(orderID uuid.UUID) (BillRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return BillRecord{}, fmt.Errorf("order %s not found", orderID)
	}
	record := BillRecord{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Table:     order.Table,
		Location:  order.Location,
		Items:     append([]model.OrderItem(nil), order.Items...),
		Subtotal:  order.Subtotal(),
		Surcharge: order.SurchargeTotal(),
		Total:     order.Total(),
		PrintedAt: time.Now(),
	}

	if err := s.appendBill(record); err != nil {
		return BillRecord{}, err
	}
	if path, err := WriteBillPDF(record, s.pdfDir); err != nil {
		s.log.Warn("bill PDF not written", zap.Error(err))
	} else {
		s.log.Debug("bill PDF archived", zap.String("path", path))
	}

	delete(s.orders, orderID)
	return record, nil
}

// appendBill rewrites the bills file atomically: load existing records,
// append, write to a temp file, rename into place.
func (s *Store) appendBill(record BillRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.billsFile), 0755); err != nil {
		return fmt.Errorf("create bills directory: %w", err)
	}

	var records []BillRecord
	if data, err := os.ReadFile(s.billsFile); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse bills file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read bills file: %w", err)
	}

	records = append(records, record)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.billsFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write bills file: %w", err)
	}
	return os.Rename(tmp, s.billsFile)
}

// Bills loads the persisted bill records.
func (s *Store) Bills() ([]BillRecord, error) {
	data, err := os.ReadFile(s.billsFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bills file: %w", err)
	}
	var records []BillRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse bills file: %w", err)
	}
	return records, nil
}

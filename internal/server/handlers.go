package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

func (s *Server) listDevices(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.ListDevices(c.Request.Context()))
}

func (s *Server) refreshDevices(c *gin.Context) {
	if _, err := s.registry.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.svc.ListDevices(c.Request.Context()))
}

func (s *Server) testDevice(c *gin.Context) {
	probe, err := s.svc.TestDevice(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "probe": probe})
		return
	}
	c.JSON(http.StatusOK, probe)
}

type printRequest struct {
	Content string `json:"content" binding:"required"`
	Device  string `json:"device"`
}

func (s *Server) printTicket(c *gin.Context) {
	var req printRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := s.svc.PrintTicket(c.Request.Context(), req.Content, req.Device)
	c.JSON(http.StatusOK, result)
}

// printOrderPayload accepts a full order in the request body, for UI shells
// that keep the active order client-side.
func (s *Server) printOrderPayload(c *gin.Context) {
	var order model.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(order.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order has no items"})
		return
	}
	c.JSON(http.StatusOK, s.svc.PrintOrderTickets(c.Request.Context(), &order, s.catalog))
}

func (s *Server) listMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": s.catalog.Entries()})
}

type createOrderRequest struct {
	Table    string `json:"table"`
	Location string `json:"location"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order := s.store.CreateOrder(req.Table, req.Location)
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": s.store.Orders()})
}

func (s *Server) getOrder(c *gin.Context) {
	order, ok := s.orderFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

type addItemRequest struct {
	ID        int             `json:"id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

func (s *Server) addItem(c *gin.Context) {
	order, ok := s.orderFromParam(c)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, ok := s.catalog.Entry(req.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not in catalog"})
		return
	}
	item := model.OrderItem{
		ID:        entry.ID,
		Name:      entry.Name,
		UnitPrice: entry.Price,
		Quantity:  req.Quantity,
		Surcharge: req.Surcharge,
	}
	updated, err := s.store.AddItem(order.ID, item)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) removeItem(c *gin.Context) {
	order, ok := s.orderFromParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	updated, err := s.store.RemoveItem(order.ID, itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) printOrder(c *gin.Context) {
	order, ok := s.orderFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.svc.PrintOrderTickets(c.Request.Context(), &order, s.catalog))
}

type finalizeRequest struct {
	Device string `json:"device"`
}

// finalizeOrder prints the customer bill, persists the bill record (with
// its archival PDF) and retires the active order. The print result rides
// along in the response; a failed print does not block finalization.
func (s *Server) finalizeOrder(c *gin.Context) {
	order, ok := s.orderFromParam(c)
	if !ok {
		return
	}
	var req finalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result := s.svc.PrintBill(c.Request.Context(), &order, req.Device)
	record, err := s.store.Finalize(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "print": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": record, "print": result})
}

func (s *Server) listBills(c *gin.Context) {
	bills, err := s.store.Bills()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (s *Server) orderFromParam(c *gin.Context) (model.Order, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return model.Order{}, false
	}
	order, ok := s.store.Order(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return model.Order{}, false
	}
	return order, true
}

// Package server exposes the boundary operations to the UI layer over HTTP
// plus a websocket event feed.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/printing"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/registry"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/store"
)

// Server binds the print service and the persistence collaborators to HTTP.
type Server struct {
	svc      *printing.Service
	registry *registry.Registry
	store    *store.Store
	catalog  *store.Catalog
	hub      *Hub
	log      *zap.Logger
}

func New(
	svc *printing.Service,
	reg *registry.Registry,
	st *store.Store,
	catalog *store.Catalog,
	hub *Hub,
	log *zap.Logger,
) *Server {
	return &Server{svc: svc, registry: reg, store: st, catalog: catalog, hub: hub, log: log}
}

// Router wires all routes onto a gin engine.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/devices", s.listDevices)
	r.POST("/devices/refresh", s.refreshDevices)
	r.GET("/devices/:name/test", s.testDevice)

	r.POST("/print", s.printTicket)
	r.POST("/print/order", s.printOrderPayload)

	r.GET("/menu", s.listMenu)

	r.POST("/orders", s.createOrder)
	r.GET("/orders", s.listOrders)
	r.GET("/orders/:id", s.getOrder)
	r.POST("/orders/:id/items", s.addItem)
	r.DELETE("/orders/:id/items/:itemID", s.removeItem)
	r.POST("/orders/:id/print", s.printOrder)
	r.POST("/orders/:id/finalize", s.finalizeOrder)

	r.GET("/bills", s.listBills)

	r.GET("/ws/events", s.hub.Handle)

	return r
}

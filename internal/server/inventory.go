package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/mercatohq/mercato/internal/inventory/domain"
)

func (s *Server) registerInventoryRoutes() {
	s.engine.POST("/inventory", s.CreateInventory)
	s.engine.GET("/inventory/:product_id", s.GetInventory)
	s.engine.PUT("/inventory/:product_id", s.UpdateInventory)
	s.engine.POST("/inventory/reserve", s.ReserveStock)
	s.engine.POST("/inventory/release", s.ReleaseStock)
	s.engine.POST("/inventory/confirm", s.ConfirmDeduction)
}

func (s *Server) CreateInventory(c *gin.Context) {
	var req inventorydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.inventorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInventory(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("product_id"))
	resp, err := s.inventorySvc.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInventory(c *gin.Context) {
	var req struct {
		Quantity *int64 `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	productID := strings.TrimSpace(c.Param("product_id"))
	resp, err := s.inventorySvc.UpdateStock(c.Request.Context(), productID, *req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReserveStock(c *gin.Context) {
	var req inventorydomain.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.inventorySvc.Reserve(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reserved": true}})
}

func (s *Server) ReleaseStock(c *gin.Context) {
	var req inventorydomain.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.inventorySvc.Release(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"released": true}})
}

func (s *Server) ConfirmDeduction(c *gin.Context) {
	var req inventorydomain.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.inventorySvc.ConfirmDeduction(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"confirmed": true}})
}

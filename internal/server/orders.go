package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/mercatohq/mercato/internal/order/domain"
)

func (s *Server) registerOrderRoutes() {
	s.engine.POST("/orders", s.PlaceOrder)
	s.engine.GET("/orders/:id", s.GetOrder)
	s.engine.PATCH("/orders/:id", s.UpdateOrderStatus)
	s.engine.GET("/orders/user/:user_id", s.ListUserOrders)
}

func (s *Server) PlaceOrder(c *gin.Context) {
	var req orderdomain.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp.Status == orderdomain.StatusFailed {
		AbortWithError(c, ErrOrderRejected)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	orderID := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUserOrders(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	resp, err := s.orderSvc.GetOrdersForUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/mercatohq/mercato/internal/payment/domain"
)

func (s *Server) registerPaymentRoutes() {
	s.engine.POST("/payments", s.ProcessPayment)
	s.engine.GET("/payments/order/:order_id", s.GetPaymentByOrder)
}

func (s *Server) ProcessPayment(c *gin.Context) {
	var req paymentdomain.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.paymentSvc.Process(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByOrder(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))
	resp, err := s.paymentSvc.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

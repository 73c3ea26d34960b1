package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	credentialdomain "github.com/mercatohq/mercato/internal/credential/domain"
)

func (s *Server) registerCredentialRoutes() {
	s.engine.POST("/keys", s.IssueKey)
	s.engine.POST("/keys/verify", s.VerifyKey)
	s.engine.GET("/orders/:id/keys", s.ListOrderKeys)
	s.engine.GET("/users/:id/keys", s.ListUserKeys)
}

func (s *Server) IssueKey(c *gin.Context) {
	var req credentialdomain.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.credentialSvc.Issue(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyKey(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.credentialSvc.Verify(c.Request.Context(), req.Key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrderKeys(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("id"))
	resp, err := s.credentialSvc.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUserKeys(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	resp, err := s.credentialSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetLatestRelease(c *gin.Context) {
	latest, err := s.releaseSvc.Latest(c.Request.Context(), c.Query("platform"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": latest})
}

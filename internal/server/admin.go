package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type purgeCacheRequest struct {
	CacheKey string `json:"cacheKey"`
}

// PurgeCache drops cached dashboard payloads, either one scope or all.
func (s *Server) PurgeCache(c *gin.Context) {
	var req purgeCacheRequest
	_ = c.ShouldBindJSON(&req)

	if key := strings.TrimSpace(req.CacheKey); key != "" {
		s.dashboardSvc.InvalidateCacheKey(key)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "purged": key})
		return
	}

	s.dashboardSvc.InvalidateCache()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "purged": "all"})
}

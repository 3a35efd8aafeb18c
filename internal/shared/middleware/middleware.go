package middleware

import (
	"net/http"
	"time"

	"floorly/internal/shared/utils/response"
	"floorly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrgIDKey is the gin context key the org scope is stored under
const OrgIDKey = "org_id"

// OrgScope extracts the tenant from the X-Org-ID header. Every floor route
// operates inside exactly one org; requests without a valid org are rejected
// before they reach a controller.
func OrgScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Org-ID")
		if raw == "" {
			response.RespondJSON(c, "error", http.StatusBadRequest, "X-Org-ID header is required", nil, nil)
			c.Abort()
			return
		}

		orgID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "X-Org-ID must be a valid UUID", nil, nil)
			c.Abort()
			return
		}

		c.Set(OrgIDKey, orgID)
		c.Next()
	}
}

// GetOrgID returns the org scope set by OrgScope
func GetOrgID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(OrgIDKey)
	if !exists {
		return uuid.Nil, false
	}
	orgID, ok := value.(uuid.UUID)
	return orgID, ok
}

// RequestLogger logs each request with latency and status
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}

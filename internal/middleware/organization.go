package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// OrganizationIDKey is the context key for the calling organization
	OrganizationIDKey = "organization_id"
	// OrganizationIDHeader is the HTTP header carrying the organization ID
	OrganizationIDHeader = "X-Organization-ID"
)

// Organization requires every request to name its organization and scopes
// the request logger to it. Authentication happens upstream; the header is
// trusted as given.
func Organization() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := strings.TrimSpace(c.GetHeader(OrganizationIDHeader))
		if orgID == "" {
			if log := GetLogger(c); log != nil {
				log.Warn("Request without organization", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			}
			abortWithError(c, http.StatusBadRequest, "BAD_REQUEST", OrganizationIDHeader+" header is required")
			return
		}

		c.Set(OrganizationIDKey, orgID)
		if log := GetLogger(c); log != nil {
			c.Set(LoggerKey, log.WithOrganization(orgID))
		}

		c.Next()
	}
}

// GetOrganizationID retrieves the organization ID from the Gin context.
// Returns an empty string if not found.
func GetOrganizationID(c *gin.Context) string {
	if orgID, exists := c.Get(OrganizationIDKey); exists {
		if id, ok := orgID.(string); ok {
			return id
		}
	}
	return ""
}

// abortWithError writes the standard error envelope and stops the chain.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": GetRequestID(c),
		},
	})
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger-service/internal/models"
)

const (
	// OrganizationHeader scopes every request to one organization
	OrganizationHeader = "X-Organization-ID"

	organizationKey = "organization_id"
)

// RequireOrganization rejects any request without an X-Organization-ID
// header. Fail-closed: there is no fallback organization.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader(OrganizationHeader)
		if orgID == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "MISSING_ORGANIZATION_ID",
					Message: "X-Organization-ID header is required",
				},
			})
			c.Abort()
			return
		}

		c.Set(organizationKey, orgID)
		c.Next()
	}
}

// GetOrganizationID returns the organization id set by RequireOrganization
func GetOrganizationID(c *gin.Context) string {
	return c.GetString(organizationKey)
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/shopkpi/shopkpi/internal/dashboard/domain"
)

func (s *Server) GetDashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req dashboarddomain.GetDashboardRequest
	if user.IsAdmin() {
		userID, err := parseOptionalSnowflakeID(c.Query("user_id"))
		if err != nil {
			AbortWithError(c, newValidationError("user_id", "invalid_snowflake_id", "invalid value"))
			return
		}
		req.UserID = userID
	} else {
		req.UserID = &user.ID
	}

	data, err := s.dashboardSvc.GetDashboard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

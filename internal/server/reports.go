package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/shopkpi/shopkpi/internal/report/domain"
)

func (s *Server) CreateReport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reportdomain.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.reportSvc.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// New rows change every window aggregate, so drop cached dashboards.
	s.dashboardSvc.InvalidateCache()

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListReports(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reportdomain.ListReportsRequest
	if user.IsAdmin() {
		userID, err := parseOptionalSnowflakeID(c.Query("user_id"))
		if err != nil {
			AbortWithError(c, newValidationError("user_id", "invalid_snowflake_id", "invalid value"))
			return
		}
		req.UserID = userID
	} else {
		// Non-admin callers only see their own rows.
		req.UserID = &user.ID
	}

	from, err := parseOptionalDate(c.Query("from"))
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_date", "invalid value"))
		return
	}
	to, err := parseOptionalDate(c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_date", "invalid value"))
		return
	}
	req.From, req.To = from, to

	reports, err := s.reportSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/storage"
)

// handleHealthCheck handles health check requests
func (s *Server) handleHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	overallStatus := "healthy"
	statusCode := http.StatusOK

	response := gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC(),
		"service":   "errorlog-api",
	}

	if s.store != nil {
		storeHealth := s.store.HealthCheck(ctx)
		response["storage"] = storeHealth
		if storeHealth.Status != "healthy" {
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
			response["status"] = overallStatus
		}
	}

	response["metrics"] = s.logger.Metrics().GetSnapshot()

	c.JSON(statusCode, response)
}

// handleMetrics handles metrics requests
func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":   s.logger.Metrics().GetSnapshot(),
		"timestamp": time.Now().UTC(),
	})
}

// handleSummary returns the running error counters
func (s *Server) handleSummary(c *gin.Context) {
	total, byComponent, bySeverity := s.logger.Totals()

	c.JSON(http.StatusOK, gin.H{
		"total_errors":        total,
		"errors_by_component": byComponent,
		"errors_by_severity":  bySeverity,
		"timestamp":           time.Now().UTC(),
	})
}

// handleDigest returns the AI debugging digest as plain text
func (s *Server) handleDigest(c *gin.Context) {
	content, err := s.logger.DigestContent()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "DIGEST_UNAVAILABLE",
				"message": "No digest has been generated yet",
				"details": err.Error(),
			},
		})
		return
	}

	c.String(http.StatusOK, content)
}

// handleRecentErrors returns the most recent error records from the
// dated log files
func (s *Server) handleRecentErrors(c *gin.Context) {
	limit := parseIntParam(c, "limit", 10, 1, 100)

	records := s.logger.RecentErrors(limit)

	c.JSON(http.StatusOK, gin.H{
		"errors":    records,
		"count":     len(records),
		"timestamp": time.Now().UTC(),
	})
}

// handleSearchErrors queries the SQLite index, optionally narrowed by a
// full-text query against the search index
func (s *Server) handleSearchErrors(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":    "STORE_DISABLED",
				"message": "The queryable error index is not enabled",
			},
		})
		return
	}

	filter := storage.ErrorFilter{
		Component:       c.Query("component"),
		Severity:        c.Query("severity"),
		Category:        c.Query("category"),
		Code:            c.Query("code"),
		MessageContains: c.Query("q"),
		Limit:           parseIntParam(c, "limit", 50, 1, 500),
		Offset:          parseIntParam(c, "offset", 0, 0, 1000000),
	}

	if start := c.Query("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			badTimeParam(c, "start", start)
			return
		}
		filter.StartTime = t
	}

	if end := c.Query("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			badTimeParam(c, "end", end)
			return
		}
		filter.EndTime = t
	}

	result, err := s.store.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "QUERY_ERROR",
				"message": "Failed to query error records",
				"details": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"errors":      result.Errors,
		"total_count": result.TotalCount,
		"has_more":    result.HasMore,
		"timestamp":   time.Now().UTC(),
	})
}

// handleErrorByCode looks up a single record by its tracking code
func (s *Server) handleErrorByCode(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":    "STORE_DISABLED",
				"message": "The queryable error index is not enabled",
			},
		})
		return
	}

	code := c.Param("code")

	record, err := s.store.GetByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "QUERY_ERROR",
				"message": "Failed to look up error record",
				"details": err.Error(),
			},
		})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No error record with that code",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"error_record": record})
}

// reportRequest is the payload for remotely reported errors
type reportRequest struct {
	Message      string                 `json:"message" binding:"required"`
	Severity     string                 `json:"severity"`
	Component    string                 `json:"component"`
	Category     string                 `json:"category"`
	UserMessage  string                 `json:"user_message"`
	SuggestedFix string                 `json:"suggested_fix"`
	RequestID    string                 `json:"request_id"`
	SessionID    string                 `json:"session_id"`
	UserID       string                 `json:"user_id"`
	ProjectID    int64                  `json:"project_id"`
	Data         map[string]interface{} `json:"data"`
}

// handleReportError accepts an error report and runs it through the
// same logging pipeline as in-process errors
func (s *Server) handleReportError(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_JSON",
				"message": "Invalid JSON format",
				"details": err.Error(),
			},
		})
		return
	}

	opts := []apperror.Option{}
	if req.Severity != "" {
		opts = append(opts, apperror.WithSeverity(apperror.Severity(req.Severity)))
	}
	if req.Component != "" {
		opts = append(opts, apperror.WithComponent(apperror.Component(req.Component)))
	}
	if req.Category != "" {
		opts = append(opts, apperror.WithCategory(apperror.Category(req.Category)))
	}
	if req.UserMessage != "" {
		opts = append(opts, apperror.WithUserMessage(req.UserMessage))
	}
	if req.SuggestedFix != "" {
		opts = append(opts, apperror.WithSuggestedFix(req.SuggestedFix))
	}

	appErr := apperror.New(req.Message, opts...)
	appErr.Context.RequestID = req.RequestID
	appErr.Context.SessionID = req.SessionID
	appErr.Context.UserID = req.UserID
	appErr.Context.ProjectID = req.ProjectID
	for k, v := range req.Data {
		appErr.Context.WithData(k, v)
	}

	record := appErr.Record()
	validationResult := s.validator.ValidateRecord(&record)
	if !validationResult.IsValid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Error report validation failed",
				"details": validationResult.Errors,
			},
		})
		return
	}

	s.logger.LogError(appErr)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Error logged",
		"error_code": appErr.Code,
	})
}

// parseIntParam reads an integer query parameter clamped to [min, max]
func parseIntParam(c *gin.Context, name string, def, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func badTimeParam(c *gin.Context, name, value string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"code":    "INVALID_PARAMETER",
			"message": "Invalid timestamp parameter",
			"details": name + " must be RFC3339, got: " + value,
		},
	})
}

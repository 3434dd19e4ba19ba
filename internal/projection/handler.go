package projection

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rvmarket-lab/rv-intel/internal/cache"
	httperr "github.com/rvmarket-lab/rv-intel/internal/core/errors"
)

// retryAfterSeconds is sent with 503 while the first generation is building.
const retryAfterSeconds = "5"

// tierHeader reports which facade tier answered a summary or velocity query.
const tierHeader = "X-Cache-Tier"

// RegisterRoutes registers all query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/filters", s.HandleFilters)
	r.GET("/dealers", s.HandleDealers)
	r.GET("/counts", s.HandleCounts)

	inv := r.Group("/inventory")
	inv.GET("", s.HandleInventory)
	inv.GET("/export.csv", s.HandleExport)
	inv.GET("/summary", s.HandleSummary)
	inv.GET("/totals", s.HandleTotals)
	inv.GET("/agg/:field", s.HandleFieldAggregate)
	inv.GET("/aggregated", s.HandleAggregated)
	inv.GET("/sales-velocity", s.HandleSalesVelocity)
	inv.GET("/sales-date-range", s.HandleSalesDateRange)
}

// Endpoints lists the query routes for the service index.
func Endpoints() []string {
	return []string{
		"/filters", "/dealers", "/counts", "/inventory", "/inventory/export.csv", "/inventory/summary",
		"/inventory/totals", "/inventory/agg/:field", "/inventory/aggregated",
		"/inventory/sales-velocity", "/inventory/sales-date-range",
	}
}

// HandleFilters handles GET /filters
func (s *Service) HandleFilters(c *gin.Context) {
	resp, err := s.Filters()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDealers handles GET /dealers
func (s *Service) HandleDealers(c *gin.Context) {
	resp, err := s.Dealers()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCounts handles GET /counts
func (s *Service) HandleCounts(c *gin.Context) {
	resp, err := s.Counts()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleInventory handles GET /inventory
// Query parameters: any filter, min_price, max_price, limit (1-10000, default 100)
func (s *Service) HandleInventory(c *gin.Context) {
	q := c.Request.URL.Query()
	criteria, err := ParseCriteria(q)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, err := ParseLimit(q, defaultItemLimit, 1, maxItemLimit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := s.Inventory(criteria, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleExport handles GET /inventory/export.csv
// Every unit matching the filters is written; limit does not apply.
func (s *Service) HandleExport(c *gin.Context) {
	criteria, err := ParseCriteria(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}
	records, err := s.Export(criteria)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
	c.Status(http.StatusOK)
	if err := writeCSV(c.Writer, records); err != nil {
		// Headers are already sent; all that is left is to log.
		slog.Error("[Facade] CSV export failed", "rows", len(records), "error", err)
	}
}

// HandleSummary handles GET /inventory/summary
// Query parameters: dealer (optional)
func (s *Service) HandleSummary(c *gin.Context) {
	resp, err := s.Overview(c.Query("dealer"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleTotals handles GET /inventory/totals
func (s *Service) HandleTotals(c *gin.Context) {
	resp, err := s.Totals()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleFieldAggregate handles GET /inventory/agg/:field
// Query parameters: limit (optional, >= 1; absent returns every bucket)
func (s *Service) HandleFieldAggregate(c *gin.Context) {
	limit, err := ParseLimit(c.Request.URL.Query(), 0, 1, 0)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := s.FieldAggregate(c.Param("field"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAggregated handles GET /inventory/aggregated
func (s *Service) HandleAggregated(c *gin.Context) {
	criteria, err := ParseCriteria(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}
	resp, tier, err := s.Summary(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header(tierHeader, tier)
	c.JSON(http.StatusOK, resp)
}

// HandleSalesVelocity handles GET /inventory/sales-velocity
// Query parameters: any filter, start_date, end_date (YYYY-MM-DD)
func (s *Service) HandleSalesVelocity(c *gin.Context) {
	criteria, err := ParseCriteria(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}
	resp, tier, err := s.Velocity(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header(tierHeader, tier)
	c.JSON(http.StatusOK, resp)
}

// HandleSalesDateRange handles GET /inventory/sales-date-range
func (s *Service) HandleSalesDateRange(c *gin.Context) {
	resp, err := s.SalesDateRange()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps facade errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cache.ErrNotReady):
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpCacheNotReadyError,
			Message:   "Inventory cache is still loading",
		})
	case errors.Is(err, ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
	case errors.Is(err, ErrUnknownField):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnknownFieldError,
			Message:   "Unsupported aggregation field",
			Details:   gin.H{"field": c.Param("field"), "supported": []string{"rv_type", "dealer_group", "manufacturer", "state"}},
		})
	default:
		slog.Error("[Facade] Query failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to answer query",
			Details:   err.Error(),
		})
	}
}

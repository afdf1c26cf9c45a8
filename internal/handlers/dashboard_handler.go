package handlers

import (
	"errors"
	"math"
	"net/http"

	apierrors "github.com/eastgroup/territory-api/internal/errors"
	"github.com/eastgroup/territory-api/internal/middleware"
	"github.com/eastgroup/territory-api/internal/models"
	"github.com/eastgroup/territory-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// DashboardHandler serves the dashboard's three derived views: the KPI set,
// the geo-plottable subset, and the display table.
type DashboardHandler struct {
	service services.PropertyService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.PropertyService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// FilterRequest represents the filter query parameters shared by the table,
// map, and summary endpoints. Cities and heights are repeated query params;
// omitting them means an empty selection, which retains nothing.
type FilterRequest struct {
	Cities  []string `form:"cities"`
	MinSqft *int     `form:"min_sqft" binding:"omitempty,min=0"`
	MaxSqft *int     `form:"max_sqft" binding:"omitempty,min=0"`
	Heights []int    `form:"heights"`
}

// TableRequest adds the optional display-column selection to the shared
// filter parameters.
type TableRequest struct {
	FilterRequest
	Columns []string `form:"columns"`
}

// TableResponse is the tabular subset of the filtered properties.
type TableResponse struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Count   int                      `json:"count"`
	NoData  bool                     `json:"no_data"`
}

// MapResponse is the geo-plottable subset of the filtered properties.
type MapResponse struct {
	Points []services.MapPoint `json:"points"`
	Count  int                 `json:"count"`
	NoData bool                `json:"no_data"`
}

// SummaryResponse is the KPI set over the filtered properties.
type SummaryResponse struct {
	KPIs   services.KPISet `json:"kpis"`
	NoData bool            `json:"no_data"`
}

// FilterOptionsResponse lists the values the filter controls are built from.
type FilterOptionsResponse struct {
	Options services.FilterOptions `json:"options"`
	NoData  bool                   `json:"no_data"`
}

// criteria converts the bound query parameters into filter criteria.
// An absent square footage bound is open: zero for min, MaxInt for max.
func (r *FilterRequest) criteria() services.FilterCriteria {
	c := services.FilterCriteria{
		Cities:           r.Cities,
		MinSquareFootage: 0,
		MaxSquareFootage: math.MaxInt,
		ClearHeights:     r.Heights,
	}
	if r.MinSqft != nil {
		c.MinSquareFootage = *r.MinSqft
	}
	if r.MaxSqft != nil {
		c.MaxSquareFootage = *r.MaxSqft
	}
	return c
}

// Table handles GET /api/v1/properties.
// It loads the property table, applies the filters, and returns the display
// rows restricted to the column allow-list.
func (h *DashboardHandler) Table(c *gin.Context) {
	var req TableRequest
	if !h.bindQuery(c, &req) {
		return
	}

	snapshot, filtered, ok := h.loadAndFilter(c, &req.FilterRequest)
	if !ok {
		return
	}

	columns, rows := services.TableView(filtered, req.Columns)

	c.JSON(http.StatusOK, TableResponse{
		Columns: columns,
		Rows:    rows,
		Count:   len(rows),
		NoData:  snapshot.NoData,
	})
}

// Map handles GET /api/v1/properties/map.
// It returns the filtered records projected to map points.
func (h *DashboardHandler) Map(c *gin.Context) {
	var req FilterRequest
	if !h.bindQuery(c, &req) {
		return
	}

	snapshot, filtered, ok := h.loadAndFilter(c, &req)
	if !ok {
		return
	}

	points := services.MapView(filtered)

	c.JSON(http.StatusOK, MapResponse{
		Points: points,
		Count:  len(points),
		NoData: snapshot.NoData,
	})
}

// Summary handles GET /api/v1/properties/summary.
// It returns the KPI set computed over the filtered records.
func (h *DashboardHandler) Summary(c *gin.Context) {
	var req FilterRequest
	if !h.bindQuery(c, &req) {
		return
	}

	snapshot, filtered, ok := h.loadAndFilter(c, &req)
	if !ok {
		return
	}

	metrics := h.service.Summarize(filtered)

	c.JSON(http.StatusOK, SummaryResponse{
		KPIs:   services.BuildKPIs(metrics),
		NoData: snapshot.NoData,
	})
}

// FilterOptions handles GET /api/v1/filters/options.
// It returns the distinct cities, clear heights, and square footage bounds
// of the full loaded table so clients can build their filter controls.
func (h *DashboardHandler) FilterOptions(c *gin.Context) {
	snapshot, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, FilterOptionsResponse{
		Options: services.BuildFilterOptions(snapshot.Table),
		NoData:  snapshot.NoData,
	})
}

// bindQuery binds and validates query parameters, writing the error response
// on failure. Returns false when the request was rejected.
func (h *DashboardHandler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return false
	}
	return true
}

// load runs the pipeline's Load step and maps its errors onto HTTP
// responses. Returns false when an error response was written.
func (h *DashboardHandler) load(c *gin.Context) (*services.Snapshot, bool) {
	log := middleware.GetLogger(c)

	snapshot, err := h.service.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrDataSourceUnavailable) {
			apierrors.ServiceUnavailable(c, "Property data is temporarily unavailable", err)
			return nil, false
		}
		// Malformed or unsupported geometry in the source data: the load
		// cycle is halted rather than serving a partial table.
		if errors.Is(err, models.ErrMalformedGeometry) || errors.Is(err, models.ErrUnsupportedGeometryType) {
			apierrors.InternalServerError(c, "Property data could not be decoded", err)
			return nil, false
		}
		apierrors.InternalServerError(c, "Failed to load property data", err)
		return nil, false
	}

	if snapshot.NoData && log != nil {
		log.Warn("Serving empty property table", nil)
	}

	return snapshot, true
}

// loadAndFilter combines Load with filter validation and application.
func (h *DashboardHandler) loadAndFilter(c *gin.Context, req *FilterRequest) (*services.Snapshot, models.PropertyTable, bool) {
	if req.MinSqft != nil && req.MaxSqft != nil && *req.MinSqft > *req.MaxSqft {
		apierrors.BadRequest(c, "min_sqft must be less than or equal to max_sqft", map[string]interface{}{
			"min_sqft": *req.MinSqft,
			"max_sqft": *req.MaxSqft,
		})
		return nil, nil, false
	}

	snapshot, ok := h.load(c)
	if !ok {
		return nil, nil, false
	}

	filtered := h.service.Apply(snapshot.Table, req.criteria())
	return snapshot, filtered, true
}

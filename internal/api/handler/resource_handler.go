package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/intersect-health/fhir-api/internal/api/metrics"
	"github.com/intersect-health/fhir-api/internal/api/middleware"
	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
	"github.com/intersect-health/fhir-api/internal/core/service"
)

// ResourceHandler serves the five CRUD endpoints for every registered FHIR
// resource type. One handler instance covers all types; the router binds each
// method to a concrete type at registration time.
type ResourceHandler struct {
	service ports.ResourceService
}

func NewResourceHandler(svc ports.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: svc}
}

// requestContext stamps the acting user onto the context for audit
// attribution before the service call.
func requestContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if user := middleware.UserFromContext(c); user != nil {
		ctx = service.WithActor(ctx, user.Email)
	}
	return ctx
}

// Create handles POST /api/v1/{Type}.
//
// @Summary      Create a resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string          true  "Resource type (e.g. Patient)"
// @Param        body  body      map[string]any  true  "Resource document"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /{type} [post]
func (h *ResourceHandler) Create(rt domain.ResourceType) echo.HandlerFunc {
	return func(c echo.Context) error {
		var res domain.Resource
		if err := c.Bind(&res); err != nil || res == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}

		created, err := h.service.Create(requestContext(c), rt, res)
		if err != nil {
			if errors.Is(err, domain.ErrResourceExists) {
				return c.JSON(http.StatusConflict, map[string]string{"error": rt.Name + " with id " + res.ID() + " already exists"})
			}
			return err
		}

		metrics.ResourceOpsTotal.WithLabelValues(rt.Name, "create").Inc()
		return c.JSON(http.StatusCreated, created)
	}
}

// Get handles GET /api/v1/{Type}/{id}.
//
// @Summary      Retrieve a resource by id
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]string
// @Router       /{type}/{id} [get]
func (h *ResourceHandler) Get(rt domain.ResourceType) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		res, err := h.service.Get(requestContext(c), rt, id)
		if err != nil {
			if errors.Is(err, domain.ErrResourceNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": rt.Name + " with id " + id + " not found"})
			}
			return err
		}

		metrics.ResourceOpsTotal.WithLabelValues(rt.Name, "read").Inc()
		return c.JSON(http.StatusOK, res)
	}
}

// Search handles GET /api/v1/{Type}.
//
// @Summary      Search resources
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        _count   query  int     false  "Number of results (max 1000)"
// @Param        _offset  query  int     false  "Offset for pagination"
// @Param        _sort    query  string  false  "Sort field, '-' prefix for descending"
// @Success      200  {array}  map[string]any
// @Router       /{type} [get]
func (h *ResourceHandler) Search(rt domain.ResourceType) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := buildSearchQuery(rt, c)

		results, err := h.service.Search(requestContext(c), rt, q)
		if err != nil {
			return err
		}

		metrics.ResourceOpsTotal.WithLabelValues(rt.Name, "search").Inc()
		return c.JSON(http.StatusOK, results)
	}
}

const (
	defaultLatestCategory = "vital-signs"
	defaultLatestLimit    = 10
	maxLatestLimit        = 100
)

// Latest handles GET /api/v1/Observation/latest/{patient_id}: the newest
// readings for one patient, for dashboards showing recent wearable vitals.
//
// @Summary      Latest observations for a patient
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        patient_id  path   string  true   "Patient ID"
// @Param        category    query  string  false  "Observation category (default vital-signs)"
// @Param        limit       query  int     false  "Number of observations (max 100)"
// @Success      200  {array}  map[string]any
// @Router       /Observation/latest/{patient_id} [get]
func (h *ResourceHandler) Latest(rt domain.ResourceType) echo.HandlerFunc {
	return func(c echo.Context) error {
		patientID := c.Param("patient_id")

		category := c.QueryParam("category")
		if category == "" {
			category = defaultLatestCategory
		}

		limit := defaultLatestLimit
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if limit > maxLatestLimit {
			limit = maxLatestLimit
		}

		q := ports.SearchQuery{
			Count:     limit,
			SortField: rt.SortField,
			SortDesc:  true,
		}
		if p, ok := rt.Param("subject"); ok {
			q.Filters = append(q.Filters, ports.SearchFilter{Param: p, Value: "Patient/" + patientID})
		}
		if p, ok := rt.Param("category"); ok {
			q.Filters = append(q.Filters, ports.SearchFilter{Param: p, Value: category})
		}

		results, err := h.service.Search(requestContext(c), rt, q)
		if err != nil {
			return err
		}

		metrics.ResourceOpsTotal.WithLabelValues(rt.Name, "search").Inc()
		return c.JSON(http.StatusOK, results)
	}
}

// Update handles PUT /api/v1/{Type}/{id}.
//
// @Summary      Replace a resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]string
// @Router       /{type}/{id} [put]
func (h *ResourceHandler) Update(rt domain.ResourceType) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		var res domain.Resource
		if err := c.Bind(&res); err != nil || res == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}

		updated, err := h.service.Update(requestContext(c), rt, id, res)
		if err != nil {
			if errors.Is(err, domain.ErrResourceNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": rt.Name + " with id " + id + " not found"})
			}
			return err
		}

		metrics.ResourceOpsTotal.WithLabelValues(rt.Name, "update").Inc()
		return c.JSON(http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/v1/{Type}/{id}.
//
// @Summary      Delete a resource
// @Tags         resources
// @Security     BearerAuth
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /{type}/{id} [delete]
func (h *ResourceHandler) Delete(rt domain.ResourceType) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		if err := h.service.Delete(requestContext(c), rt, id); err != nil {
			if errors.Is(err, domain.ErrResourceNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": rt.Name + " with id " + id + " not found"})
			}
			return err
		}

		metrics.ResourceOpsTotal.WithLabelValues(rt.Name, "delete").Inc()
		return c.NoContent(http.StatusNoContent)
	}
}

// buildSearchQuery resolves the declared search parameters of rt against the
// request's query string. Undeclared parameters are ignored.
func buildSearchQuery(rt domain.ResourceType, c echo.Context) ports.SearchQuery {
	q := ports.SearchQuery{}

	for _, p := range rt.Params {
		names := append([]string{p.Name}, p.Aliases...)
		for _, name := range names {
			if p.Kind == domain.MatchDate {
				f := ports.SearchFilter{
					Param: p,
					Value: c.QueryParam(name),
					From:  c.QueryParam(name + "_from"),
					To:    c.QueryParam(name + "_to"),
				}
				if f.Value != "" || f.From != "" || f.To != "" {
					q.Filters = append(q.Filters, f)
					break
				}
				continue
			}
			if v := c.QueryParam(name); v != "" {
				q.Filters = append(q.Filters, ports.SearchFilter{Param: p, Value: v})
				break
			}
		}
	}

	if v := c.QueryParam("_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Count = n
		}
	}
	if v := c.QueryParam("_offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Offset = n
		}
	}
	// Types with a sort field default to newest-first; an explicit _sort on
	// that field can flip the direction.
	if rt.SortField != "" {
		q.SortField = rt.SortField
		q.SortDesc = true
		if v := c.QueryParam("_sort"); strings.TrimPrefix(v, "-") == rt.SortField {
			q.SortDesc = strings.HasPrefix(v, "-")
		}
	}

	return q
}

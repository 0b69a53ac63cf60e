package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tripmall/booking-core/internal/dto"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/service"
)

type ResourceHandler struct {
	svc          service.ResourceService
	availability service.AvailabilityService
}

func NewResourceHandler(svc service.ResourceService, availability service.AvailabilityService) *ResourceHandler {
	return &ResourceHandler{svc: svc, availability: availability}
}

func (h *ResourceHandler) RegisterRoutes(e *echo.Echo) {
	resources := e.Group("/api/v1/resources")
	resources.POST("", h.CreateResource)
	resources.GET("/:id", h.GetResource)
	resources.PATCH("/:id/active", h.SetActive)
	resources.PATCH("/:id/capacity", h.UpdateCapacity)
	resources.GET("/:id/availability", h.CheckAvailability)
}

func (h *ResourceHandler) CreateResource(c echo.Context) error {
	var req dto.CreateResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	vertical := models.Vertical(req.Vertical)
	if !vertical.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown vertical")
	}

	resource := &models.Resource{
		PartnerID:     req.PartnerID,
		Vertical:      vertical,
		Name:          req.Name,
		IsActive:      true,
		MaxUnits:      req.MaxUnits,
		BufferMinutes: req.BufferMinutes,
	}
	if err := h.svc.CreateResource(c.Request().Context(), resource); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.OK(resource))
}

func (h *ResourceHandler) GetResource(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return err
	}

	resource, err := h.svc.GetResource(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(resource))
}

func (h *ResourceHandler) SetActive(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return err
	}

	var req dto.SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resource, err := h.svc.SetActive(c.Request().Context(), id, req.Active)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(resource))
}

func (h *ResourceHandler) UpdateCapacity(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateCapacityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resource, err := h.svc.UpdateCapacity(c.Request().Context(), id, req.MaxUnits)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(resource))
}

func (h *ResourceHandler) CheckAvailability(c echo.Context) error {
	id, err := resourceID(c)
	if err != nil {
		return err
	}

	startAt, endAt, err := parseWindow(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end must be dates or RFC 3339 timestamps")
	}

	units := 1
	if u := c.QueryParam("units"); u != "" {
		units, err = strconv.Atoi(u)
		if err != nil || units < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid units")
		}
	}

	result, err := h.availability.CheckAvailability(c.Request().Context(), id, startAt, endAt, units)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.Envelope{
		Success:   true,
		Available: &result.Available,
		Reason:    result.Reason,
		Data: dto.AvailabilityResponse{
			Available:     result.Available,
			Reason:        result.Reason,
			ConflictCount: result.ConflictCount,
		},
	})
}

func resourceID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid resource id")
	}
	return uint(id), nil
}

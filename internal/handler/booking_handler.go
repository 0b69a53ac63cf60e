package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tripmall/booking-core/internal/dto"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/resources/:id/bookings", h.CreateBooking)
	e.GET("/api/v1/resources/:id/bookings", h.ListBookings)

	bookings := e.Group("/api/v1/bookings")
	bookings.GET("/:id", h.GetBooking)
	bookings.DELETE("/:id", h.CancelBooking)
	bookings.POST("/:id/confirm", h.ConfirmBooking)
	bookings.POST("/:id/pickup", h.PickUp)
	bookings.POST("/:id/checkin", h.CheckIn)
	bookings.POST("/:id/complete", h.CompleteBooking)
	bookings.POST("/:id/fail", h.FailBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	resourceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resource id")
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	startAt, endAt, err := parseWindow(req.StartAt, req.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	units := req.Units
	if units == 0 {
		units = 1
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		ResourceID: uint(resourceID),
		UserID:     req.UserID,
		Units:      units,
		StartAt:    startAt,
		EndAt:      endAt,
		Amount:     req.Amount,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.OK(dto.ToBookingResponse(booking)))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.OK(dto.ToBookingResponse(booking)))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	resourceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resource id")
	}

	var status *models.ReservationStatus
	if s := c.QueryParam("status"); s != "" {
		rs := models.ReservationStatus(s)
		status = &rs
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), uint(resourceID), status)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, dto.OK(resp))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	return h.applyTransition(c, h.svc.CancelBooking)
}

func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	return h.applyTransition(c, h.svc.ConfirmBooking)
}

func (h *BookingHandler) PickUp(c echo.Context) error {
	return h.applyTransition(c, h.svc.PickUp)
}

func (h *BookingHandler) CheckIn(c echo.Context) error {
	return h.applyTransition(c, h.svc.CheckIn)
}

func (h *BookingHandler) CompleteBooking(c echo.Context) error {
	return h.applyTransition(c, h.svc.CompleteBooking)
}

func (h *BookingHandler) FailBooking(c echo.Context) error {
	return h.applyTransition(c, h.svc.FailBooking)
}

func (h *BookingHandler) applyTransition(c echo.Context, fn func(ctx context.Context, id uint) (*models.Reservation, error)) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := fn(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.OK(dto.ToBookingResponse(booking)))
}

// parseWindow accepts both date-only values (lodging) and full RFC 3339
// timestamps (rentcar pickup/dropoff).
func parseWindow(start, end string) (time.Time, time.Time, error) {
	startAt, err := parseTime(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endAt, err := parseTime(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startAt, endAt, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tripmall/booking-core/internal/overlap"
	"github.com/tripmall/booking-core/internal/service"
)

// httpError maps service sentinels onto the HTTP contract: validation 400,
// missing entities 404, lost races 409, voucher exhaustion 500 (alerts),
// store timeouts 503.
func httpError(err error) error {
	switch {
	case errors.Is(err, overlap.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidUnits),
		errors.Is(err, service.ErrInvalidPoints),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientPoints),
		errors.Is(err, service.ErrResourceInactive):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrResourceNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBookingConflict),
		errors.Is(err, service.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable, retry with backoff")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

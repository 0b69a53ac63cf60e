package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/tripmall/booking-core/internal/dto"
	"github.com/tripmall/booking-core/internal/service"
)

type PointsHandler struct {
	svc       service.PointsService
	reconcile service.ReconcileService
	earnRate  decimal.Decimal
}

func NewPointsHandler(svc service.PointsService, reconcile service.ReconcileService, earnRate decimal.Decimal) *PointsHandler {
	return &PointsHandler{svc: svc, reconcile: reconcile, earnRate: earnRate}
}

func (h *PointsHandler) RegisterRoutes(e *echo.Echo) {
	points := e.Group("/api/v1/points")
	points.POST("/earn", h.Earn)
	points.POST("/use", h.Use)
	points.POST("/refund", h.Refund)
	points.POST("/reconcile", h.ReconcileAll)
	points.GET("/:userID", h.GetBalance)
	points.GET("/:userID/history", h.History)
	points.POST("/:userID/reconcile", h.ReconcileUser)
}

func (h *PointsHandler) Earn(c echo.Context) error {
	var req dto.EarnPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and order_id are required")
	}

	// The configured accrual rate applies unless the request overrides it
	// (promotional campaigns).
	rate := h.earnRate
	if req.Rate.Sign() > 0 {
		rate = req.Rate
	}

	entry, err := h.svc.Earn(c.Request().Context(), req.UserID, req.OrderID, req.Amount, rate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.OK(dto.ToLedgerEntryResponse(entry)))
}

func (h *PointsHandler) Use(c echo.Context) error {
	var req dto.UsePointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and order_id are required")
	}

	entry, err := h.svc.Use(c.Request().Context(), req.UserID, req.OrderID, req.Points)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.OK(dto.ToLedgerEntryResponse(entry)))
}

func (h *PointsHandler) Refund(c echo.Context) error {
	var req dto.RefundPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and order_id are required")
	}

	entry, err := h.svc.Refund(c.Request().Context(), req.UserID, req.OrderID, req.Points)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(dto.ToLedgerEntryResponse(entry)))
}

func (h *PointsHandler) GetBalance(c echo.Context) error {
	userID := c.Param("userID")

	balance, err := h.svc.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(dto.BalanceResponse{
		UserID:        balance.UserID,
		LedgerBalance: balance.LedgerBalance,
		MirrorBalance: balance.MirrorBalance,
	}))
}

func (h *PointsHandler) History(c echo.Context) error {
	userID := c.Param("userID")

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.svc.History(c.Request().Context(), userID, limit)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.LedgerEntryResponse, len(entries))
	for i := range entries {
		resp[i] = dto.ToLedgerEntryResponse(&entries[i])
	}
	return c.JSON(http.StatusOK, dto.OK(resp))
}

func (h *PointsHandler) ReconcileUser(c echo.Context) error {
	userID := c.Param("userID")

	result, err := h.reconcile.ReconcileUser(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

func (h *PointsHandler) ReconcileAll(c echo.Context) error {
	results, err := h.reconcile.ReconcileAll(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.OK(results))
}

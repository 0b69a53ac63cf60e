package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmall/booking-core/internal/dto"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/service"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn     func(ctx context.Context, in service.CreateBookingInput) (*models.Reservation, error)
	cancelFn     func(ctx context.Context, id uint) (*models.Reservation, error)
	confirmFn    func(ctx context.Context, id uint) (*models.Reservation, error)
	transitionFn func(ctx context.Context, id uint) (*models.Reservation, error)
	getFn        func(ctx context.Context, id uint) (*models.Reservation, error)
	listFn       func(ctx context.Context, resourceID uint, status *models.ReservationStatus) ([]models.Reservation, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, in service.CreateBookingInput) (*models.Reservation, error) {
	return m.createFn(ctx, in)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.cancelFn(ctx, id)
}
func (m *mockBookingService) ConfirmBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.confirmFn(ctx, id)
}
func (m *mockBookingService) PickUp(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.transitionFn(ctx, id)
}
func (m *mockBookingService) CheckIn(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.transitionFn(ctx, id)
}
func (m *mockBookingService) CompleteBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.transitionFn(ctx, id)
}
func (m *mockBookingService) FailBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.transitionFn(ctx, id)
}
func (m *mockBookingService) GetBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.getFn(ctx, id)
}
func (m *mockBookingService) ListBookings(ctx context.Context, resourceID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	return m.listFn(ctx, resourceID, status)
}

// --- Tests ---

func postJSON(t *testing.T, e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Reservation, error) {
			return &models.Reservation{
				ID:            1,
				ResourceID:    in.ResourceID,
				UserID:        in.UserID,
				Units:         in.Units,
				StartAt:       in.StartAt,
				EndAt:         in.EndAt,
				Status:        models.StatusPending,
				PayStatus:     models.PaymentUnpaid,
				BookingNumber: "BK-20250110-3F9A2C",
				CreatedAt:     time.Now(),
			}, nil
		},
	}

	e := echo.New()
	body := `{"user_id":"user-1","units":1,"start_at":"2025-01-10","end_at":"2025-01-12"}`
	c, rec := postJSON(t, e, "/api/v1/resources/1/bookings", body)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewBookingHandler(svc)
	err := h.CreateBooking(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var booking dto.BookingResponse
	require.NoError(t, json.Unmarshal(data, &booking))
	assert.Equal(t, "BK-20250110-3F9A2C", booking.BookingNumber)
	assert.Equal(t, models.StatusPending, booking.Status)
}

func TestCreateBooking_Handler_Conflict(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Reservation, error) {
			return nil, service.ErrBookingConflict
		},
	}

	e := echo.New()
	body := `{"user_id":"user-1","start_at":"2025-01-10","end_at":"2025-01-12"}`
	c, _ := postJSON(t, e, "/api/v1/resources/1/bookings", body)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := NewBookingHandler(svc).CreateBooking(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCreateBooking_Handler_MissingUserID(t *testing.T) {
	e := echo.New()
	body := `{"start_at":"2025-01-10","end_at":"2025-01-12"}`
	c, _ := postJSON(t, e, "/api/v1/resources/1/bookings", body)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := NewBookingHandler(&mockBookingService{}).CreateBooking(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateBooking_Handler_BadDates(t *testing.T) {
	e := echo.New()
	body := `{"user_id":"user-1","start_at":"not-a-date","end_at":"2025-01-12"}`
	c, _ := postJSON(t, e, "/api/v1/resources/1/bookings", body)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := NewBookingHandler(&mockBookingService{}).CreateBooking(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetBooking_Handler_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uint) (*models.Reservation, error) {
			return nil, service.ErrReservationNotFound
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := NewBookingHandler(svc).GetBooking(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCancelBooking_Handler_InvalidTransition(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, id uint) (*models.Reservation, error) {
			return nil, service.ErrInvalidTransition
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := NewBookingHandler(svc).CancelBooking(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestConfirmBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		confirmFn: func(ctx context.Context, id uint) (*models.Reservation, error) {
			return &models.Reservation{
				ID:        id,
				Status:    models.StatusConfirmed,
				PayStatus: models.PaymentPaid,
			}, nil
		},
	}

	e := echo.New()
	c, rec := postJSON(t, e, "/api/v1/bookings/3/confirm", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := NewBookingHandler(svc).ConfirmBooking(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package consumer

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tripmall/booking-core/internal/service"
)

// PaymentEvent is what the external payment gateway publishes when a
// charge settles or fails.
type PaymentEvent struct {
	BookingID uint            `json:"booking_id"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type PaymentConsumer struct {
	bookingSvc service.BookingService
	pointsSvc  service.PointsService
	earnRate   decimal.Decimal
	log        *logrus.Entry
}

func NewPaymentConsumer(bookingSvc service.BookingService, pointsSvc service.PointsService, earnRate decimal.Decimal) *PaymentConsumer {
	return &PaymentConsumer{
		bookingSvc: bookingSvc,
		pointsSvc:  pointsSvc,
		earnRate:   earnRate,
		log:        logrus.WithField("component", "payment-consumer"),
	}
}

// Start applies payment outcomes to reservations: a completed payment
// confirms the booking and credits points, a failed one marks it failed.
func (pc *PaymentConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			pc.handleMessage(msg)
		}
		pc.log.Info("channel closed, stopping consumer")
	}()
}

func (pc *PaymentConsumer) handleMessage(msg amqp.Delivery) {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		pc.log.WithError(err).Warn("failed to unmarshal payment event")
		msg.Nack(false, false)
		return
	}

	ctx := context.Background()

	switch msg.RoutingKey {
	case "payment.completed":
		pc.handleCompleted(ctx, msg, event)
	case "payment.failed":
		pc.handleFailed(ctx, msg, event)
	default:
		pc.log.WithField("routing_key", msg.RoutingKey).Warn("unknown payment event")
		msg.Nack(false, false)
	}
}

func (pc *PaymentConsumer) handleCompleted(ctx context.Context, msg amqp.Delivery, event PaymentEvent) {
	booking, err := pc.bookingSvc.ConfirmBooking(ctx, event.BookingID)
	if err != nil {
		// A conflict here means the pending slot was given away while the
		// payment sat past the grace window; the booking is already failed
		// and the message must not be redelivered.
		if errors.Is(err, service.ErrBookingConflict) || errors.Is(err, service.ErrInvalidTransition) {
			pc.log.WithError(err).WithField("booking_id", event.BookingID).
				Warn("payment settled but booking could not be confirmed")
			msg.Ack(false)
			return
		}
		pc.log.WithError(err).WithField("booking_id", event.BookingID).
			Error("failed to confirm booking")
		msg.Nack(false, true) // requeue
		return
	}

	if _, err := pc.pointsSvc.Earn(ctx, event.UserID, event.OrderID, event.Amount, pc.earnRate); err != nil {
		if !errors.Is(err, service.ErrInvalidAmount) {
			pc.log.WithError(err).WithField("order_id", event.OrderID).
				Error("failed to credit points for settled payment")
		}
	}

	pc.log.WithFields(logrus.Fields{
		"booking_number": booking.BookingNumber,
		"order_id":       event.OrderID,
	}).Info("booking confirmed on payment")
	msg.Ack(false)
}

func (pc *PaymentConsumer) handleFailed(ctx context.Context, msg amqp.Delivery, event PaymentEvent) {
	if _, err := pc.bookingSvc.FailBooking(ctx, event.BookingID); err != nil {
		if errors.Is(err, service.ErrInvalidTransition) || errors.Is(err, service.ErrReservationNotFound) {
			msg.Ack(false)
			return
		}
		pc.log.WithError(err).WithField("booking_id", event.BookingID).
			Error("failed to mark booking failed")
		msg.Nack(false, true)
		return
	}

	pc.log.WithField("booking_id", event.BookingID).Info("booking failed on payment failure")
	msg.Ack(false)
}

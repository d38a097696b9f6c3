package services

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/apperr"
	"github.com/medibook/booking-api/internal/gateway"
	"github.com/medibook/booking-api/internal/repository"
)

// PaymentService correlates gateway orders with appointments. The
// appointment ID travels as the order receipt, which is what lets
// ConfirmOrder find its way back.
type PaymentService struct {
	appointments repository.AppointmentRepository
	gateway      gateway.PaymentGateway
	currency     string
	log          *zap.Logger
}

func NewPaymentService(
	appointments repository.AppointmentRepository,
	gw gateway.PaymentGateway,
	currency string,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		appointments: appointments,
		gateway:      gw,
		currency:     currency,
		log:          log,
	}
}

// CreateOrder opens a gateway order for the appointment's amount. Cancelled
// appointments are rejected before any gateway call is made.
func (s *PaymentService) CreateOrder(ctx context.Context, appointmentID primitive.ObjectID) (*gateway.Order, error) {
	apt, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Appointment not found")
		}
		return nil, apperr.Upstream("Failed to load appointment", err)
	}
	if apt.Cancelled {
		return nil, apperr.New(apperr.KindAlreadyCancelled, "Appointment cancelled")
	}

	amountMinor := int64(math.Round(apt.Amount * 100))

	var order *gateway.Order
	err = withRetry(ctx, func() error {
		var err error
		order, err = s.gateway.CreateOrder(ctx, amountMinor, s.currency, appointmentID.Hex())
		return err
	})
	if err != nil {
		return nil, apperr.Upstream("Failed to create payment order", err)
	}

	s.log.Info("payment order created",
		zap.String("appointmentId", appointmentID.Hex()),
		zap.String("orderId", order.ID),
		zap.Int64("amountMinor", amountMinor),
	)
	return order, nil
}

// ConfirmOrder fetches the order and, if the gateway reports it settled,
// marks the appointment paid. An unsettled order is a valid negative
// outcome, not a failure of the call. Confirming the same settled order
// twice re-applies the same flag and nothing else.
func (s *PaymentService) ConfirmOrder(ctx context.Context, orderID string) error {
	var order *gateway.Order
	err := withRetry(ctx, func() error {
		var err error
		order, err = s.gateway.FetchOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return apperr.Upstream("Failed to fetch payment order", err)
	}

	if !order.Paid() {
		return apperr.New(apperr.KindPaymentNotCompleted, "Payment not completed")
	}

	appointmentID, err := primitive.ObjectIDFromHex(order.Receipt)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "Order receipt is not an appointment ID", err)
	}

	if err := s.appointments.MarkPaid(ctx, appointmentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperr.New(apperr.KindNotFound, "Appointment not found")
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return apperr.New(apperr.KindAlreadyCancelled, "Appointment cancelled")
		default:
			return apperr.Upstream("Failed to record payment", err)
		}
	}

	s.log.Info("payment confirmed",
		zap.String("appointmentId", appointmentID.Hex()),
		zap.String("orderId", orderID),
	)
	return nil
}

// withRetry runs fn up to three times with linear backoff. Gateway calls
// are the only I/O-bound suspension points in the core, and only their
// transport failures are worth retrying; business rejections come back as
// order state, not as errors.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/apperr"
	"github.com/medibook/booking-api/internal/models"
)

type paymentFixture struct {
	booking      *BookingService
	cancellation *CancellationService
	payments     *PaymentService
	doctors      *fakeDoctorRepo
	users        *fakeUserRepo
	appointments *fakeAppointmentRepo
	gateway      *fakeGateway
}

func newPaymentFixture() *paymentFixture {
	doctors := newFakeDoctorRepo()
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	gw := newFakeGateway()
	notifier := NewNotificationService("", zap.NewNop())
	return &paymentFixture{
		booking:      NewBookingService(doctors, users, appointments, notifier, zap.NewNop()),
		cancellation: NewCancellationService(doctors, appointments, notifier, zap.NewNop()),
		payments:     NewPaymentService(appointments, gw, "INR", zap.NewNop()),
		doctors:      doctors,
		users:        users,
		appointments: appointments,
		gateway:      gw,
	}
}

func (f *paymentFixture) bookOne(t *testing.T) (*models.Appointment, *models.User) {
	t.Helper()
	doctor := newTestDoctor(500)
	user := newTestUser()
	f.doctors.put(doctor)
	f.users.put(user)
	apt, err := f.booking.Book(context.Background(), user.ID, doctor.ID, "2024-06-01", "10:00")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	return apt, user
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("AmountAndReceipt", func(t *testing.T) {
		f := newPaymentFixture()
		apt, _ := f.bookOne(t)

		order, err := f.payments.CreateOrder(ctx, apt.ID)
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		if order.Amount != 50000 {
			t.Errorf("amount = %d minor units, want 50000", order.Amount)
		}
		if order.Currency != "INR" {
			t.Errorf("currency = %s, want INR", order.Currency)
		}
		if order.Receipt != apt.ID.Hex() {
			t.Errorf("receipt = %s, want appointment ID %s", order.Receipt, apt.ID.Hex())
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.payments.CreateOrder(ctx, primitive.NewObjectID())
		wantKind(t, err, apperr.KindNotFound)
		if f.gateway.createCalls != 0 {
			t.Error("gateway must not be called for a missing appointment")
		}
	})

	t.Run("CancelledAppointmentMakesNoGatewayCall", func(t *testing.T) {
		f := newPaymentFixture()
		apt, user := f.bookOne(t)
		if err := f.cancellation.Cancel(ctx, apt.ID, user.ID, false); err != nil {
			t.Fatalf("Cancel: %v", err)
		}

		_, err := f.payments.CreateOrder(ctx, apt.ID)
		wantKind(t, err, apperr.KindAlreadyCancelled)
		if f.gateway.createCalls != 0 {
			t.Error("gateway must not be called for a cancelled appointment")
		}
	})
}

func TestConfirmOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("PaidOrderConfirms", func(t *testing.T) {
		f := newPaymentFixture()
		apt, _ := f.bookOne(t)
		order, err := f.payments.CreateOrder(ctx, apt.ID)
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		f.gateway.markPaid(order.ID)

		if err := f.payments.ConfirmOrder(ctx, order.ID); err != nil {
			t.Fatalf("ConfirmOrder: %v", err)
		}
		stored := f.appointments.get(apt.ID)
		if !stored.Payment {
			t.Error("payment flag not set")
		}
		if stored.Status() != models.StatusConfirmed {
			t.Errorf("status = %s, want confirmed", stored.Status())
		}
	})

	t.Run("UnpaidOrderIsPaymentNotCompleted", func(t *testing.T) {
		f := newPaymentFixture()
		apt, _ := f.bookOne(t)
		order, err := f.payments.CreateOrder(ctx, apt.ID)
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}

		err = f.payments.ConfirmOrder(ctx, order.ID)
		wantKind(t, err, apperr.KindPaymentNotCompleted)
		if f.appointments.get(apt.ID).Payment {
			t.Error("payment flag must stay false for an unsettled order")
		}
	})

	t.Run("ConfirmTwiceIsIdempotent", func(t *testing.T) {
		f := newPaymentFixture()
		apt, _ := f.bookOne(t)
		order, err := f.payments.CreateOrder(ctx, apt.ID)
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		f.gateway.markPaid(order.ID)

		if err := f.payments.ConfirmOrder(ctx, order.ID); err != nil {
			t.Fatalf("first ConfirmOrder: %v", err)
		}
		if err := f.payments.ConfirmOrder(ctx, order.ID); err != nil {
			t.Fatalf("second ConfirmOrder: %v", err)
		}

		if !f.appointments.get(apt.ID).Payment {
			t.Error("payment flag lost on re-confirmation")
		}
		all, _ := f.appointments.FindAll(ctx)
		if len(all) != 1 {
			t.Errorf("re-confirmation created %d appointments, want 1", len(all))
		}
	})

	t.Run("ConfirmAfterCancellation", func(t *testing.T) {
		f := newPaymentFixture()
		apt, user := f.bookOne(t)
		order, err := f.payments.CreateOrder(ctx, apt.ID)
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		f.gateway.markPaid(order.ID)

		if err := f.cancellation.Cancel(ctx, apt.ID, user.ID, false); err != nil {
			t.Fatalf("Cancel: %v", err)
		}

		err = f.payments.ConfirmOrder(ctx, order.ID)
		wantKind(t, err, apperr.KindAlreadyCancelled)
		if f.appointments.get(apt.ID).Payment {
			t.Error("cancelled appointment must not become paid")
		}
	})
}

package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/apperr"
	"github.com/medibook/booking-api/internal/models"
	"github.com/medibook/booking-api/internal/repository"
)

// slotDateLayout is the canonical ledger key format. Ledger keys must be
// comparable across writers, so the service rejects anything else before
// it reaches the ledger.
const slotDateLayout = "2006-01-02"

// BookingService turns a slot request into a reserved slot plus a persisted
// appointment, as one logical unit.
type BookingService struct {
	doctors      repository.DoctorRepository
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	notifier     *NotificationService
	log          *zap.Logger
}

func NewBookingService(
	doctors repository.DoctorRepository,
	users repository.UserRepository,
	appointments repository.AppointmentRepository,
	notifier *NotificationService,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		doctors:      doctors,
		users:        users,
		appointments: appointments,
		notifier:     notifier,
		log:          log,
	}
}

// Book reserves the slot and creates the appointment record. The slot
// reservation is a single atomic conditional update, so two concurrent
// bookings of the same doctor/date/time end with exactly one success and
// one SlotTaken. If the appointment insert fails after the slot was
// reserved, the reservation is rolled back with a compensating release.
func (s *BookingService) Book(ctx context.Context, userID, docID primitive.ObjectID, slotDate, slotTime string) (*models.Appointment, error) {
	if slotTime == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Slot time is required")
	}
	if _, err := time.Parse(slotDateLayout, slotDate); err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "Slot date must be YYYY-MM-DD")
	}

	doctor, err := s.doctors.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Doctor not found")
		}
		return nil, apperr.Upstream("Failed to load doctor", err)
	}
	if !doctor.Available {
		return nil, apperr.New(apperr.KindUnavailable, "Doctor not available")
	}

	// Advisory pre-check for a cheap rejection; the reservation below is
	// what actually holds the invariant.
	if !doctor.SlotsBooked.IsAvailable(slotDate, slotTime) {
		return nil, apperr.New(apperr.KindSlotTaken, "Slot not available")
	}

	if err := s.doctors.ReserveSlot(ctx, docID, slotDate, slotTime); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return nil, apperr.New(apperr.KindSlotTaken, "Slot not available")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.New(apperr.KindNotFound, "Doctor not found")
		default:
			return nil, apperr.Upstream("Failed to reserve slot", err)
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.rollbackReservation(ctx, docID, slotDate, slotTime)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "User not found")
		}
		return nil, apperr.Upstream("Failed to load user", err)
	}

	apt := &models.Appointment{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		DocID:    docID,
		SlotDate: slotDate,
		SlotTime: slotTime,
		UserData: user.Snapshot(),
		DocData:  doctor.Snapshot(),
		Amount:   doctor.Fees,
		Date:     time.Now(),
	}

	if err := s.appointments.Insert(ctx, apt); err != nil {
		s.rollbackReservation(ctx, docID, slotDate, slotTime)
		return nil, apperr.Upstream("Failed to create appointment", err)
	}

	s.log.Info("appointment booked",
		zap.String("appointmentId", apt.ID.Hex()),
		zap.String("docId", docID.Hex()),
		zap.String("slotDate", slotDate),
		zap.String("slotTime", slotTime),
	)
	s.notifier.NotifyBooked(apt)

	return apt, nil
}

// rollbackReservation releases a slot held by a booking that could not be
// completed. Release is idempotent, so a failed rollback can be repaired
// by a later reconciliation pass; it is logged with enough detail for that.
func (s *BookingService) rollbackReservation(ctx context.Context, docID primitive.ObjectID, slotDate, slotTime string) {
	if err := s.doctors.ReleaseSlot(ctx, docID, slotDate, slotTime); err != nil {
		s.log.Error("orphaned slot reservation: release failed",
			zap.String("docId", docID.Hex()),
			zap.String("slotDate", slotDate),
			zap.String("slotTime", slotTime),
			zap.Error(err),
		)
	}
}

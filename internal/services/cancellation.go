package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/apperr"
	"github.com/medibook/booking-api/internal/repository"
)

// CancellationService reverses a booking: it marks the appointment
// cancelled and releases the held slot.
type CancellationService struct {
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	notifier     *NotificationService
	log          *zap.Logger
}

func NewCancellationService(
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	notifier *NotificationService,
	log *zap.Logger,
) *CancellationService {
	return &CancellationService{
		doctors:      doctors,
		appointments: appointments,
		notifier:     notifier,
		log:          log,
	}
}

// Cancel flips the cancelled flag exactly once, then releases the slot.
// When admin is false the requesting user must own the appointment. The
// appointment flag is authoritative: slot release is compensating cleanup,
// and its failure does not undo the cancellation — it is logged so a
// reconciliation pass can repair the ledger.
func (s *CancellationService) Cancel(ctx context.Context, appointmentID, requestingUserID primitive.ObjectID, admin bool) error {
	apt, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "Appointment not found")
		}
		return apperr.Upstream("Failed to load appointment", err)
	}

	if !admin && apt.UserID != requestingUserID {
		return apperr.New(apperr.KindUnauthorized, "Unauthorized action")
	}

	if apt.Cancelled {
		return apperr.New(apperr.KindAlreadyCancelled, "Appointment already cancelled")
	}

	if err := s.appointments.MarkCancelled(ctx, appointmentID); err != nil {
		if errors.Is(err, repository.ErrAlreadyCancelled) {
			// Lost a race with another cancellation of the same record.
			return apperr.New(apperr.KindAlreadyCancelled, "Appointment already cancelled")
		}
		return apperr.Upstream("Failed to cancel appointment", err)
	}

	s.releaseSlot(ctx, apt.DocID, apt.SlotDate, apt.SlotTime, appointmentID)

	s.log.Info("appointment cancelled",
		zap.String("appointmentId", appointmentID.Hex()),
		zap.Bool("admin", admin),
	)
	s.notifier.NotifyCancelled(apt)

	return nil
}

func (s *CancellationService) releaseSlot(ctx context.Context, docID primitive.ObjectID, slotDate, slotTime string, appointmentID primitive.ObjectID) {
	err := s.doctors.ReleaseSlot(ctx, docID, slotDate, slotTime)
	if err == nil {
		return
	}
	// A missing doctor means the ledger and the appointment store have
	// diverged; the cancellation still stands.
	s.log.Warn("slot release needs reconciliation",
		zap.String("appointmentId", appointmentID.Hex()),
		zap.String("docId", docID.Hex()),
		zap.String("slotDate", slotDate),
		zap.String("slotTime", slotTime),
		zap.Error(err),
	)
}

package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
)

// Sentinel errors the services translate into their failure taxonomy.
var (
	ErrNotFound         = errors.New("document not found")
	ErrSlotTaken        = errors.New("slot already booked")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
	ErrDuplicateEmail   = errors.New("email already registered")
)

// DoctorRepository persists doctor documents and owns the slot ledger writes.
type DoctorRepository interface {
	Insert(ctx context.Context, doctor *models.Doctor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*models.Doctor, error)
	FindAll(ctx context.Context) ([]models.Doctor, error)
	SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error

	// ReserveSlot appends slot to the doctor's date bucket as one atomic
	// conditional update: it succeeds only if the slot is not already in
	// the bucket, so of two racing reservations exactly one wins. Returns
	// ErrSlotTaken when the condition fails, ErrNotFound for an unknown
	// doctor.
	ReserveSlot(ctx context.Context, docID primitive.ObjectID, date, slot string) error

	// ReleaseSlot removes slot from the bucket. Releasing an absent slot
	// or date is a no-op; only an unknown doctor is an error.
	ReleaseSlot(ctx context.Context, docID primitive.ObjectID, date, slot string) error
}

// UserRepository persists patient accounts.
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error
}

// AppointmentRepository persists appointment records. Records are never
// deleted; lifecycle flags are flipped through conditional updates that
// leave cancelled documents untouched.
type AppointmentRepository interface {
	Insert(ctx context.Context, apt *models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error)
	FindAll(ctx context.Context) ([]models.Appointment, error)

	// MarkCancelled sets cancelled=true on a not-yet-cancelled record.
	// Returns ErrAlreadyCancelled if the record was cancelled already.
	MarkCancelled(ctx context.Context, id primitive.ObjectID) error

	// MarkPaid sets payment=true unless the record is cancelled. Re-marking
	// a paid record is a no-op success, which keeps order confirmation
	// idempotent.
	MarkPaid(ctx context.Context, id primitive.ObjectID) error
}

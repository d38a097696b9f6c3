package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the derived lifecycle state of an appointment. It is computed
// from the stored flags, never persisted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Appointment records one booking. UserData and DocData are snapshots taken
// at booking time, not live references; Amount is the doctor's fee at that
// moment. The three flags are stored for document compatibility, but all
// writes go through conditional repository updates that refuse to touch a
// cancelled document, so Cancelled is absorbing.
type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	DocID       primitive.ObjectID `bson:"docId" json:"docId"`
	SlotDate    string             `bson:"slotDate" json:"slotDate"`
	SlotTime    string             `bson:"slotTime" json:"slotTime"`
	UserData    UserSnapshot       `bson:"userData" json:"userData"`
	DocData     DoctorSnapshot     `bson:"docData" json:"docData"`
	Amount      float64            `bson:"amount" json:"amount"`
	Date        time.Time          `bson:"date" json:"date"`
	Cancelled   bool               `bson:"cancelled" json:"cancelled"`
	Payment     bool               `bson:"payment" json:"payment"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
}

// Status derives the lifecycle state with the fixed priority
// cancelled > completed > confirmed > pending.
func (a *Appointment) Status() Status {
	switch {
	case a.Cancelled:
		return StatusCancelled
	case a.IsCompleted:
		return StatusCompleted
	case a.Payment:
		return StatusConfirmed
	default:
		return StatusPending
	}
}

// CanTransition reports whether moving to the target state is legal.
// Cancelled is terminal.
func (a *Appointment) CanTransition(to Status) bool {
	from := a.Status()
	if from == to {
		return false
	}
	switch from {
	case StatusCancelled:
		return false
	case StatusCompleted:
		return to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default: // pending
		return true
	}
}

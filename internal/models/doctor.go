package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is the two-line postal address embedded in doctor and user profiles.
type Address struct {
	Line1 string `bson:"line1" json:"line1"`
	Line2 string `bson:"line2,omitempty" json:"line2,omitempty"`
}

// SlotLedger maps a canonical calendar-date string (YYYY-MM-DD) to the
// time slots already booked on that date. The ledger never holds the same
// time twice for one date. The ledger does not parse dates; callers pass
// canonical strings so keys stay comparable across writers.
type SlotLedger map[string][]string

// IsAvailable reports whether the slot is free. A date with no entry is
// fully available.
func (l SlotLedger) IsAvailable(date, slot string) bool {
	for _, booked := range l[date] {
		if booked == slot {
			return false
		}
	}
	return true
}

// Reserve appends the slot to the date's bucket, creating the bucket if
// absent. Returns false if the slot is already held.
//
// This in-memory form re-checks presence; the persisted form is a single
// conditional update in DoctorRepository.ReserveSlot, which is what closes
// the check-then-reserve race between concurrent bookings.
func (l SlotLedger) Reserve(date, slot string) bool {
	if !l.IsAvailable(date, slot) {
		return false
	}
	l[date] = append(l[date], slot)
	return true
}

// Release removes the first occurrence of the slot from the date's bucket.
// Releasing an absent slot is a no-op, so retried cancellations are safe.
func (l SlotLedger) Release(date, slot string) {
	booked, ok := l[date]
	if !ok {
		return
	}
	for i, s := range booked {
		if s == slot {
			l[date] = append(booked[:i], booked[i+1:]...)
			return
		}
	}
}

// Doctor is the practitioner document. SlotsBooked is owned by the booking
// and cancellation flows; nothing else writes it.
type Doctor struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	Image       string             `bson:"image" json:"image"`
	Speciality  string             `bson:"speciality" json:"speciality"`
	Degree      string             `bson:"degree" json:"degree"`
	Experience  string             `bson:"experience" json:"experience"`
	About       string             `bson:"about" json:"about"`
	Available   bool               `bson:"available" json:"available"`
	Fees        float64            `bson:"fees" json:"fees"`
	Address     Address            `bson:"address" json:"address"`
	Date        time.Time          `bson:"date" json:"date"`
	SlotsBooked SlotLedger         `bson:"slots_booked" json:"slots_booked"`
}

// Snapshot returns the doctor fields embedded into an appointment at
// booking time. The copy is deliberate: later profile edits must not
// change what the patient booked against.
func (d *Doctor) Snapshot() DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Image:      d.Image,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		About:      d.About,
		Fees:       d.Fees,
		Address:    d.Address,
		Available:  d.Available,
	}
}

// DoctorSnapshot is the denormalized doctor copy stored on an appointment.
type DoctorSnapshot struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Image      string             `bson:"image" json:"image"`
	Speciality string             `bson:"speciality" json:"speciality"`
	Degree     string             `bson:"degree" json:"degree"`
	Experience string             `bson:"experience" json:"experience"`
	About      string             `bson:"about" json:"about"`
	Fees       float64            `bson:"fees" json:"fees"`
	Address    Address            `bson:"address" json:"address"`
	Available  bool               `bson:"available" json:"available"`
}

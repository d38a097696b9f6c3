package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // Hide from JSON responses
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address  Address            `bson:"address,omitempty" json:"address,omitempty"`
	Gender   string             `bson:"gender,omitempty" json:"gender,omitempty"`
	DOB      string             `bson:"dob,omitempty" json:"dob,omitempty"`
	Date     time.Time          `bson:"date" json:"date"`
}

// Snapshot returns the user fields embedded into an appointment at booking
// time, with the credential stripped.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Image:   u.Image,
		Phone:   u.Phone,
		Address: u.Address,
		Gender:  u.Gender,
		DOB:     u.DOB,
	}
}

// ProfileUpdate carries the user-editable profile fields. Image is applied
// only when non-empty, so profile edits without a new upload keep the old
// picture.
type ProfileUpdate struct {
	Name    string
	Phone   string
	DOB     string
	Gender  string
	Address Address
	Image   string
}

// UserSnapshot is the denormalized user copy stored on an appointment.
type UserSnapshot struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	Name    string             `bson:"name" json:"name"`
	Email   string             `bson:"email" json:"email"`
	Image   string             `bson:"image,omitempty" json:"image,omitempty"`
	Phone   string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address Address            `bson:"address,omitempty" json:"address,omitempty"`
	Gender  string             `bson:"gender,omitempty" json:"gender,omitempty"`
	DOB     string             `bson:"dob,omitempty" json:"dob,omitempty"`
}

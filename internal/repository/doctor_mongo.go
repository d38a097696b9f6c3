package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medibook/booking-api/internal/models"
)

type doctorMongoRepo struct {
	coll *mongo.Collection
}

// NewDoctorRepository returns a DoctorRepository backed by the "doctors"
// collection.
func NewDoctorRepository(db *mongo.Database) DoctorRepository {
	return &doctorMongoRepo{coll: db.Collection("doctors")}
}

func (r *doctorMongoRepo) Insert(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID.IsZero() {
		doctor.ID = primitive.NewObjectID()
	}
	if doctor.SlotsBooked == nil {
		doctor.SlotsBooked = models.SlotLedger{}
	}
	_, err := r.coll.InsertOne(ctx, doctor)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *doctorMongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doctor)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorMongoRepo) FindByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doctor)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorMongoRepo) FindAll(ctx context.Context) ([]models.Doctor, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var doctors []models.Doctor
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = make([]models.Doctor, 0)
	}
	return doctors, nil
}

func (r *doctorMongoRepo) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"available": available}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveSlot is the single serialization point for bookings. The filter
// only matches when the slot is absent from the date bucket (a missing
// bucket satisfies $ne), and $push creates the bucket on first booking, so
// check and append happen in one document write. Two racing reservations
// for the same slot cannot both match.
func (r *doctorMongoRepo) ReserveSlot(ctx context.Context, docID primitive.ObjectID, date, slot string) error {
	field := "slots_booked." + date
	filter := bson.M{
		"_id": docID,
		field: bson.M{"$ne": slot},
	}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{field: slot}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Condition failed: either the doctor is gone or the slot is held.
		if exists, err := r.exists(ctx, docID); err != nil {
			return err
		} else if !exists {
			return ErrNotFound
		}
		return ErrSlotTaken
	}
	return nil
}

// ReleaseSlot pulls the slot from the date bucket. $pull on an absent value
// or bucket matches the document and modifies nothing, which makes retried
// cancellations safe.
func (r *doctorMongoRepo) ReleaseSlot(ctx context.Context, docID primitive.ObjectID, date, slot string) error {
	field := "slots_booked." + date
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": docID}, bson.M{"$pull": bson.M{field: slot}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *doctorMongoRepo) exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

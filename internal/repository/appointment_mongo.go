package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medibook/booking-api/internal/models"
)

type appointmentMongoRepo struct {
	coll *mongo.Collection
}

// NewAppointmentRepository returns an AppointmentRepository backed by the
// "appointments" collection.
func NewAppointmentRepository(db *mongo.Database) AppointmentRepository {
	return &appointmentMongoRepo{coll: db.Collection("appointments")}
}

func (r *appointmentMongoRepo) Insert(ctx context.Context, apt *models.Appointment) error {
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, apt)
	return err
}

func (r *appointmentMongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var apt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&apt)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *appointmentMongoRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *appointmentMongoRepo) FindAll(ctx context.Context) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{})
}

func (r *appointmentMongoRepo) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	if appointments == nil {
		appointments = make([]models.Appointment, 0)
	}
	return appointments, nil
}

// MarkCancelled flips cancelled=true exactly once. The cancelled:false
// filter makes a second cancellation lose the match, including when two
// cancellations race.
func (r *appointmentMongoRepo) MarkCancelled(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "cancelled": false}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"cancelled": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Records are never deleted, so a vanished match means the flag
		// was already set.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyCancelled
	}
	return nil
}

// MarkPaid flips payment=true unless the record is cancelled. Matching a
// record whose flag is already true modifies nothing, so confirming the
// same order twice is harmless.
func (r *appointmentMongoRepo) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "cancelled": false}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"payment": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyCancelled
	}
	return nil
}

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medibook/booking-api/internal/models"
)

type userMongoRepo struct {
	coll *mongo.Collection
}

// NewUserRepository returns a UserRepository backed by the "users" collection.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userMongoRepo{coll: db.Collection("users")}
}

func (r *userMongoRepo) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userMongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userMongoRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userMongoRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	set := bson.M{
		"name":    update.Name,
		"phone":   update.Phone,
		"dob":     update.DOB,
		"gender":  update.Gender,
		"address": update.Address,
	}
	if update.Image != "" {
		set["image"] = update.Image
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/user-account-service/internal/model"
)

// UserRepo persists users in the `users` collection.
type UserRepo struct{ coll *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection("users")}
}

// Create inserts the user and returns the stored document. Emails are
// stored exactly as given; uniqueness is enforced by the index, not by
// case folding.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (*model.User, error) {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

// FindByEmail fetches a user by exact email match.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateByID applies the given fields to the user and returns the updated
// document. Fields not present in patch are left untouched.
func (r *UserRepo) UpdateByID(ctx context.Context, id bson.ObjectID, patch bson.M) (*model.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch {
		set[k] = v
	}
	var u model.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetPassword stores the password hash, removes the one-time
// create-password secret and marks the user VERIFIED, all in one atomic
// document update. The secret removal is what makes the emailed link
// single-use.
func (r *UserRepo) SetPassword(ctx context.Context, id bson.ObjectID, hash string) (*model.User, error) {
	var u model.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"password":  hash,
				"status":    model.StatusVerified,
				"updatedAt": time.Now().UTC(),
			},
			"$unset": bson.M{"createPasswordSecret": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

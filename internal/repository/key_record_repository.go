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

// KeyRecordRepo persists per-user signing key pairs in the `key_records`
// collection.
type KeyRecordRepo struct{ coll *mongo.Collection }

func NewKeyRecordRepo(db *mongo.Database) *KeyRecordRepo {
	return &KeyRecordRepo{coll: db.Collection("key_records")}
}

// Save stores the signing secrets for a user, replacing any previous
// record. The upsert keyed on userId guarantees a single active record
// per user, so issuing new tokens (register or login) revokes every token
// signed with the previous secrets.
func (r *KeyRecordRepo) Save(ctx context.Context, userID bson.ObjectID, publicKey, privateKey string) error {
	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set": bson.M{
				"publicKey":  publicKey,
				"privateKey": privateKey,
				"updatedAt":  now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// FindByUserID returns the active key record for the user.
func (r *KeyRecordRepo) FindByUserID(ctx context.Context, userID bson.ObjectID) (*model.KeyRecord, error) {
	var rec model.KeyRecord
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteByUserID removes the user's key record(s). Deleting zero
// documents is not an error, which makes logout idempotent.
func (r *KeyRecordRepo) DeleteByUserID(ctx context.Context, userID bson.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

package mongodb

import (
	"context"
	"errors"

	"github.com/nextera/workforce-api/internal/domain/user"
	"github.com/nextera/workforce-api/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewUsersRepo(database *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		coll: database.Collection("users"),
		prom: prom,
	}
}

// EnsureIndexes creates the unique index on email. With it in place, two
// concurrent registrations for the same address cannot both insert: the
// loser gets a duplicate-key error and surfaces as user.ErrEmailTaken.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Insert(ctx context.Context, u user.User) error {
	err := r.observe("users.insert", func() error {
		_, insertErr := r.coll.InsertOne(ctx, u)
		return insertErr
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrEmailTaken
		}

		return err
	}

	return nil
}

func (r *UsersRepo) UpdateFields(ctx context.Context, email string, changes user.Changes) error {
	if changes.IsEmpty() {
		return nil
	}

	set := bson.M{}

	if changes.FullName != nil {
		set["full_name"] = *changes.FullName
	}

	if changes.HashedPassword != nil {
		set["hashed_password"] = *changes.HashedPassword
	}

	return r.observe("users.update_fields", func() error {
		res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})

		if err != nil {
			return err
		}

		if res.MatchedCount == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (r *UsersRepo) DeleteByEmail(ctx context.Context, email string) error {
	return r.observe("users.delete_by_email", func() error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"email": email})

		if err != nil {
			return err
		}

		if res.DeletedCount == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

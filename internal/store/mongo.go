package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jjudge-oj/userauth/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection = "users"
	emailIndexName  = "email_unique"
)

// userDocument is the stored shape of a user. Field names match the
// collection written by earlier deployments, so the hash lives in "password".
type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Username  string        `bson:"username"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password,omitempty"`
	CreatedAt time.Time     `bson:"created_at,omitempty"`
}

// MongoUserRepository handles persistence for users in MongoDB.
type MongoUserRepository struct {
	db    *mongo.Database
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		db:    db,
		users: db.Collection(usersCollection),
	}
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (types.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (types.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoUserRepository) Insert(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now().UTC()

	doc := userDocument{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	}
	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}

	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return types.User{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid.Hex()
	return user, nil
}

// FindAll lists every user with the password projected out server-side.
func (r *MongoUserRepository) FindAll(ctx context.Context) ([]types.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]types.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toUser())
	}
	return users, nil
}

// Migrate ensures the unique index on email exists.
func (r *MongoUserRepository) Migrate(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndexName),
	})
	return err
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func (r *MongoUserRepository) Close(ctx context.Context) error {
	return r.db.Client().Disconnect(ctx)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (types.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return doc.toUser(), nil
}

func (d userDocument) toUser() types.User {
	return types.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

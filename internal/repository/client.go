package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/CyresSmith/projects-tracker-backend/internal/model"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(ctx context.Context, client *model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*model.Client, error)
	UpdateClient(ctx context.Context, id string, params UpdateClientParams) (*model.Client, error)

	// VerifyClient atomically flips the verified flag and clears the
	// verification token of the client holding the given token. Returns
	// mongo.ErrNoDocuments when no client holds it, which is also the case
	// for tokens already consumed.
	VerifyClient(ctx context.Context, token string) (*model.Client, error)

	SetSessionToken(ctx context.Context, id, token string) error
	ClearSessionToken(ctx context.Context, id string) error
	DeleteClient(ctx context.Context, id string) error
}

// UpdateClientParams defines the optional parameters for updating a client.
// Only the fields that are not nil will be updated.
type UpdateClientParams struct {
	FullName       *string
	Email          *string
	Phone          *string
	PasswordHash   *string
	AvatarURL      *string
	AvatarFolderID *string
	Files          *[]string
}

const clientCollection = "clients"

type clientMongoRepository struct {
	db *mongo.Database
}

// NewClientMongoRepository creates a MongoDB repository for clients. The
// unique email index is the source of truth for the uniqueness invariant;
// any pre-insert existence check is an optimization only.
func NewClientMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ClientRepository {
	collection := db.Collection(clientCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "verification_token", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create client indexes")
	}

	return &clientMongoRepository{db: db}
}

func (r *clientMongoRepository) CreateClient(ctx context.Context, client *model.Client) (*model.Client, error) {
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	result, err := r.db.Collection(clientCollection).InsertOne(ctx, client)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		client.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return client, nil
}

func (r *clientMongoRepository) GetClient(ctx context.Context, id string) (*model.Client, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(clientCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var client model.Client
	if err := result.Decode(&client); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientMongoRepository) GetClientByEmail(ctx context.Context, email string) (*model.Client, error) {
	result := r.db.Collection(clientCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var client model.Client
	if err := result.Decode(&client); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientMongoRepository) UpdateClient(
	ctx context.Context,
	id string,
	params UpdateClientParams,
) (*model.Client, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.FullName != nil {
		updateMap["full_name"] = *params.FullName
	}
	if params.Email != nil {
		updateMap["email"] = *params.Email
	}
	if params.Phone != nil {
		updateMap["phone"] = *params.Phone
	}
	if params.PasswordHash != nil {
		updateMap["password_hash"] = *params.PasswordHash
	}
	if params.AvatarURL != nil {
		updateMap["avatar_url"] = *params.AvatarURL
	}
	if params.AvatarFolderID != nil {
		updateMap["avatar_folder_id"] = *params.AvatarFolderID
	}
	if params.Files != nil {
		updateMap["files"] = *params.Files
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no client fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(clientCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var client model.Client
	if err := result.Decode(&client); err != nil {
		return nil, err
	}

	return &client, nil
}

// verifyClientUpdate flips the client to verified and removes the token
// field entirely, so a verified document carries no verification_token.
func verifyClientUpdate(now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"verified":   true,
			"updated_at": now,
		},
		"$unset": bson.M{"verification_token": ""},
	}
}

func (r *clientMongoRepository) VerifyClient(ctx context.Context, token string) (*model.Client, error) {
	result := r.db.Collection(clientCollection).FindOneAndUpdate(
		ctx,
		bson.M{"verification_token": token},
		verifyClientUpdate(time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var client model.Client
	if err := result.Decode(&client); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientMongoRepository) SetSessionToken(ctx context.Context, id, token string) error {
	return r.updateSessionToken(ctx, id, token)
}

func (r *clientMongoRepository) ClearSessionToken(ctx context.Context, id string) error {
	return r.updateSessionToken(ctx, id, "")
}

func (r *clientMongoRepository) updateSessionToken(ctx context.Context, id, token string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(clientCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"session_token": token,
			"updated_at":    time.Now(),
		}},
	)
	return err
}

func (r *clientMongoRepository) DeleteClient(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(clientCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

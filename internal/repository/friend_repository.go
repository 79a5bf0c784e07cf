package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository handles the friendships collection.
type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friendships"),
	}
}

// CreateFriendship inserts a new pending friendship record.
func (r *FriendRepository) CreateFriendship(ctx context.Context, friendship *models.Friendship) (*models.Friendship, error) {
	if friendship.Groups == nil {
		friendship.Groups = []string{}
	}

	result, err := r.collection.InsertOne(ctx, friendship)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Friend request already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to create friendship")
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.New(apperrors.KindInternal, "failed to cast inserted ID")
	}
	friendship.ID = insertedID

	return friendship, nil
}

// GetByID retrieves one friendship record.
func (r *FriendRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&friendship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Friendship not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to find friendship")
	}
	return &friendship, nil
}

// GetBetween finds the record between two users in either direction,
// whatever its status. Returns (nil, nil) when no record exists.
func (r *FriendRepository) GetBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Friendship, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"user_id": a, "friend_id": b},
			{"user_id": b, "friend_id": a},
		},
	}

	var friendship models.Friendship
	err := r.collection.FindOne(ctx, filter).Decode(&friendship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to find friendship between users")
	}
	return &friendship, nil
}

// GetAcceptedForUser returns accepted friendships involving the user,
// most recently accepted first.
func (r *FriendRepository) GetAcceptedForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	filter := bson.M{
		"status": models.FriendStatusAccepted,
		"$or": []bson.M{
			{"user_id": userID},
			{"friend_id": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "accepted_at", Value: -1}})

	return r.findFriendships(ctx, filter, opts)
}

// GetPendingForReceiver returns pending requests addressed to the user,
// newest first.
func (r *FriendRepository) GetPendingForReceiver(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	filter := bson.M{
		"friend_id": userID,
		"status":    models.FriendStatusPending,
	}
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})

	return r.findFriendships(ctx, filter, opts)
}

// GetForUserAmong returns every record between the user and any of the
// given candidates, used to annotate search results.
func (r *FriendRepository) GetForUserAmong(ctx context.Context, userID primitive.ObjectID, others []primitive.ObjectID) ([]models.Friendship, error) {
	if len(others) == 0 {
		return []models.Friendship{}, nil
	}

	filter := bson.M{
		"$or": []bson.M{
			{"user_id": userID, "friend_id": bson.M{"$in": others}},
			{"friend_id": userID, "user_id": bson.M{"$in": others}},
		},
	}

	return r.findFriendships(ctx, filter, nil)
}

// SetStatus updates the status, stamping accepted_at on acceptance.
func (r *FriendRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string, acceptedAt *time.Time) error {
	set := bson.M{"status": status}
	if acceptedAt != nil {
		set["accepted_at"] = *acceptedAt
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to update friendship status")
	}
	return nil
}

// SetGroups replaces the group labels of a friendship.
func (r *FriendRepository) SetGroups(ctx context.Context, id primitive.ObjectID, groups []string) error {
	if groups == nil {
		groups = []string{}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"groups": groups}})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to update friendship groups")
	}
	return nil
}

// Delete removes a friendship record entirely.
func (r *FriendRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to delete friendship")
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("Friendship not found")
	}
	return nil
}

func (r *FriendRepository) findFriendships(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Friendship, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to find friendships")
	}
	defer cursor.Close(ctx)

	friendships := []models.Friendship{}
	for cursor.Next(ctx) {
		var friendship models.Friendship
		if err := cursor.Decode(&friendship); err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to decode friendship")
		}
		friendships = append(friendships, friendship)
	}

	return friendships, nil
}

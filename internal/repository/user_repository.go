package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles account-level operations on the users
// collection. Embedded wishlists and contacts have their own
// repositories over the same collection.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Wishlists == nil {
		user.Wishlists = []models.Wishlist{}
	}
	if user.Contacts == nil {
		user.Contacts = []models.Contact{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("User already exists")
		}
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to insert user")
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.New(apperrors.KindInternal, "failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by exact email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to find user by email")
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to find user by id")
	}
	return &user, nil
}

// UpdateUser applies a partial update to the user document and returns
// the updated state.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.User, error) {
	updates["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to update user")
	}

	return &user, nil
}

// GetUsersByIDs fetches user details for a list of IDs.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to fetch users by IDs")
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to decode user")
		}
		users = append(users, user)
	}

	return users, nil
}

// SearchUsersByEmail does a case-insensitive substring match on email,
// excluding the given user.
func (r *UserRepository) SearchUsersByEmail(ctx context.Context, query string, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	filter := bson.M{
		"email": bson.M{"$regex": regexQuote(query), "$options": "i"},
		"_id":   bson.M{"$ne": exclude},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to search users")
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to decode user")
		}
		users = append(users, user)
	}

	return users, nil
}

// regexQuote escapes regex metacharacters so the query is treated as a
// literal substring.
func regexQuote(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(special); j++ {
			if s[i] == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}

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

// WishlistRepository manipulates the wishlists array embedded in user
// documents, including the one lookup that crosses user boundaries:
// resolving a wishlist id to its owner for public reservation.
type WishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{collection: db.Collection("users")}
}

// AddWishlist appends a wishlist to the owner's document.
func (r *WishlistRepository) AddWishlist(ctx context.Context, ownerID primitive.ObjectID, wishlist *models.Wishlist) (*models.Wishlist, error) {
	wishlist.ID = primitive.NewObjectID()
	wishlist.CreatedAt = time.Now()
	if wishlist.Items == nil {
		wishlist.Items = []models.WishlistItem{}
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$push": bson.M{"wishlists": wishlist}},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to add wishlist")
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFound("User not found")
	}

	logrus.WithFields(logrus.Fields{
		"userID":     ownerID.Hex(),
		"wishlistID": wishlist.ID.Hex(),
	}).Info("Wishlist created")
	return wishlist, nil
}

// GetWishlists returns all wishlists of the owner.
func (r *WishlistRepository) GetWishlists(ctx context.Context, ownerID primitive.ObjectID) ([]models.Wishlist, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"wishlists": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": ownerID}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to fetch wishlists")
	}
	if user.Wishlists == nil {
		user.Wishlists = []models.Wishlist{}
	}
	return user.Wishlists, nil
}

// GetWishlistByID returns a single wishlist of the owner.
func (r *WishlistRepository) GetWishlistByID(ctx context.Context, ownerID, wishlistID primitive.ObjectID) (*models.Wishlist, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"wishlists.$": 1})
	err := r.collection.FindOne(ctx,
		bson.M{"_id": ownerID, "wishlists._id": wishlistID},
		opts,
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Wishlist not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to fetch wishlist")
	}
	if len(user.Wishlists) == 0 {
		return nil, apperrors.NotFound("Wishlist not found")
	}
	return &user.Wishlists[0], nil
}

// FindOwnerByWishlistID resolves a wishlist id to the full owning user.
// This is the entry point of the ownerless reservation path.
func (r *WishlistRepository) FindOwnerByWishlistID(ctx context.Context, wishlistID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"wishlists._id": wishlistID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Wishlist not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to find wishlist owner")
	}
	return &user, nil
}

// UpdateWishlist sets name, description and visibility of a wishlist.
func (r *WishlistRepository) UpdateWishlist(ctx context.Context, ownerID, wishlistID primitive.ObjectID, updates map[string]interface{}) error {
	set := bson.M{}
	for field, value := range updates {
		set["wishlists.$."+field] = value
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "wishlists._id": wishlistID},
		bson.M{"$set": set},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to update wishlist")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Wishlist not found")
	}
	return nil
}

// DeleteWishlist removes a wishlist from the owner's document.
func (r *WishlistRepository) DeleteWishlist(ctx context.Context, ownerID, wishlistID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$pull": bson.M{"wishlists": bson.M{"_id": wishlistID}}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to delete wishlist")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("User not found")
	}
	if result.ModifiedCount == 0 {
		return apperrors.NotFound("Wishlist not found")
	}
	return nil
}

// AddItem appends an item to a wishlist.
func (r *WishlistRepository) AddItem(ctx context.Context, ownerID, wishlistID primitive.ObjectID, item *models.WishlistItem) (*models.WishlistItem, error) {
	item.ID = primitive.NewObjectID()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "wishlists._id": wishlistID},
		bson.M{"$push": bson.M{"wishlists.$.items": item}},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to add wishlist item")
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFound("Wishlist not found")
	}
	return item, nil
}

// UpdateItem sets the given item fields in place. The owner -> wishlist
// -> item chain must have been resolved by the caller.
func (r *WishlistRepository) UpdateItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID, updates map[string]interface{}) error {
	set := bson.M{}
	for field, value := range updates {
		set["wishlists.$[w].items.$[i]."+field] = value
	}

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"w._id": wishlistID},
			bson.M{"i._id": itemID},
		},
	})

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": ownerID}, bson.M{"$set": set}, opts)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to update wishlist item")
	}
	return nil
}

// SetReservation flips the reservation state of an item. A nil reserver
// with reserved=true records an anonymous reservation.
func (r *WishlistRepository) SetReservation(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID, reserved bool, reservedBy *primitive.ObjectID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"w._id": wishlistID},
			bson.M{"i._id": itemID},
		},
	})

	update := bson.M{
		"$set": bson.M{"wishlists.$[w].items.$[i].reserved": reserved},
	}
	if reserved && reservedBy != nil {
		update["$set"].(bson.M)["wishlists.$[w].items.$[i].reserved_by"] = *reservedBy
	} else {
		update["$unset"] = bson.M{"wishlists.$[w].items.$[i].reserved_by": ""}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": ownerID}, update, opts)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to set reservation")
	}
	return nil
}

// DeleteItem removes one item from a wishlist.
func (r *WishlistRepository) DeleteItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"w._id": wishlistID}},
	})

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$pull": bson.M{"wishlists.$[w].items": bson.M{"_id": itemID}}},
		opts,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to delete wishlist item")
	}
	if result.ModifiedCount == 0 {
		return apperrors.NotFound("Item not found")
	}
	return nil
}

// AddSharedWith adds friend ids to the wishlist's shared set, skipping
// duplicates.
func (r *WishlistRepository) AddSharedWith(ctx context.Context, ownerID, wishlistID primitive.ObjectID, friendIDs []primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "wishlists._id": wishlistID},
		bson.M{"$addToSet": bson.M{"wishlists.$.shared_with": bson.M{"$each": friendIDs}}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to share wishlist")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Wishlist not found")
	}
	return nil
}

// RemoveSharedWith drops one friend id from the wishlist's shared set.
func (r *WishlistRepository) RemoveSharedWith(ctx context.Context, ownerID, wishlistID, friendID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "wishlists._id": wishlistID},
		bson.M{"$pull": bson.M{"wishlists.$.shared_with": friendID}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to unshare wishlist")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Wishlist not found")
	}
	return nil
}

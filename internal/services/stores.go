package services

import (
	"context"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces abstract the repository layer so services can be
// tested against in-memory implementations. The mongo repositories in
// internal/repository satisfy them.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SearchUsersByEmail(ctx context.Context, query string, exclude primitive.ObjectID, limit int64) ([]models.User, error)
}

type ContactStore interface {
	AddContact(ctx context.Context, ownerID primitive.ObjectID, contact *models.Contact) (*models.Contact, error)
	GetContacts(ctx context.Context, ownerID primitive.ObjectID) ([]models.Contact, error)
	GetContactByID(ctx context.Context, ownerID, contactID primitive.ObjectID) (*models.Contact, error)
	UpdateContact(ctx context.Context, ownerID, contactID primitive.ObjectID, contact *models.Contact) error
	DeleteContact(ctx context.Context, ownerID, contactID primitive.ObjectID) error
	AddGiftIdea(ctx context.Context, ownerID, contactID primitive.ObjectID, idea *models.GiftIdea) (*models.GiftIdea, error)
	UpdateGiftIdea(ctx context.Context, ownerID, contactID primitive.ObjectID, idea *models.GiftIdea) error
	DeleteGiftIdea(ctx context.Context, ownerID, contactID, ideaID primitive.ObjectID) error
	SetLink(ctx context.Context, ownerID, contactID, friendUserID primitive.ObjectID, linkedAt time.Time) error
	ClearLink(ctx context.Context, ownerID, contactID primitive.ObjectID) error
}

type WishlistStore interface {
	AddWishlist(ctx context.Context, ownerID primitive.ObjectID, wishlist *models.Wishlist) (*models.Wishlist, error)
	GetWishlists(ctx context.Context, ownerID primitive.ObjectID) ([]models.Wishlist, error)
	GetWishlistByID(ctx context.Context, ownerID, wishlistID primitive.ObjectID) (*models.Wishlist, error)
	FindOwnerByWishlistID(ctx context.Context, wishlistID primitive.ObjectID) (*models.User, error)
	UpdateWishlist(ctx context.Context, ownerID, wishlistID primitive.ObjectID, updates map[string]interface{}) error
	DeleteWishlist(ctx context.Context, ownerID, wishlistID primitive.ObjectID) error
	AddItem(ctx context.Context, ownerID, wishlistID primitive.ObjectID, item *models.WishlistItem) (*models.WishlistItem, error)
	UpdateItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID, updates map[string]interface{}) error
	SetReservation(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID, reserved bool, reservedBy *primitive.ObjectID) error
	DeleteItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID) error
	AddSharedWith(ctx context.Context, ownerID, wishlistID primitive.ObjectID, friendIDs []primitive.ObjectID) error
	RemoveSharedWith(ctx context.Context, ownerID, wishlistID, friendID primitive.ObjectID) error
}

type FriendStore interface {
	CreateFriendship(ctx context.Context, friendship *models.Friendship) (*models.Friendship, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Friendship, error)
	GetBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Friendship, error)
	GetAcceptedForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
	GetPendingForReceiver(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
	GetForUserAmong(ctx context.Context, userID primitive.ObjectID, others []primitive.ObjectID) ([]models.Friendship, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, acceptedAt *time.Time) error
	SetGroups(ctx context.Context, id primitive.ObjectID, groups []string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

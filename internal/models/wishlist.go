package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Wishlist is a named list of desired items embedded in its owner's
// document. SharedWith only matters for private lists.
type Wishlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Visibility  string               `bson:"visibility" json:"visibility"`
	SharedWith  []primitive.ObjectID `bson:"shared_with,omitempty" json:"sharedWith,omitempty"`
	Items       []WishlistItem       `bson:"items" json:"items"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
}

// SharedWithUser reports whether the wishlist was explicitly shared with
// the given user.
func (w *Wishlist) SharedWithUser(userID primitive.ObjectID) bool {
	for _, id := range w.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// WishlistItem carries reservation and purchase state. ReservedBy stays
// nil for anonymous reservations.
type WishlistItem struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Link        string              `bson:"link,omitempty" json:"link,omitempty"`
	Price       float64             `bson:"price,omitempty" json:"price,omitempty"`
	Reserved    bool                `bson:"reserved" json:"reserved"`
	ReservedBy  *primitive.ObjectID `bson:"reserved_by,omitempty" json:"reservedBy,omitempty"`
	Bought      bool                `bson:"bought" json:"bought"`
}

// PublicWishlist is a wishlist as seen by a non-owner: reserved and
// bought items are stripped, IsShared marks private lists that were
// visible only because the viewer was in SharedWith.
type PublicWishlist struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Visibility  string             `json:"visibility"`
	IsShared    bool               `json:"isShared"`
	Items       []WishlistItem     `json:"items"`
}

// PublicWishlistView is the response of the public per-user view.
type PublicWishlistView struct {
	UserName  string           `json:"userName"`
	Wishlists []PublicWishlist `json:"wishlists"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusDeclined = "declined"
)

// Friendship records the relationship between two accounts. One record
// exists per pair; direction only records who asked.
type Friendship struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	FriendID    primitive.ObjectID `bson:"friend_id" json:"friendId"`
	Status      string             `bson:"status" json:"status"`
	RequestedBy primitive.ObjectID `bson:"requested_by" json:"requestedBy"`
	RequestedAt time.Time          `bson:"requested_at" json:"requestedAt"`
	AcceptedAt  *time.Time         `bson:"accepted_at,omitempty" json:"acceptedAt,omitempty"`
	Groups      []string           `bson:"groups" json:"groups"`
}

// Involves reports whether the given user is a party to the friendship.
func (f *Friendship) Involves(userID primitive.ObjectID) bool {
	return f.UserID == userID || f.FriendID == userID
}

// OtherParty returns the participant that is not the given user.
func (f *Friendship) OtherParty(userID primitive.ObjectID) primitive.ObjectID {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// FriendSummary is one entry of the friend list: the friendship id plus
// the other party's identity.
type FriendSummary struct {
	ID         primitive.ObjectID `json:"_id"`
	FriendID   primitive.ObjectID `json:"friendId"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Groups     []string           `json:"groups"`
	AcceptedAt *time.Time         `json:"acceptedAt,omitempty"`
}

// FriendRequestSummary is one incoming pending request.
type FriendRequestSummary struct {
	ID          primitive.ObjectID `json:"_id"`
	RequestedBy PublicUser         `json:"requestedBy"`
	RequestedAt time.Time          `json:"requestedAt"`
}

// UserSearchResult annotates a search hit with the caller's existing
// relationship, when any.
type UserSearchResult struct {
	ID               primitive.ObjectID  `json:"_id"`
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	FriendshipStatus *string             `json:"friendshipStatus"`
	FriendshipID     *primitive.ObjectID `json:"friendshipId"`
}

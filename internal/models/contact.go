package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is a person the owner tracks privately. A contact may later be
// linked to a platform friend, but never has to be one.
type Contact struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Interests    []string            `bson:"interests" json:"interests"`
	GiftIdeas    []GiftIdea          `bson:"gift_ideas" json:"giftIdeas"`
	LinkedUserID *primitive.ObjectID `bson:"linked_user_id,omitempty" json:"linkedUserId,omitempty"`
	LinkedAt     *time.Time          `bson:"linked_at,omitempty" json:"linkedAt,omitempty"`
}

type GiftIdea struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Purchased bool               `bson:"purchased" json:"purchased"`
}

// LinkSuggestion proposes that a contact corresponds to a friend,
// currently always matched by email.
type LinkSuggestion struct {
	Contact     Contact    `json:"contact"`
	Friend      PublicUser `json:"friend"`
	MatchReason string     `json:"matchReason"`
}

// ContactData is the narrow slice of a linked contact a user shares
// about a friend. Name, email, phone and notes stay private.
type ContactData struct {
	Interests []string   `json:"interests"`
	GiftIdeas []GiftIdea `json:"giftIdeas"`
}
